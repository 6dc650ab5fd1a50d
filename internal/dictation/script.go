package dictation

import (
	"context"
	"sync"
	"time"
)

// Script replays canned transcript deltas. It backs the demo provider and
// tests.
type Script struct {
	Deltas   []string
	Fail     *Error
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	starts int
}

func (s *Script) Supported() bool { return true }

func (s *Script) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil, ErrAlreadyRunning
	}
	s.starts++

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	events := make(chan Event)

	go func(done chan struct{}) {
		defer close(done)
		defer close(events)
		defer s.clear(cancel)

		send := func(ev Event) bool {
			if s.Interval > 0 {
				select {
				case <-time.After(s.Interval):
				case <-runCtx.Done():
					return false
				}
			}
			select {
			case events <- ev:
				return true
			case <-runCtx.Done():
				return false
			}
		}
		for _, d := range s.Deltas {
			if !send(Event{Delta: d}) {
				return
			}
		}
		if s.Fail != nil {
			send(Event{Err: s.Fail})
		}
	}(s.done)
	return events, nil
}

func (s *Script) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Running reports whether a run is active.
func (s *Script) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Starts returns how many runs were started.
func (s *Script) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func (s *Script) clear(cancel context.CancelFunc) {
	cancel()
	s.mu.Lock()
	s.cancel = nil
	s.mu.Unlock()
}
