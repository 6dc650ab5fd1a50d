// Package session binds the stream controller, the navigation machine and
// the answer capture bridge into one review session.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/intervu/internal/capture"
	"github.com/abhisek/intervu/internal/dictation"
	"github.com/abhisek/intervu/internal/llm"
	"github.com/abhisek/intervu/internal/navigation"
	"github.com/abhisek/intervu/internal/questiongen"
	"github.com/abhisek/intervu/internal/stream"
)

// Deps are the collaborators a session calls out to.
type Deps struct {
	Fetcher   questiongen.BatchFetcher
	Evaluator questiongen.Evaluator
	Dictation dictation.Source

	// Navigation tunables; zero value means navigation.DefaultConfig().
	Navigation navigation.Config

	// PersistMode for manual edits.
	PersistMode capture.PersistMode

	// Now is the clock, time.Now if nil.
	Now func() time.Time

	// StreamOptions are passed to the controller, mainly for tests.
	StreamOptions []stream.Option
}

// Session is the single session-scoped context object. The controller, the
// machine and the bridge never reach for state outside it.
type Session struct {
	ID        string
	Config    stream.Config
	StartedAt time.Time

	Stream  *stream.Controller
	Nav     *navigation.Machine
	Capture *capture.Bridge

	fetcher   questiongen.BatchFetcher
	evaluator questiongen.Evaluator
	now       func() time.Time

	started bool
}

// New creates a session that has not yet fetched anything.
func New(cfg stream.Config, deps Deps) *Session {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	navCfg := deps.Navigation
	if navCfg == (navigation.Config{}) {
		navCfg = navigation.DefaultConfig()
	}
	opts := append([]stream.Option{stream.WithClock(now)}, deps.StreamOptions...)

	ctrl := stream.NewController(opts...)
	return &Session{
		ID:        uuid.NewString(),
		Config:    cfg,
		Stream:    ctrl,
		Nav:       navigation.New(ctrl, navCfg),
		Capture:   capture.New(ctrl, deps.Dictation, deps.PersistMode),
		fetcher:   deps.Fetcher,
		evaluator: deps.Evaluator,
		now:       now,
	}
}

// Fetcher returns the batch fetcher used by the session.
func (s *Session) Fetcher() questiongen.BatchFetcher { return s.fetcher }

// Start issues the mandatory first fetch.
func (s *Session) Start() *stream.Fetch {
	s.started = false
	s.Capture.Deactivate()
	return s.Stream.StartSession(s.Config)
}

// Begin applies the first batch. On success navigation is at the first
// record and the capture bridge is bound to it.
func (s *Session) Begin(res stream.BatchResult) error {
	if err := s.Stream.ApplyStart(res); err != nil {
		return err
	}
	s.started = true
	s.StartedAt = s.now()
	s.Nav.Reset()
	s.syncCapture()
	return nil
}

// Started reports whether the first batch was applied.
func (s *Session) Started() bool { return s.started }

// Effects is what a batch of navigation events asks of the host.
type Effects struct {
	// Settles must each be delivered back to Settle after their Delay.
	Settles []navigation.Event

	// Fetch is a preload to run, or nil.
	Fetch *stream.Fetch

	Moved        bool
	AwaitingMore bool
	Exhausted    bool
}

// Handle applies navigation events: it rebinds capture after a move and
// turns preload requests into a fetch.
func (s *Session) Handle(events []navigation.Event) Effects {
	var fx Effects
	for _, ev := range events {
		switch ev.Kind {
		case navigation.EventSettle:
			fx.Settles = append(fx.Settles, ev)
		case navigation.EventAdvanced, navigation.EventRetreated:
			fx.Moved = true
		case navigation.EventPreload:
			if f := s.Stream.RequestMore(); f != nil {
				fx.Fetch = f
			}
		case navigation.EventAwaitingMore:
			fx.AwaitingMore = true
		case navigation.EventExhausted:
			fx.Exhausted = true
		}
	}
	if fx.Moved {
		s.syncCapture()
	}
	return fx
}

// Settle resolves a pending navigation transition.
func (s *Session) Settle(token uint64) Effects {
	return s.Handle(s.Nav.Settle(token))
}

// ApplyMore applies a preload result.
func (s *Session) ApplyMore(res stream.BatchResult) stream.Outcome {
	out := s.Stream.Apply(res)
	if out.Appended > 0 {
		s.Nav.QueueChanged()
		s.syncCapture()
	}
	return out
}

// Active returns the active record.
func (s *Session) Active() (stream.Record, bool) {
	id := s.Nav.ActiveID()
	if id == "" {
		return stream.Record{}, false
	}
	r, _, ok := s.Stream.Find(id)
	return r, ok
}

// ToggleReveal flips the reference answer or the detailed feedback of the
// active record.
func (s *Session) ToggleReveal(detailed bool) bool {
	r, ok := s.Active()
	if !ok {
		return false
	}
	rev := r.Reveal
	if detailed {
		if r.Feedback == nil {
			return false
		}
		rev.DetailedFeedbackVisible = !rev.DetailedFeedbackVisible
	} else {
		rev.AnswerVisible = !rev.AnswerVisible
	}
	return s.Stream.PatchRecord(r.ID, stream.Patch{Reveal: &rev})
}

// Context returns a context for the session's background calls, with a
// timeout. LLM calls made under it are logged with the session id.
func (s *Session) Context(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := llm.WithSessionID(context.Background(), s.ID)
	return context.WithTimeout(ctx, timeout)
}

// Finish persists pending edits and stops dictation before leaving review.
func (s *Session) Finish() {
	s.Capture.Deactivate()
}

// Discard drops the queue once review is abandoned for the results view.
// Late fetch results are ignored and no preload is issued afterwards.
func (s *Session) Discard() {
	s.Capture.Deactivate()
	s.Stream.Reset()
	s.Nav.Reset()
	s.started = false
}

// Elapsed is the time since the first batch arrived.
func (s *Session) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return s.now().Sub(s.StartedAt)
}

// syncCapture passes the machine's active id to the bridge.
func (s *Session) syncCapture() {
	id := s.Nav.ActiveID()
	if id == "" {
		s.Capture.Deactivate()
		return
	}
	if id == s.Capture.ActiveID() {
		return
	}
	r, _, _ := s.Stream.Find(id)
	s.Capture.Activate(id, r.UserAnswer)
}

// IsInitialFailure reports whether err blocks the session from starting.
func IsInitialFailure(err error) bool {
	var fe *stream.FetchError
	return errors.As(err, &fe) && fe.Initial
}
