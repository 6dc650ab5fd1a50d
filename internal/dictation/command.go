package dictation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// CommandSource runs an external speech-to-text program. Every non-empty
// stdout line is a finalized phrase. A stderr line containing one of the
// error codes (for example "error: no-speech") reports that failure.
type CommandSource struct {
	Name string
	Args []string

	mu  sync.Mutex
	cur *commandRun
}

// commandRun is one started program.
type commandRun struct {
	cancel context.CancelFunc
}

// NewCommandSource parses a command line such as "whisper-stream --lang en".
// An empty line yields nil.
func NewCommandSource(cmdline string) *CommandSource {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil
	}
	return &CommandSource{Name: fields[0], Args: fields[1:]}
}

// FromCommandLine returns a CommandSource for cmdline, or Unsupported when
// it is empty.
func FromCommandLine(cmdline string) Source {
	if cs := NewCommandSource(cmdline); cs != nil {
		return cs
	}
	return Unsupported{}
}

func (c *CommandSource) Supported() bool {
	_, err := exec.LookPath(c.Name)
	return err == nil
}

func (c *CommandSource) Start(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur != nil {
		return nil, ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.WaitDelay = time.Second
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, &Error{Code: CodeProcess, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, &Error{Code: CodeProcess, Err: err}
	}
	if err := cmd.Start(); err != nil {
		cancel()
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &Error{Code: CodeUnsupported, Err: err}
		}
		return nil, &Error{Code: CodeProcess, Err: err}
	}

	r := &commandRun{cancel: cancel}
	c.cur = r

	events := make(chan Event)
	go c.run(runCtx, r, cmd, stdout, stderr, events)
	return events, nil
}

func (c *CommandSource) run(ctx context.Context, r *commandRun, cmd *exec.Cmd, stdout, stderr io.ReadCloser, events chan<- Event) {
	defer close(events)

	send := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// Children of the program may keep the pipes open after it is killed.
	go func() {
		<-ctx.Done()
		stdout.Close()
		stderr.Close()
	}()

	codes := make(chan Code, 1)
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			if code, ok := classify(sc.Text()); ok {
				select {
				case codes <- code:
				default:
				}
			}
		}
	}()

	sc := bufio.NewScanner(stdout)
	phrases := 0
	for sc.Scan() {
		line := strings.TrimSpace(norm.NFC.String(sc.Text()))
		if line == "" {
			continue
		}
		if phrases > 0 {
			line = " " + line
		}
		phrases++
		if !send(Event{Delta: line}) {
			break
		}
	}

	// Both pipes must be drained before Wait closes them.
	<-stderrDone
	err := cmd.Wait()
	defer c.finish(r)

	if ctx.Err() != nil {
		return
	}
	select {
	case code := <-codes:
		send(Event{Err: &Error{Code: code}})
		return
	default:
	}
	if err != nil {
		send(Event{Err: &Error{Code: CodeProcess, Err: fmt.Errorf("%s: %w", c.Name, err)}})
	}
}

// Stop kills the running program without waiting for it. The run goroutine
// reaps it and closes the event channel; nothing is reported after Stop.
// A new run may be started right away.
func (c *CommandSource) Stop() error {
	c.mu.Lock()
	r := c.cur
	c.cur = nil
	c.mu.Unlock()

	if r != nil {
		r.cancel()
	}
	return nil
}

func (c *CommandSource) finish(r *commandRun) {
	r.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == r {
		c.cur = nil
	}
}

func classify(line string) (Code, bool) {
	line = strings.ToLower(line)
	for _, code := range []Code{CodeNoSpeech, CodeAudioCapture, CodeNotAllowed} {
		if strings.Contains(line, string(code)) {
			return code, true
		}
	}
	return "", false
}
