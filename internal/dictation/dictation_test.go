package dictation

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"
)

func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("timed out waiting for dictation events")
		}
	}
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestErrorMessages(t *testing.T) {
	for _, code := range []Code{CodeNoSpeech, CodeAudioCapture, CodeNotAllowed, CodeUnsupported, CodeProcess} {
		e := &Error{Code: code}
		if e.Message() == "" {
			t.Errorf("%s: empty message", code)
		}
		if !strings.Contains(e.Error(), string(code)) {
			t.Errorf("Error() = %q, want it to name %s", e.Error(), code)
		}
	}

	cause := errors.New("exit status 1")
	e := &Error{Code: CodeProcess, Err: cause}
	if !errors.Is(e, cause) {
		t.Error("Error does not unwrap to its cause")
	}

	if AsError(nil) != nil {
		t.Error("AsError(nil) != nil")
	}
	if got := AsError(cause).Code; got != CodeProcess {
		t.Errorf("AsError(plain).Code = %s, want %s", got, CodeProcess)
	}
	if AsError(e) != e {
		t.Error("AsError must return an *Error unchanged")
	}
}

func TestUnsupported(t *testing.T) {
	var s Source = Unsupported{}
	if s.Supported() {
		t.Error("Unsupported reports support")
	}
	if _, err := s.Start(context.Background()); AsError(err).Code != CodeUnsupported {
		t.Errorf("Start err = %v, want %s", err, CodeUnsupported)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestFromCommandLine(t *testing.T) {
	if _, ok := FromCommandLine("  ").(Unsupported); !ok {
		t.Error("blank command line should be Unsupported")
	}

	cs, ok := FromCommandLine("whisper-stream --lang en").(*CommandSource)
	if !ok {
		t.Fatal("expected a *CommandSource")
	}
	if cs.Name != "whisper-stream" || !reflect.DeepEqual(cs.Args, []string{"--lang", "en"}) {
		t.Errorf("parsed %q %q", cs.Name, cs.Args)
	}
}

func TestCommandSource_Deltas(t *testing.T) {
	requireShell(t)
	cs := &CommandSource{Name: "sh", Args: []string{"-c", `printf 'hello world\n\nsecond phrase\n'`}}
	if !cs.Supported() {
		t.Fatal("sh should be supported")
	}

	ch, err := cs.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	events := collect(t, ch)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].Delta != "hello world" || events[1].Delta != " second phrase" {
		t.Errorf("deltas = %q, %q", events[0].Delta, events[1].Delta)
	}
}

func TestCommandSource_ErrorCode(t *testing.T) {
	requireShell(t)
	cs := &CommandSource{Name: "sh", Args: []string{"-c", `echo 'error: not-allowed' >&2; exit 2`}}

	ch, err := cs.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	events := collect(t, ch)

	if len(events) != 1 || events[0].Err == nil {
		t.Fatalf("events = %+v, want one error", events)
	}
	if events[0].Err.Code != CodeNotAllowed {
		t.Errorf("Code = %s, want %s", events[0].Err.Code, CodeNotAllowed)
	}
}

func TestCommandSource_ProcessFailure(t *testing.T) {
	requireShell(t)
	cs := &CommandSource{Name: "sh", Args: []string{"-c", `exit 3`}}

	ch, err := cs.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	events := collect(t, ch)

	if len(events) != 1 || events[0].Err == nil || events[0].Err.Code != CodeProcess {
		t.Errorf("events = %+v, want one %s error", events, CodeProcess)
	}
}

func TestCommandSource_StopKillsProcess(t *testing.T) {
	requireShell(t)
	cs := &CommandSource{Name: "sh", Args: []string{"-c", `echo ready; exec sleep 30`}}

	ch, err := cs.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if ev := <-ch; ev.Delta != "ready" {
		t.Fatalf("first event = %+v", ev)
	}

	if _, err := cs.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start err = %v, want ErrAlreadyRunning", err)
	}

	done := make(chan struct{})
	go func() {
		_ = cs.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	if events := collect(t, ch); len(events) != 0 {
		t.Errorf("events after Stop = %+v, want none", events)
	}

	// A stopped source can be started again.
	cs.Args = []string{"-c", "echo again"}
	ch, err = cs.Start(context.Background())
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if events := collect(t, ch); len(events) != 1 {
		t.Errorf("got %d events after restart, want 1", len(events))
	}
}

func TestCommandSource_StopDoesNotWaitForExit(t *testing.T) {
	requireShell(t)
	// The background child keeps the pipes open after sh is killed.
	cs := &CommandSource{Name: "sh", Args: []string{"-c", `echo ready; sleep 3 & wait`}}

	ch, err := cs.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-ch

	start := time.Now()
	if err := cs.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Stop took %v, want it to return without waiting", elapsed)
	}

	// A new run may start while the old one is still being reaped.
	cs.Args = []string{"-c", "echo next"}
	next, err := cs.Start(context.Background())
	if err != nil {
		t.Fatalf("Start right after Stop: %v", err)
	}
	if events := collect(t, next); len(events) != 1 || events[0].Delta != "next" {
		t.Errorf("events = %+v", events)
	}
	collect(t, ch)
}

func TestCommandSource_MissingBinary(t *testing.T) {
	cs := &CommandSource{Name: "intervu-no-such-recognizer"}
	if cs.Supported() {
		t.Error("missing binary reported as supported")
	}
	if _, err := cs.Start(context.Background()); AsError(err).Code != CodeUnsupported {
		t.Errorf("Start err = %v, want %s", err, CodeUnsupported)
	}
}

func TestScript(t *testing.T) {
	s := &Script{Deltas: []string{"abc", "def"}, Fail: &Error{Code: CodeNoSpeech}}
	ch, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	events := collect(t, ch)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Delta != "abc" || events[1].Delta != "def" {
		t.Errorf("deltas = %q, %q", events[0].Delta, events[1].Delta)
	}
	if events[2].Err == nil || events[2].Err.Code != CodeNoSpeech {
		t.Errorf("last event = %+v, want %s", events[2], CodeNoSpeech)
	}
	if s.Starts() != 1 {
		t.Errorf("Starts = %d, want 1", s.Starts())
	}
}

func TestScript_Stop(t *testing.T) {
	s := &Script{Deltas: []string{"a", "b", "c"}, Interval: time.Hour}
	ch, err := s.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Running() {
		t.Error("Running = false after Start")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.Running() {
		t.Error("Running = true after Stop")
	}
	if events := collect(t, ch); len(events) != 0 {
		t.Errorf("events after Stop = %+v", events)
	}
}
