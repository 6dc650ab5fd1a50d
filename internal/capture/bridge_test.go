package capture

import (
	"context"
	"testing"

	"github.com/abhisek/intervu/internal/dictation"
)

type mapStore map[string]string

func (m mapStore) UpdateAnswer(id, text string) bool {
	if _, ok := m[id]; !ok {
		return false
	}
	m[id] = text
	return true
}

// fakeSource hands out channels the test feeds by hand.
type fakeSource struct {
	ch      chan dictation.Event
	starts  int
	stops   int
	failErr error
}

func (f *fakeSource) Supported() bool { return true }

func (f *fakeSource) Start(context.Context) (<-chan dictation.Event, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	f.starts++
	f.ch = make(chan dictation.Event, 8)
	return f.ch, nil
}

func (f *fakeSource) Stop() error {
	f.stops++
	return nil
}

func delta(run *Run, text string) DictationMsg {
	return DictationMsg{Run: run.ID, RecordID: run.RecordID, Event: dictation.Event{Delta: text}}
}

func wantText(t *testing.T, what, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", what, got, want)
	}
}

func TestBridge_TypedThenDictated(t *testing.T) {
	store := mapStore{"A": "", "B": ""}
	src := &fakeSource{}
	b := New(store, src, PersistOnCommit)

	b.Activate("A", store["A"])
	b.Edit("abc")
	wantText(t, "stored A before commit", store["A"], "")

	run, err := b.StartDictation(context.Background(), "A")
	if err != nil || run == nil {
		t.Fatalf("StartDictation = %v, %v", run, err)
	}
	if !b.Listening() {
		t.Error("Listening = false after start")
	}

	if !b.HandleDictation(delta(run, "def")) {
		t.Error("delta was not applied")
	}
	wantText(t, "Text", b.Text(), "abcdef")
	wantText(t, "stored A", store["A"], "abcdef")
	wantText(t, "Transcript", b.Transcript(), "def")

	b.Activate("B", store["B"])
	if src.stops != 1 || b.Listening() {
		t.Errorf("navigation must force-stop dictation: stops = %d, listening = %v", src.stops, b.Listening())
	}

	b.Activate("A", store["A"])
	wantText(t, "Text after return", b.Text(), "abcdef")
}

func TestBridge_EditsPersistBeforeDeactivation(t *testing.T) {
	store := mapStore{"A": "", "B": "seed"}
	b := New(store, nil, PersistOnCommit)

	b.Activate("A", "")
	b.Edit("draft")
	if !b.Dirty() {
		t.Error("Dirty = false after an on-commit edit")
	}
	b.Activate("B", store["B"])

	wantText(t, "stored A", store["A"], "draft")
	wantText(t, "Text", b.Text(), "seed")
	if b.Dirty() {
		t.Error("Dirty = true after switching records")
	}
}

func TestBridge_ImmediateMode(t *testing.T) {
	store := mapStore{"A": ""}
	b := New(store, nil, PersistImmediate)
	b.Activate("A", "")
	b.Edit("x")
	wantText(t, "stored A", store["A"], "x")
	if b.Dirty() {
		t.Error("Dirty = true in immediate mode")
	}
}

func TestBridge_CommitAndEditWithoutActive(t *testing.T) {
	store := mapStore{"A": ""}
	b := New(store, nil, PersistImmediate)
	b.Edit("ignored")
	b.Commit()
	wantText(t, "stored A", store["A"], "")
	wantText(t, "Text", b.Text(), "")
}

func TestBridge_StaleTranscriptDropped(t *testing.T) {
	store := mapStore{"A": "", "B": ""}
	src := &fakeSource{}
	b := New(store, src, PersistOnCommit)

	b.Activate("A", "")
	run, err := b.StartDictation(context.Background(), "A")
	if err != nil {
		t.Fatalf("StartDictation: %v", err)
	}

	b.Activate("B", "")
	if b.HandleDictation(delta(run, "late words")) {
		t.Error("a delta for an inactive record was applied")
	}
	wantText(t, "stored A", store["A"], "")
	wantText(t, "stored B", store["B"], "")

	// A new run on B ignores leftovers of the old run, even for B.
	runB, err := b.StartDictation(context.Background(), "B")
	if err != nil {
		t.Fatalf("StartDictation(B): %v", err)
	}
	stale := delta(run, "old")
	stale.RecordID = "B"
	if b.HandleDictation(stale) {
		t.Error("a delta of a finished run was applied")
	}
	if !b.HandleDictation(delta(runB, "new")) {
		t.Error("a delta of the current run was dropped")
	}
	wantText(t, "stored B", store["B"], "new")
}

func TestBridge_ToggleOnlyForActive(t *testing.T) {
	store := mapStore{"A": "", "B": ""}
	src := &fakeSource{}
	b := New(store, src, PersistOnCommit)
	b.Activate("A", "")

	run, err := b.StartDictation(context.Background(), "B")
	if err != nil || run != nil || src.starts != 0 {
		t.Errorf("StartDictation(inactive) = %v, %v with %d starts", run, err, src.starts)
	}

	run, _ = b.StartDictation(context.Background(), "A")
	if run == nil {
		t.Fatal("StartDictation(A) = nil")
	}

	if again, _ := b.StartDictation(context.Background(), "A"); again != nil {
		t.Error("a second run started while listening")
	}
	if src.starts != 1 {
		t.Errorf("starts = %d, want 1", src.starts)
	}

	b.StopDictation("B")
	if !b.Listening() {
		t.Error("StopDictation(inactive) stopped the run")
	}
	b.StopDictation("A")
	if b.Listening() || src.stops != 1 {
		t.Errorf("after StopDictation(A): listening = %v, stops = %d", b.Listening(), src.stops)
	}
}

func TestBridge_NewRunClearsTranscript(t *testing.T) {
	store := mapStore{"A": ""}
	b := New(store, &fakeSource{}, PersistOnCommit)
	b.Activate("A", "")

	run, _ := b.StartDictation(context.Background(), "A")
	b.HandleDictation(delta(run, "one"))
	b.StopDictation("A")

	run, _ = b.StartDictation(context.Background(), "A")
	wantText(t, "Transcript after restart", b.Transcript(), "")
	b.HandleDictation(delta(run, " two"))
	wantText(t, "Transcript", b.Transcript(), " two")
	wantText(t, "Text", b.Text(), "one two")
}

func TestBridge_DictationErrorKeepsTyping(t *testing.T) {
	store := mapStore{"A": "kept"}
	src := &fakeSource{}
	b := New(store, src, PersistImmediate)
	b.Activate("A", "kept")

	run, _ := b.StartDictation(context.Background(), "A")
	msg := DictationMsg{Run: run.ID, RecordID: "A", Event: dictation.Event{Err: &dictation.Error{Code: dictation.CodeNoSpeech}}}
	if b.HandleDictation(msg) {
		t.Error("an error event changed the text")
	}

	if b.Err() == nil || b.Err().Code != dictation.CodeNoSpeech {
		t.Fatalf("Err = %v, want %s", b.Err(), dictation.CodeNoSpeech)
	}
	if b.Listening() {
		t.Error("still listening after an error")
	}
	wantText(t, "stored A", store["A"], "kept")

	b.Edit("kept and typed")
	wantText(t, "stored A after typing", store["A"], "kept and typed")

	b.ClearErr()
	if b.Err() != nil {
		t.Error("ClearErr did not clear")
	}
}

func TestBridge_StartFailure(t *testing.T) {
	b := New(mapStore{"A": ""}, nil, PersistOnCommit)
	if b.Supported() {
		t.Error("nil source reported as supported")
	}
	b.Activate("A", "")

	run, err := b.StartDictation(context.Background(), "A")
	if run != nil || err == nil {
		t.Fatalf("StartDictation = %v, %v; want an error", run, err)
	}
	if b.Err().Code != dictation.CodeUnsupported {
		t.Errorf("Code = %s, want %s", b.Err().Code, dictation.CodeUnsupported)
	}
	if b.Listening() {
		t.Error("listening after a failed start")
	}
}

func TestBridge_ClosedRun(t *testing.T) {
	src := &fakeSource{}
	b := New(mapStore{"A": ""}, src, PersistOnCommit)
	b.Activate("A", "")
	run, _ := b.StartDictation(context.Background(), "A")

	src.ch <- dictation.Event{Delta: "hi"}
	close(src.ch)

	if !b.HandleDictation(run.Next()) {
		t.Error("delta before close was dropped")
	}
	closed := run.Next()
	if !closed.Closed {
		t.Fatalf("Next = %+v, want Closed", closed)
	}
	b.HandleDictation(closed)
	if b.Listening() {
		t.Error("still listening after the run closed")
	}
	wantText(t, "Text", b.Text(), "hi")
}

func TestBridge_WithScriptSource(t *testing.T) {
	store := mapStore{"A": "abc"}
	b := New(store, &dictation.Script{Deltas: []string{"def"}}, PersistOnCommit)
	b.Activate("A", store["A"])

	run, err := b.StartDictation(context.Background(), "A")
	if err != nil {
		t.Fatalf("StartDictation: %v", err)
	}
	for {
		msg := run.Next()
		b.HandleDictation(msg)
		if msg.Closed {
			break
		}
	}
	wantText(t, "stored A", store["A"], "abcdef")
}
