// Package capture keeps the answer of the active question in sync between
// manual edits, a dictation transcript, and the stored record.
package capture

import (
	"context"

	"github.com/abhisek/intervu/internal/dictation"
)

// Store persists answers. *stream.Controller satisfies it.
type Store interface {
	UpdateAnswer(id, text string) bool
}

// PersistMode controls when manual edits reach the Store.
type PersistMode int

const (
	// PersistOnCommit batches edits until Commit or deactivation.
	PersistOnCommit PersistMode = iota

	// PersistImmediate writes every edit through.
	PersistImmediate
)

// Run is one dictation run bound to a record.
type Run struct {
	ID       uint64
	RecordID string
	events   <-chan dictation.Event
}

// Next blocks for the next event of the run. Closed is set once the source
// has finished.
func (r *Run) Next() DictationMsg {
	ev, ok := <-r.events
	return DictationMsg{Run: r.ID, RecordID: r.RecordID, Event: ev, Closed: !ok}
}

// DictationMsg carries one dictation event back to the event loop.
type DictationMsg struct {
	Run      uint64
	RecordID string
	Event    dictation.Event
	Closed   bool
}

// Bridge owns the editable answer of exactly one record at a time.
type Bridge struct {
	store  Store
	source dictation.Source
	mode   PersistMode

	activeID string
	text     string
	dirty    bool

	run        *Run
	runSeq     uint64
	transcript string
	err        *dictation.Error
}

// New creates a bridge. A nil source means dictation is unsupported.
func New(store Store, source dictation.Source, mode PersistMode) *Bridge {
	if source == nil {
		source = dictation.Unsupported{}
	}
	return &Bridge{store: store, source: source, mode: mode}
}

// Activate binds the bridge to record id, seeded with its stored answer.
// Pending edits of the previous record are persisted first and any running
// dictation is stopped.
func (b *Bridge) Activate(id, persisted string) {
	if id == b.activeID && b.activeID != "" {
		return
	}
	b.Deactivate()
	b.activeID = id
	b.text = persisted
}

// Deactivate persists pending edits, stops dictation and unbinds.
func (b *Bridge) Deactivate() {
	b.Commit()
	b.stop()
	b.activeID = ""
	b.text = ""
	b.transcript = ""
	b.err = nil
}

// ActiveID returns the bound record id.
func (b *Bridge) ActiveID() string { return b.activeID }

// Text returns the local answer text.
func (b *Bridge) Text() string { return b.text }

// Dirty reports unpersisted manual edits.
func (b *Bridge) Dirty() bool { return b.dirty }

// Edit replaces the local text with a manual edit.
func (b *Bridge) Edit(text string) {
	if b.activeID == "" || text == b.text {
		return
	}
	b.text = text
	b.dirty = true
	if b.mode == PersistImmediate {
		b.Commit()
	}
}

// Commit writes pending manual edits to the store.
func (b *Bridge) Commit() {
	if !b.dirty || b.activeID == "" {
		return
	}
	b.store.UpdateAnswer(b.activeID, b.text)
	b.dirty = false
}

// Supported reports whether dictation can be started at all.
func (b *Bridge) Supported() bool { return b.source.Supported() }

// Listening reports a running dictation.
func (b *Bridge) Listening() bool { return b.run != nil }

// Transcript returns the text dictated in the current run.
func (b *Bridge) Transcript() string { return b.transcript }

// Err returns the last dictation failure, if any.
func (b *Bridge) Err() *dictation.Error { return b.err }

// ClearErr dismisses the dictation failure.
func (b *Bridge) ClearErr() { b.err = nil }

// StartDictation starts a run for record id. It returns nil without error if
// id is not the active record or a run is already active.
func (b *Bridge) StartDictation(ctx context.Context, id string) (*Run, error) {
	if id == "" || id != b.activeID || b.run != nil {
		return nil, nil
	}
	b.transcript = ""
	b.err = nil

	events, err := b.source.Start(ctx)
	if err != nil {
		b.err = dictation.AsError(err)
		return nil, b.err
	}
	b.runSeq++
	b.run = &Run{ID: b.runSeq, RecordID: id, events: events}
	return b.run, nil
}

// StopDictation stops the run for record id. It is a no-op unless id is the
// active record.
func (b *Bridge) StopDictation(id string) {
	if id == "" || id != b.activeID {
		return
	}
	b.stop()
}

// HandleDictation applies an event. Events of a finished run or of a record
// that is no longer active are dropped. It reports whether the text changed.
func (b *Bridge) HandleDictation(msg DictationMsg) bool {
	if b.run == nil || msg.Run != b.run.ID || msg.RecordID != b.activeID {
		return false
	}
	switch {
	case msg.Closed:
		b.run = nil
		return false
	case msg.Event.Err != nil:
		b.err = msg.Event.Err
		b.stop()
		return false
	case msg.Event.Delta == "":
		return false
	}

	b.transcript += msg.Event.Delta
	b.text += msg.Event.Delta
	b.store.UpdateAnswer(b.activeID, b.text)
	b.dirty = false
	return true
}

// Running returns the active run, or nil.
func (b *Bridge) Running() *Run { return b.run }

func (b *Bridge) stop() {
	if b.run == nil {
		return
	}
	b.run = nil
	if err := b.source.Stop(); err != nil {
		b.err = dictation.AsError(err)
	}
}
