// Package dictation provides speech-to-text transcript sources for answer
// capture.
package dictation

import (
	"context"
	"errors"
	"fmt"
)

// Event is one notification from a running dictation. Exactly one of Delta
// and Err is set.
type Event struct {
	// Delta is finalized transcript text to append to the answer.
	Delta string

	Err *Error
}

// Source produces an incremental transcript. Start returns a channel that is
// closed when the run ends, either because Stop was called, the context was
// cancelled, or the underlying recognizer finished.
type Source interface {
	Supported() bool
	Start(ctx context.Context) (<-chan Event, error)
	Stop() error
}

// Code classifies a dictation failure.
type Code string

const (
	CodeNoSpeech     Code = "no-speech"
	CodeAudioCapture Code = "audio-capture"
	CodeNotAllowed   Code = "not-allowed"
	CodeUnsupported  Code = "unsupported"
	CodeProcess      Code = "process"
)

// Error is a dictation failure. It never affects text already captured.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dictation %s: %v", e.Code, e.Err)
	}
	return "dictation " + string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the user-facing text for the failure.
func (e *Error) Message() string {
	switch e.Code {
	case CodeNoSpeech:
		return "No speech was recognized. Try again."
	case CodeAudioCapture:
		return "Audio capture failed. Check the microphone."
	case CodeNotAllowed:
		return "Microphone access was denied. Check the permissions."
	case CodeUnsupported:
		return "Speech recognition is not available. Set INTERVU_DICTATION_CMD."
	}
	return "Speech recognition failed."
}

// ErrAlreadyRunning is returned by Start while a run is active.
var ErrAlreadyRunning = errors.New("dictation already running")

// AsError converts any error into a *Error, classifying unknown ones as
// process failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Code: CodeProcess, Err: err}
}

// Unsupported is the source used when no recognizer is configured.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) Start(context.Context) (<-chan Event, error) {
	return nil, &Error{Code: CodeUnsupported}
}

func (Unsupported) Stop() error { return nil }
