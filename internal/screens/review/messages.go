package review

import (
	"time"

	"github.com/abhisek/intervu/internal/capture"
	"github.com/abhisek/intervu/internal/session"
	"github.com/abhisek/intervu/internal/stream"
)

// settleMsg resolves a navigation transition after its settle delay.
type settleMsg struct {
	Token uint64
}

// moreLoadedMsg carries a preload result.
type moreLoadedMsg struct {
	Result stream.BatchResult
}

// evaluatedMsg carries an evaluation result.
type evaluatedMsg struct {
	Result session.EvaluationResult
}

// dictationMsg is one event read from a dictation run. run is kept so the
// screen can keep draining it until it closes.
type dictationMsg struct {
	run *capture.Run
	capture.DictationMsg
}

// spinnerTickMsg animates the loading indicator.
type spinnerTickMsg time.Time

// recordedMsg reports the outcome of an event log write.
type recordedMsg struct {
	What string
	Err  error
}
