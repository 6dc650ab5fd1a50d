package stream

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/intervu/internal/questiongen"
)

// Config is the session configuration a stream is started with.
type Config struct {
	Topic      string
	Difficulty questiongen.Difficulty

	// BatchSize is the number of questions requested per fetch. Zero means
	// questiongen.DefaultBatchSize.
	BatchSize int
}

func (c Config) batchSize() int {
	if c.BatchSize <= 0 {
		return questiongen.DefaultBatchSize
	}
	return c.BatchSize
}

// Reveal holds the user-toggled visibility flags of a record.
type Reveal struct {
	AnswerVisible           bool
	DetailedFeedbackVisible bool
}

// Record is one question under review.
type Record struct {
	// ID is assigned once and never reused within a controller.
	ID string

	Prompt          string
	ReferenceAnswer string

	// Topic is copied from the session configuration at fetch time.
	Topic string

	// UserAnswer is written only through Controller.UpdateAnswer.
	UserAnswer string

	// Feedback is nil until an evaluation completes.
	Feedback *questiongen.Feedback

	Reveal Reveal

	// EvaluationInFlight is true between evaluation start and completion.
	EvaluationInFlight bool

	// EvaluationFailed marks Feedback as an error placeholder.
	EvaluationFailed bool

	CreatedAt time.Time

	// Seq orders records that share a CreatedAt.
	Seq uint64
}

// Answered reports whether the record carries a non-empty answer.
func (r Record) Answered() bool {
	return strings.TrimSpace(r.UserAnswer) != ""
}

// FetchState tracks the fetch-more protocol.
type FetchState struct {
	InFlight  bool
	Exhausted bool
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Records []Record
	Fetch   FetchState
}

// Patch is a shallow update applied by Controller.PatchRecord. Nil fields
// are left alone.
type Patch struct {
	Feedback           *questiongen.Feedback
	ClearFeedback      bool
	EvaluationFailed   *bool
	Reveal             *Reveal
	EvaluationInFlight *bool
}

// Bool returns a pointer to v, for building patches.
func Bool(v bool) *bool { return &v }

var (
	// ErrStale is returned when a result belongs to a superseded session.
	ErrStale = errors.New("stale fetch result")

	// ErrNoQuestions is the cause of an initial FetchError when the first
	// batch comes back empty.
	ErrNoQuestions = errors.New("no questions were generated")
)

// FetchError reports a failed batch fetch. An initial failure blocks the
// session from starting; a preload failure only exhausts the stream.
type FetchError struct {
	Initial bool
	Err     error
}

func (e *FetchError) Error() string {
	if e.Initial {
		return fmt.Sprintf("loading questions: %v", e.Err)
	}
	return fmt.Sprintf("loading more questions: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Outcome describes what applying a preload result did.
type Outcome struct {
	// Appended is the number of records added to the queue.
	Appended int

	// Exhausted is true when this result ended the stream.
	Exhausted bool

	// Stale is true when the result was discarded.
	Stale bool

	// Err is set on a non-fatal preload failure.
	Err *FetchError
}
