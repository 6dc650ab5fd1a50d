package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/intervu/internal/questiongen"
	"github.com/abhisek/intervu/internal/stream"
)

// ErrEvaluationPending is returned while the record is already being
// evaluated.
var ErrEvaluationPending = errors.New("evaluation already in progress")

// ErrNoEvaluator is returned when the session has no evaluator configured.
var ErrNoEvaluator = errors.New("no evaluator configured")

// Evaluation is a pending answer evaluation for one record.
type Evaluation struct {
	RecordID string
	Input    questiongen.EvaluateInput
}

// Run calls the evaluator. It touches no session state.
func (e *Evaluation) Run(ctx context.Context, ev questiongen.Evaluator) EvaluationResult {
	fb, err := ev.Evaluate(ctx, e.Input)
	return EvaluationResult{RecordID: e.RecordID, Feedback: fb, Err: err}
}

// EvaluationResult is the completion of an Evaluation.
type EvaluationResult struct {
	RecordID string
	Feedback *questiongen.Feedback
	Err      error
}

// Evaluator returns the configured evaluator.
func (s *Session) Evaluator() questiongen.Evaluator { return s.evaluator }

// BeginEvaluation marks record id as being evaluated and returns the call to
// run. Blank answers are refused without contacting the evaluator.
func (s *Session) BeginEvaluation(id string) (*Evaluation, error) {
	if s.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if id == s.Capture.ActiveID() {
		s.Capture.Commit()
	}
	r, _, ok := s.Stream.Find(id)
	if !ok {
		return nil, fmt.Errorf("unknown question %q", id)
	}
	if r.EvaluationInFlight {
		return nil, ErrEvaluationPending
	}
	if !r.Answered() {
		return nil, questiongen.ErrBlankAnswer
	}

	rev := r.Reveal
	rev.DetailedFeedbackVisible = false
	s.Stream.PatchRecord(id, stream.Patch{
		ClearFeedback:      true,
		EvaluationFailed:   stream.Bool(false),
		EvaluationInFlight: stream.Bool(true),
		Reveal:             &rev,
	})
	return &Evaluation{
		RecordID: id,
		Input: questiongen.EvaluateInput{
			Topic:           r.Topic,
			Question:        r.Prompt,
			ReferenceAnswer: r.ReferenceAnswer,
			UserAnswer:      r.UserAnswer,
		},
	}, nil
}

// ApplyEvaluation stores the outcome on its record only. A failure writes a
// placeholder feedback and is otherwise contained.
func (s *Session) ApplyEvaluation(res EvaluationResult) (stream.Record, bool) {
	p := stream.Patch{EvaluationInFlight: stream.Bool(false)}
	if res.Err != nil || res.Feedback == nil {
		err := res.Err
		if err == nil {
			err = errors.New("empty feedback")
		}
		p.Feedback = &questiongen.Feedback{Short: "Evaluation failed: " + rootMessage(err)}
		p.EvaluationFailed = stream.Bool(true)
	} else {
		p.Feedback = res.Feedback
		p.EvaluationFailed = stream.Bool(false)
	}
	if !s.Stream.PatchRecord(res.RecordID, p) {
		return stream.Record{}, false
	}
	r, _, _ := s.Stream.Find(res.RecordID)
	return r, true
}

func rootMessage(err error) string {
	var ee *questiongen.EvaluationError
	if errors.As(err, &ee) && ee.Err != nil {
		return ee.Err.Error()
	}
	return err.Error()
}
