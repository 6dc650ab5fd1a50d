package session

import (
	"context"

	"github.com/abhisek/intervu/internal/store"
	"github.com/abhisek/intervu/internal/stream"
)

// Recorder appends session lifecycle and answer events to the event log.
// A nil repo makes every method a no-op.
type Recorder struct {
	repo store.EventRepo
}

// NewRecorder creates a recorder over repo, which may be nil.
func NewRecorder(repo store.EventRepo) *Recorder {
	return &Recorder{repo: repo}
}

// Start records that the first batch arrived.
func (r *Recorder) Start(ctx context.Context, s *Session) error {
	if r == nil || r.repo == nil {
		return nil
	}
	return r.repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:       s.ID,
		Action:          store.SessionStart,
		Topic:           s.Config.Topic,
		Difficulty:      string(s.Config.Difficulty),
		QuestionsServed: s.Stream.Len(),
	})
}

// Answer records an evaluated answer.
func (r *Recorder) Answer(ctx context.Context, s *Session, rec stream.Record) error {
	if r == nil || r.repo == nil {
		return nil
	}
	data := store.AnswerEventData{
		SessionID:       s.ID,
		QuestionID:      rec.ID,
		Topic:           rec.Topic,
		QuestionText:    rec.Prompt,
		ReferenceAnswer: rec.ReferenceAnswer,
		UserAnswer:      rec.UserAnswer,
		AnsweredAt:      s.now(),
	}
	if rec.Feedback != nil {
		data.ShortFeedback = rec.Feedback.Short
		data.DetailedFeedback = rec.Feedback.Detailed
	}
	return r.repo.AppendAnswerEvent(ctx, data)
}

// End records the session totals.
func (r *Recorder) End(ctx context.Context, s *Session, sum *Summary) error {
	if r == nil || r.repo == nil {
		return nil
	}
	return r.repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:          s.ID,
		Action:             store.SessionEnd,
		Topic:              sum.Topic,
		Difficulty:         sum.Difficulty,
		QuestionsServed:    sum.Served,
		QuestionsAnswered:  len(sum.Answered),
		QuestionsEvaluated: sum.Evaluated,
		DurationSecs:       int(sum.Duration.Seconds()),
	})
}
