package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	if data.Action != SessionStart && data.Action != SessionEnd {
		return fmt.Errorf("unknown session action %q", data.Action)
	}
	err := r.insertEvent(ctx, sessionEventsTable.Name, data.SessionID,
		[]string{"action", "topic", "difficulty", "questions_served",
			"questions_answered", "questions_evaluated", "duration_secs"},
		[]any{data.Action, data.Topic, data.Difficulty, data.QuestionsServed,
			data.QuestionsAnswered, data.QuestionsEvaluated, data.DurationSecs},
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	sel := sqlite().Select("session_id", "timestamp", "topic", "difficulty",
		"questions_served", "questions_answered", "questions_evaluated", "duration_secs").
		From(entsql.Table(sessionEventsTable.Name)).
		Where(entsql.EQ("action", SessionEnd))
	query, args := applyQueryOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()

	var records []SessionSummaryRecord
	for rows.Next() {
		var s SessionSummaryRecord
		if err := rows.Scan(&s.SessionID, &s.Timestamp, &s.Topic, &s.Difficulty,
			&s.QuestionsServed, &s.QuestionsAnswered, &s.QuestionsEvaluated, &s.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		records = append(records, s)
	}
	return records, rows.Err()
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	err := r.insertEvent(ctx, answerEventsTable.Name, data.SessionID,
		[]string{"question_id", "topic", "question_text", "reference_answer",
			"user_answer", "short_feedback", "detailed_feedback", "answered_at"},
		[]any{data.QuestionID, data.Topic, data.QuestionText, data.ReferenceAnswer,
			data.UserAnswer, data.ShortFeedback, data.DetailedFeedback, data.AnsweredAt.UTC()},
	)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAnswers(ctx context.Context, opts QueryOpts) ([]AnswerEventRecord, error) {
	sel := sqlite().Select("sequence", "timestamp", "session_id", "question_id", "topic",
		"question_text", "reference_answer", "user_answer", "short_feedback",
		"detailed_feedback", "answered_at").
		From(entsql.Table(answerEventsTable.Name))
	query, args := applyQueryOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var records []AnswerEventRecord
	for rows.Next() {
		var a AnswerEventRecord
		if err := rows.Scan(&a.Sequence, &a.Timestamp, &a.SessionID, &a.QuestionID, &a.Topic,
			&a.QuestionText, &a.ReferenceAnswer, &a.UserAnswer, &a.ShortFeedback,
			&a.DetailedFeedback, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// applyQueryOpts orders newest first; answers read in the order given.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
