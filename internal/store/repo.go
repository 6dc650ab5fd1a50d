package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	SessionID string    // restrict to one review session
	Purpose   string    // LLM events only
}

// SnapshotData holds the setup choices remembered between runs.
type SnapshotData struct {
	Version    int    `json:"version"`
	Topic      string `json:"topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	BatchSize  int    `json:"batch_size,omitempty"`
}

// Snapshot is a point-in-time capture of SnapshotData.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages remembered setup snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	SessionID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates calls per purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates tokens per model for cost estimates.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Session event actions.
const (
	SessionStart = "start"
	SessionEnd   = "end"
)

// SessionEventData records the start or end of a review session.
type SessionEventData struct {
	SessionID          string
	Action             string
	Topic              string
	Difficulty         string
	QuestionsServed    int
	QuestionsAnswered  int
	QuestionsEvaluated int
	DurationSecs       int
}

// SessionSummaryRecord is one finished session, as listed by history.
type SessionSummaryRecord struct {
	SessionID          string
	Timestamp          time.Time
	Topic              string
	Difficulty         string
	QuestionsServed    int
	QuestionsAnswered  int
	QuestionsEvaluated int
	DurationSecs       int
}

// AnswerEventData records one answered question with its feedback.
type AnswerEventData struct {
	SessionID        string
	QuestionID       string
	Topic            string
	QuestionText     string
	ReferenceAnswer  string
	UserAnswer       string
	ShortFeedback    string
	DetailedFeedback string
	AnsweredAt       time.Time
}

// AnswerEventRecord is a stored answer event.
type AnswerEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
	// GetLLMEvent returns nil, nil when id does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)

	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error)

	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	// QueryAnswers returns answers oldest first.
	QueryAnswers(ctx context.Context, opts QueryOpts) ([]AnswerEventRecord, error)
}
