package session

import (
	"sort"
	"time"

	"github.com/abhisek/intervu/internal/stream"
)

// Summary holds the data displayed on the summary screen.
type Summary struct {
	Topic      string
	Difficulty string
	Duration   time.Duration

	// Served is the number of records fetched.
	Served int

	// Evaluated counts answers with real (not failed) feedback.
	Evaluated int

	// Answered records in chronological order.
	Answered []stream.Record
}

// BuildSummary collects the answered records of the session. A record counts
// as answered once it has an answer or feedback.
func (s *Session) BuildSummary() *Summary {
	snap := s.Stream.Snapshot()
	sum := &Summary{
		Topic:      s.Config.Topic,
		Difficulty: string(s.Config.Difficulty),
		Duration:   s.Elapsed(),
		Served:     len(snap.Records),
		Answered:   Answered(snap.Records),
	}
	for _, r := range sum.Answered {
		if r.Feedback != nil && !r.EvaluationFailed {
			sum.Evaluated++
		}
	}
	return sum
}

// Answered filters records to the answered ones, oldest first.
func Answered(records []stream.Record) []stream.Record {
	var out []stream.Record
	for _, r := range records {
		if r.Answered() || r.Feedback != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}
