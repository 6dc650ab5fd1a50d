package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/abhisek/intervu/internal/stream"
)

// ErrNothingToExport is returned when no question was answered.
var ErrNothingToExport = errors.New("no answered questions to export")

// ExportItem is one entry of the JSON summary file.
type ExportItem struct {
	Topic            string  `json:"topic"`
	Question         string  `json:"question"`
	CorrectAnswer    string  `json:"correctAnswer"`
	UserAnswer       string  `json:"userAnswer"`
	ShortFeedback    *string `json:"shortFeedback"`
	DetailedFeedback *string `json:"detailedFeedback"`
	Timestamp        string  `json:"timestamp"`
}

const exportTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ExportItems converts answered records to export entries, keeping order.
func ExportItems(records []stream.Record) []ExportItem {
	items := make([]ExportItem, 0, len(records))
	for _, r := range records {
		it := ExportItem{
			Topic:         r.Topic,
			Question:      r.Prompt,
			CorrectAnswer: r.ReferenceAnswer,
			UserAnswer:    r.UserAnswer,
			Timestamp:     r.CreatedAt.UTC().Format(exportTimeLayout),
		}
		if r.Feedback != nil {
			short, detailed := r.Feedback.Short, r.Feedback.Detailed
			it.ShortFeedback = &short
			if detailed != "" {
				it.DetailedFeedback = &detailed
			}
		}
		items = append(items, it)
	}
	return items
}

// Export writes the answered records as indented JSON.
func Export(w io.Writer, records []stream.Record) error {
	if len(records) == 0 {
		return ErrNothingToExport
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ExportItems(records)); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

var nonFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExportFilename names the summary file for topic on day.
func ExportFilename(topic string, day time.Time) string {
	if strings.TrimSpace(topic) == "" {
		topic = "general"
	}
	safe := strings.ToLower(nonFilenameChars.ReplaceAllString(topic, "_"))
	return fmt.Sprintf("interview_summary_%s_%s.json", safe, day.UTC().Format("2006-01-02"))
}

// ExportFile writes the summary into dir and returns the file path.
func ExportFile(dir string, sum *Summary, now time.Time) (string, error) {
	if len(sum.Answered) == 0 {
		return "", ErrNothingToExport
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(sum.Topic, now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := Export(f, sum.Answered); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}
