package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/intervu/internal/llm"
)

func batchJSON(pairs ...string) json.RawMessage {
	type q struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	var out struct {
		Questions []q `json:"questions"`
	}
	out.Questions = []q{}
	for i := 0; i+1 < len(pairs); i += 2 {
		out.Questions = append(out.Questions, q{pairs[i], pairs[i+1]})
	}
	b, _ := json.Marshal(out)
	return b
}

func goRequest() BatchRequest {
	return BatchRequest{Topic: "Go", Difficulty: Senior, Size: 3}
}

func TestFetchBatch_ReturnsItemsInOrder(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(
		"What is a goroutine?", "A lightweight thread managed by the Go runtime.",
		"What does select do?", "Waits on multiple channel operations.",
	)})
	gen := New(mock, DefaultConfig())

	items, err := gen.FetchBatch(context.Background(), goRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Prompt != "What is a goroutine?" || items[1].Prompt != "What does select do?" {
		t.Errorf("unexpected order: %+v", items)
	}

	req := mock.Calls[0]
	if req.Schema != BatchSchema {
		t.Error("expected BatchSchema on request")
	}
	if !strings.Contains(req.Messages[0].Content, "Level: Senior (advanced)") {
		t.Errorf("user message missing level:\n%s", req.Messages[0].Content)
	}
	if req.TopP != 0.95 {
		t.Errorf("TopP = %v, want 0.95", req.TopP)
	}
}

func TestFetchBatch_TruncatesToSize(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(
		"Q1?", "A1", "Q2?", "A2", "Q3?", "A3", "Q4?", "A4",
	)})
	items, err := New(mock, DefaultConfig()).FetchBatch(context.Background(), goRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("items = %d, want 3", len(items))
	}
}

func TestFetchBatch_DropsDuplicatesOfPriorPrompts(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(
		"what is a  GOROUTINE", "dup of prior",
		"What is a channel?", "A typed conduit.",
		"What is a channel?", "Same question twice in one batch.",
	)})
	req := goRequest()
	req.PriorPrompts = []string{"What is a goroutine?"}

	items, err := New(mock, DefaultConfig()).FetchBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Prompt != "What is a channel?" {
		t.Errorf("items = %+v, want only the channel question", items)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "1. What is a goroutine?") {
		t.Error("prior prompts not listed in request")
	}
}

func TestFetchBatch_EmptyArrayIsNotAnError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON()})
	items, err := New(mock, DefaultConfig()).FetchBatch(context.Background(), goRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d, want 0", len(items))
	}
}

func TestFetchBatch_AllInvalidReturnsValidationError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON(
		"", "orphan answer",
		"Same?", "same",
	)})
	_, err := New(mock, DefaultConfig()).FetchBatch(context.Background(), goRequest())

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if verr.Validator != "structural" {
		t.Errorf("validator = %q, want structural", verr.Validator)
	}
}

func TestFetchBatch_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	_, err := New(mock, DefaultConfig()).FetchBatch(context.Background(), goRequest())

	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T: %v", err, err)
	}
}

func TestFetchBatch_DemoProvider(t *testing.T) {
	gen := New(llm.NewDemoProvider(), DefaultConfig())
	items, err := gen.FetchBatch(context.Background(), BatchRequest{Topic: "Rust", Difficulty: Junior, Size: DefaultBatchSize})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != DefaultBatchSize {
		t.Errorf("items = %d, want %d", len(items), DefaultBatchSize)
	}
}

func TestStructuralValidator(t *testing.T) {
	v := &StructuralValidator{}
	cases := []struct {
		name string
		item Item
		ok   bool
	}{
		{"valid", Item{"Q?", "A"}, true},
		{"blank prompt", Item{"   ", "A"}, false},
		{"blank answer", Item{"Q?", ""}, false},
		{"long prompt", Item{strings.Repeat("x", 1001), "A"}, false},
		{"long answer", Item{"Q?", strings.Repeat("y", 4001)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(&tc.item, BatchRequest{})
			if (err == nil) != tc.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestDedupKey(t *testing.T) {
	pairs := [][2]string{
		{"What is a goroutine?", "what is a goroutine"},
		{"  Tabs\tand\nnewlines ", "tabs and newlines"},
		{"Café", "café"},
	}
	for _, p := range pairs {
		if got := dedupKey(p[0]); got != p[1] {
			t.Errorf("dedupKey(%q) = %q, want %q", p[0], got, p[1])
		}
	}
}

func TestBuildDedup(t *testing.T) {
	if got := buildDedup(nil, 5); got != "None" {
		t.Errorf("empty = %q, want None", got)
	}
	got := buildDedup([]string{"a", "b", "c"}, 2)
	if got != "1. b\n2. c" {
		t.Errorf("buildDedup = %q", got)
	}
}
