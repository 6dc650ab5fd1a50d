package questiongen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func mustDefaultBank(t *testing.T) *Bank {
	t.Helper()
	b, err := DefaultBank()
	if err != nil {
		t.Fatalf("DefaultBank: %v", err)
	}
	return b
}

func wantErrContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil || !strings.Contains(err.Error(), substr) {
		t.Errorf("err = %v, want it to contain %q", err, substr)
	}
}

func TestDefaultBank(t *testing.T) {
	b := mustDefaultBank(t)
	if got := b.Topics(); !reflect.DeepEqual(got, []string{"Java"}) {
		t.Errorf("Topics = %v, want [Java]", got)
	}

	for topic, want := range map[string]bool{
		"Java":             true,
		"java concurrency": true,
		"JavaScript":       false,
		"Python":           false,
	} {
		if got := b.Matches(topic); got != want {
			t.Errorf("Matches(%q) = %v, want %v", topic, got, want)
		}
	}

	for _, d := range Difficulties {
		items, err := b.FetchBatch(context.Background(), BatchRequest{Topic: "Java", Difficulty: d, Size: 10})
		if err != nil {
			t.Fatalf("FetchBatch(%s): %v", d, err)
		}
		if len(items) != 5 {
			t.Errorf("difficulty %s: %d items, want 5", d, len(items))
		}
	}
}

func TestBank_ServesUnseenThenRunsDry(t *testing.T) {
	b := mustDefaultBank(t)
	ctx := context.Background()

	req := BatchRequest{Topic: "Java", Difficulty: Middle, Size: 3}
	first, err := b.FetchBatch(ctx, req)
	if err != nil || len(first) != 3 {
		t.Fatalf("first batch = %d items, %v", len(first), err)
	}

	for _, it := range first {
		req.PriorPrompts = append(req.PriorPrompts, it.Prompt)
	}
	second, err := b.FetchBatch(ctx, req)
	if err != nil || len(second) != 2 {
		t.Fatalf("second batch = %d items, %v", len(second), err)
	}
	if first[0].Prompt == second[0].Prompt {
		t.Error("second batch repeated a served question")
	}

	for _, it := range second {
		req.PriorPrompts = append(req.PriorPrompts, it.Prompt)
	}
	third, err := b.FetchBatch(ctx, req)
	if err != nil {
		t.Fatalf("third batch: %v", err)
	}
	if len(third) != 0 {
		t.Errorf("third batch = %d items, want none", len(third))
	}
}

func TestParseBank(t *testing.T) {
	_, err := ParseBank([]byte("topics: []"))
	wantErrContains(t, err, "no topics")

	_, err = ParseBank([]byte(`
topics:
  - name: Go
    questions:
      expert:
        - question: q
          answer: a
`))
	wantErrContains(t, err, "unknown difficulty")

	_, err = ParseBank([]byte(`
topics:
  - name: Go
    questions:
      junior:
        - question: q
`))
	wantErrContains(t, err, "question and answer are required")

	b, err := ParseBank([]byte(`
topics:
  - name: Go
    questions:
      Junior:
        - question: What is a slice?
          answer: A view over an array.
`))
	if err != nil {
		t.Fatalf("ParseBank: %v", err)
	}
	if !b.Matches("go") {
		t.Error("the topic name should double as a match keyword")
	}
	items, err := b.FetchBatch(context.Background(), BatchRequest{Topic: "Go", Difficulty: Junior})
	if err != nil || len(items) != 1 {
		t.Fatalf("FetchBatch = %d items, %v", len(items), err)
	}
	if items[0].ReferenceAnswer != "A view over an array." {
		t.Errorf("ReferenceAnswer = %q", items[0].ReferenceAnswer)
	}
}

func TestLoadBankAndExtend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	err := os.WriteFile(path, []byte(`
topics:
  - name: Java
    match: [java]
    questions:
      senior:
        - question: Custom senior Java question?
          answer: Custom answer.
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	user, err := LoadBank(path)
	if err != nil {
		t.Fatalf("LoadBank: %v", err)
	}

	b := mustDefaultBank(t).Extend(user)
	items, err := b.FetchBatch(context.Background(), BatchRequest{Topic: "Java", Difficulty: Senior, Size: 7})
	if err != nil || len(items) != 1 {
		t.Fatalf("FetchBatch = %d items, %v", len(items), err)
	}
	if items[0].Prompt != "Custom senior Java question?" {
		t.Errorf("Prompt = %q", items[0].Prompt)
	}

	if _, err := LoadBank(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadBank of a missing file succeeded")
	}
}

func TestRouter(t *testing.T) {
	var fallbackCalls int
	r := &Router{
		Bank: mustDefaultBank(t),
		Fallback: FetcherFunc(func(_ context.Context, req BatchRequest) ([]Item, error) {
			fallbackCalls++
			return []Item{{Prompt: req.Topic + "?", ReferenceAnswer: "x"}}, nil
		}),
	}
	ctx := context.Background()

	items, err := r.FetchBatch(ctx, BatchRequest{Topic: "Java", Difficulty: Junior, Size: 2})
	if err != nil || len(items) != 2 {
		t.Fatalf("bank topic: %d items, %v", len(items), err)
	}
	if fallbackCalls != 0 {
		t.Error("bank topic reached the fallback")
	}

	items, err = r.FetchBatch(ctx, BatchRequest{Topic: "JavaScript", Difficulty: Junior, Size: 2})
	if err != nil {
		t.Fatalf("fallback topic: %v", err)
	}
	if items[0].Prompt != "JavaScript?" || fallbackCalls != 1 {
		t.Errorf("fallback: prompt %q, calls %d", items[0].Prompt, fallbackCalls)
	}

	r.Fallback = nil
	_, err = r.FetchBatch(ctx, BatchRequest{Topic: "Python"})
	wantErrContains(t, err, "configure an LLM provider")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err = r.FetchBatch(cancelled, BatchRequest{Topic: "Java", Difficulty: Junior}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("senior")
	if err != nil || d != Senior {
		t.Errorf("ParseDifficulty(senior) = %v, %v", d, err)
	}

	if _, err := ParseDifficulty("lead"); err == nil {
		t.Error("ParseDifficulty(lead) succeeded")
	}
}
