package questiongen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/intervu/internal/llm"
)

func evalInput(answer string) EvaluateInput {
	return EvaluateInput{
		Topic:           "Java",
		Question:        "What is the JVM?",
		ReferenceAnswer: "A virtual machine that runs bytecode.",
		UserAnswer:      answer,
	}
}

func TestEvaluate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: []byte(`{"short_feedback":" Good answer. ","detailed_feedback":"- Mentions bytecode\n- Misses GC"}`),
	})
	ev := NewEvaluator(mock, DefaultEvalConfig())

	fb, err := ev.Evaluate(context.Background(), evalInput("It runs bytecode"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fb.Short != "Good answer." {
		t.Errorf("short = %q", fb.Short)
	}
	if !strings.Contains(fb.Detailed, "Misses GC") {
		t.Errorf("detailed = %q", fb.Detailed)
	}

	msg := mock.Calls[0].Messages[0].Content
	for _, want := range []string{"What is the JVM?", "A virtual machine that runs bytecode.", "It runs bytecode"} {
		if !strings.Contains(msg, want) {
			t.Errorf("evaluation message missing %q", want)
		}
	}
}

func TestEvaluate_BlankAnswerSkipsModel(t *testing.T) {
	mock := llm.NewMockProvider()
	ev := NewEvaluator(mock, DefaultEvalConfig())

	_, err := ev.Evaluate(context.Background(), evalInput("  \n\t"))
	if !errors.Is(err, ErrBlankAnswer) {
		t.Fatalf("err = %v, want ErrBlankAnswer", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("model called %d times, want 0", mock.CallCount())
	}
}

func TestEvaluate_FailureIsEvaluationError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	ev := NewEvaluator(mock, DefaultEvalConfig())

	_, err := ev.Evaluate(context.Background(), evalInput("answer"))
	var evErr *EvaluationError
	if !errors.As(err, &evErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Error("EvaluationError should unwrap to the provider error")
	}
}
