package questiongen

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/abhisek/intervu/internal/llm"
)

// LLMEvaluator implements Evaluator using the LLM provider.
type LLMEvaluator struct {
	provider llm.Provider
	config   EvalConfig
}

// NewEvaluator creates an LLMEvaluator.
func NewEvaluator(provider llm.Provider, cfg EvalConfig) *LLMEvaluator {
	return &LLMEvaluator{provider: provider, config: cfg}
}

type feedbackOutput struct {
	ShortFeedback    string `json:"short_feedback"`
	DetailedFeedback string `json:"detailed_feedback"`
}

// Evaluate grades one answer. Blank answers are rejected with
// ErrBlankAnswer before any request is made; every other failure is an
// *EvaluationError.
func (e *LLMEvaluator) Evaluate(ctx context.Context, in EvaluateInput) (*Feedback, error) {
	if strings.TrimSpace(in.UserAnswer) == "" {
		return nil, ErrBlankAnswer
	}
	ctx = llm.WithPurpose(ctx, "answer-eval")

	resp, err := e.provider.Generate(ctx, llm.Request{
		System: evalSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildEvalMessage(in)},
		},
		Schema:      FeedbackSchema,
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	})
	if err != nil {
		return nil, &EvaluationError{Err: err}
	}

	var raw feedbackOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &EvaluationError{Err: err}
	}
	return &Feedback{
		Short:    strings.TrimSpace(raw.ShortFeedback),
		Detailed: strings.TrimSpace(raw.DetailedFeedback),
	}, nil
}
