package questiongen

import (
	"context"
	"errors"
	"fmt"
)

// BatchFetcher produces batches of interview questions. An empty, nil-error
// result means the source has nothing more to offer.
type BatchFetcher interface {
	FetchBatch(ctx context.Context, req BatchRequest) ([]Item, error)
}

// Evaluator grades a candidate answer against the reference answer.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluateInput) (*Feedback, error)
}

// ErrBlankAnswer is returned without contacting the model when the answer
// is empty or whitespace.
var ErrBlankAnswer = errors.New("answer is blank")

// EvaluationError wraps a failed evaluation of a single answer.
type EvaluationError struct {
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// FetcherFunc adapts a function to BatchFetcher.
type FetcherFunc func(ctx context.Context, req BatchRequest) ([]Item, error)

func (f FetcherFunc) FetchBatch(ctx context.Context, req BatchRequest) ([]Item, error) {
	return f(ctx, req)
}
