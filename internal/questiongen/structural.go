package questiongen

import (
	"strings"
	"unicode/utf8"
)

const (
	maxPromptRunes = 1000
	maxAnswerRunes = 4000
)

// StructuralValidator checks that both fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(item *Item, _ BatchRequest) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}
	switch {
	case strings.TrimSpace(item.Prompt) == "":
		return fail("question is empty")
	case utf8.RuneCountInString(item.Prompt) > maxPromptRunes:
		return fail("question exceeds 1000 characters")
	case strings.TrimSpace(item.ReferenceAnswer) == "":
		return fail("answer is empty")
	case utf8.RuneCountInString(item.ReferenceAnswer) > maxAnswerRunes:
		return fail("answer exceeds 4000 characters")
	}
	return nil
}

// DistinctAnswerValidator rejects items whose reference answer merely
// repeats the question.
type DistinctAnswerValidator struct{}

func (v *DistinctAnswerValidator) Name() string { return "distinct-answer" }

func (v *DistinctAnswerValidator) Validate(item *Item, _ BatchRequest) *ValidationError {
	if dedupKey(item.Prompt) == dedupKey(item.ReferenceAnswer) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "answer repeats the question",
			Retryable: true,
		}
	}
	return nil
}
