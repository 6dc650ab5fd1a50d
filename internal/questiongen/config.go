package questiongen

// Config controls the behavior of the LLMBatchGenerator.
type Config struct {
	// Validators run in order on every generated item. The first failure
	// drops the item.
	Validators []Validator

	// MaxTokens is the token budget for one batch response.
	MaxTokens int

	// Temperature and TopP favor variety between batches.
	Temperature float64
	TopP        float64

	// MaxPriorPrompts caps how many earlier prompts are listed in the
	// request for deduplication.
	MaxPriorPrompts int
}

// DefaultConfig returns a Config with the standard validator chain and
// recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DistinctAnswerValidator{},
		},
		MaxTokens:       4096,
		Temperature:     0.75,
		TopP:            0.95,
		MaxPriorPrompts: 30,
	}
}

// EvalConfig controls the LLMEvaluator.
type EvalConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultEvalConfig returns the evaluator defaults.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxTokens:   2048,
		Temperature: 0.6,
	}
}
