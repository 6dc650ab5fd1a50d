package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model, or nil if unknown. Aliases
// such as "gemini-flash" resolve first. Vendor prefixes
// ("google/gemini-2.5-flash", "models/gemini-2.5-pro") are ignored.
func LookupCost(modelID string) *ModelCost {
	for _, aliases := range modelAliases {
		if id, ok := aliases[modelID]; ok {
			modelID = id
			break
		}
	}
	if i := strings.LastIndex(modelID, "/"); i >= 0 && i < len(modelID)-1 {
		modelID = modelID[i+1:]
	}
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// EstimateCost sums the cost of usage rows, skipping models without a
// price. unknown lists the skipped models.
func EstimateCost(rows []ModelUsage) (total float64, unknown []string) {
	for _, r := range rows {
		c := LookupCost(r.Model)
		if c == nil {
			unknown = append(unknown, r.Model)
			continue
		}
		total += c.Cost(r.InputTokens, r.OutputTokens)
	}
	return total, unknown
}

// ModelUsage is the token count for one model.
type ModelUsage struct {
	Model        string
	InputTokens  int
	OutputTokens int
}

// modelCosts covers the models the aliases point at plus their common
// neighbours. Prices from models.dev, 2026-02.
var modelCosts = map[string]ModelCost{
	// Gemini
	"gemini-2.0-flash":       {0.1, 0.4},
	"gemini-2.0-flash-lite":  {0.075, 0.3},
	"gemini-2.5-flash":       {0.3, 2.5},
	"gemini-2.5-flash-lite":  {0.1, 0.4},
	"gemini-2.5-pro":         {1.25, 10},
	"gemini-3-flash-preview": {0.5, 3},
	"gemini-3-pro-preview":   {2, 12},
	"gemini-flash-latest":    {0.3, 2.5},

	// Anthropic
	"claude-3-5-haiku-20241022":  {0.8, 4},
	"claude-3-haiku-20240307":    {0.25, 1.25},
	"claude-haiku-4-5":           {1, 5},
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-5":          {3, 15},
	"claude-sonnet-4-5-20250929": {3, 15},
	"claude-opus-4-5":            {5, 25},
	"claude-opus-4-5-20251101":   {5, 25},

	// OpenAI
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},
}
