package llm

import "net/http"

// Normalized Response.StopReason values.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// modelAliases maps friendly names to model IDs per provider. Names that
// are not listed are passed through unchanged, so full model IDs work too.
var modelAliases = map[string]map[string]string{
	ProviderGemini: {
		"gemini-flash":      "gemini-2.5-flash",
		"gemini-flash-lite": "gemini-2.5-flash-lite",
		"gemini-pro":        "gemini-2.5-pro",
	},
	ProviderAnthropic: {
		"claude-sonnet": "claude-sonnet-4-5-20250929",
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-opus":   "claude-opus-4-5-20251101",
	},
	ProviderOpenAI: {
		"gpt-mini": "gpt-4o-mini",
		"gpt":      "gpt-4o",
	},
}

// resolveModel maps a friendly model name to the provider's model ID.
func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}

// classifyStatus wraps an SDK error by its HTTP status: 429 is retried
// after a backoff, everything else is reported as the provider being
// unavailable.
func classifyStatus(status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
