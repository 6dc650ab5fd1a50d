package llm

import (
	"errors"
	"net/http"
	"reflect"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := map[string]string{
		"gemini-flash":   "gemini-2.5-flash",
		"gemini-pro":     "gemini-2.5-pro",
		"gemini-1.5-pro": "gemini-1.5-pro",
	}
	for alias, want := range tests {
		if got := resolveModel(ProviderGemini, alias); got != want {
			t.Errorf("resolveModel(gemini, %q) = %q, want %q", alias, got, want)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	s := buildGeminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "description": "one prompt"},
			},
			"level": map[string]any{"type": "string", "enum": []any{"junior", "senior"}},
		},
		"required": []any{"questions"},
		"maxItems": 20,
	})

	if s.Type != genai.TypeObject {
		t.Fatalf("Type = %v, want object", s.Type)
	}
	if !reflect.DeepEqual(s.Required, []string{"questions"}) {
		t.Errorf("Required = %v", s.Required)
	}
	q := s.Properties["questions"]
	if q == nil {
		t.Fatal("missing questions property")
	}
	if q.Type != genai.TypeArray {
		t.Errorf("questions.Type = %v, want array", q.Type)
	}
	if q.Items == nil || q.Items.Description != "one prompt" {
		t.Errorf("questions.Items = %+v", q.Items)
	}
	if got := s.Properties["level"].Enum; !reflect.DeepEqual(got, []string{"junior", "senior"}) {
		t.Errorf("level.Enum = %v", got)
	}
	if s.MaxItems == nil || *s.MaxItems != 20 {
		t.Errorf("MaxItems = %v, want 20", s.MaxItems)
	}
	if s.MinItems != nil {
		t.Errorf("MinItems = %v, want nil", *s.MinItems)
	}
}

func TestMapGeminiError(t *testing.T) {
	var rl *ErrRateLimit
	if !errors.As(mapGeminiError(genai.APIError{Code: http.StatusTooManyRequests}), &rl) {
		t.Error("429 should map to ErrRateLimit")
	}

	var unavail *ErrProviderUnavailable
	if !errors.As(mapGeminiError(genai.APIError{Code: http.StatusBadGateway}), &unavail) {
		t.Error("502 should map to ErrProviderUnavailable")
	}
	if !errors.As(mapGeminiError(errors.New("dial tcp: refused")), &unavail) {
		t.Error("transport errors should map to ErrProviderUnavailable")
	}
}

func TestMapGeminiStopReason(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
	}
	if got := mapGeminiStopReason(resp); got != StopMaxTokens {
		t.Errorf("stop reason = %q, want %q", got, StopMaxTokens)
	}
	if got := mapGeminiStopReason(&genai.GenerateContentResponse{}); got != StopEnd {
		t.Errorf("empty response stop reason = %q, want %q", got, StopEnd)
	}
}
