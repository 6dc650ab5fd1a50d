package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
// Once the queue is drained it defers to Fallback, or fails with
// ErrProviderUnavailable when no fallback is set.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request

	// Fallback, when set, answers requests after the queue is drained.
	Fallback func(Request) MockResponse
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.Fallback != nil:
		resp = m.Fallback(req)
	default:
		return nil, &ErrProviderUnavailable{}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// AddJSON marshals v and queues it as a successful response.
func (m *MockProvider) AddJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.AddResponse(MockResponse{Content: b})
	return nil
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// NewDemoProvider returns a MockProvider whose fallback synthesizes a
// response from the request schema. It backs INTERVU_LLM_PROVIDER=mock so
// the whole UI can be exercised without an API key.
func NewDemoProvider() *MockProvider {
	m := NewMockProvider()
	var n int
	m.Fallback = func(req Request) MockResponse {
		if req.Schema == nil {
			return MockResponse{Content: json.RawMessage(`"ok"`)}
		}
		v := synthesize(req.Schema.Definition, req.Schema.Name, &n)
		b, err := json.Marshal(v)
		if err != nil {
			return MockResponse{Err: err}
		}
		return MockResponse{Content: b, Usage: Usage{InputTokens: 1, OutputTokens: len(b) / 4}}
	}
	return m
}

// synthesize builds a value that satisfies def. Strings are numbered via n
// so repeated calls never produce identical text.
func synthesize(def map[string]any, name string, n *int) any {
	if enum, ok := def["enum"].([]any); ok && len(enum) > 0 {
		return enum[0]
	}
	switch def["type"] {
	case "object":
		props, _ := def["properties"].(map[string]any)
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(props))
		for _, k := range keys {
			if p, ok := props[k].(map[string]any); ok {
				out[k] = synthesize(p, k, n)
			}
		}
		return out
	case "array":
		items, _ := def["items"].(map[string]any)
		count := 3
		if v, ok := asInt(def["maxItems"]); ok {
			count = v
		} else if v, ok := asInt(def["minItems"]); ok && v > count {
			count = v
		}
		out := make([]any, count)
		for i := range out {
			out[i] = synthesize(items, name, n)
		}
		return out
	case "integer", "number":
		if v, ok := asInt(def["minimum"]); ok {
			return v
		}
		return 0
	case "boolean":
		return false
	default:
		*n++
		return fmt.Sprintf("Sample %s %d", name, *n)
	}
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	}
	return 0, false
}
