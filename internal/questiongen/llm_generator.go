package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/intervu/internal/llm"
)

// LLMBatchGenerator implements BatchFetcher using the LLM provider.
type LLMBatchGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMBatchGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMBatchGenerator {
	return &LLMBatchGenerator{provider: provider, config: cfg}
}

// batchOutput is the raw LLM response before validation.
type batchOutput struct {
	Questions []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"questions"`
}

// FetchBatch asks the model for req.Size questions. Items that fail
// validation or repeat an earlier prompt are dropped. If the model returned
// items but none survived, the first validation failure is returned so the
// caller does not mistake a bad response for an exhausted topic.
func (g *LLMBatchGenerator) FetchBatch(ctx context.Context, req BatchRequest) ([]Item, error) {
	if req.Size <= 0 {
		req.Size = DefaultBatchSize
	}
	ctx = llm.WithPurpose(ctx, "question-batch")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: batchSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildBatchMessage(req, g.config)},
		},
		Schema:      BatchSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
		TopP:        g.config.TopP,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	seen := newSeenSet(req.PriorPrompts)
	var (
		items    []Item
		firstErr error
	)
	for _, q := range raw.Questions {
		item := Item{
			Prompt:          strings.TrimSpace(q.Question),
			ReferenceAnswer: strings.TrimSpace(q.Answer),
		}
		if verr := g.validate(&item, req); verr != nil {
			if firstErr == nil {
				firstErr = verr
			}
			continue
		}
		if !seen.add(item.Prompt) {
			continue
		}
		items = append(items, item)
		if len(items) == req.Size {
			break
		}
	}

	if len(items) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return items, nil
}

func (g *LLMBatchGenerator) validate(item *Item, req BatchRequest) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(item, req); verr != nil {
			return verr
		}
	}
	return nil
}
