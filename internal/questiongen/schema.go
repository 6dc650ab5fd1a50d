package questiongen

import "github.com/abhisek/intervu/internal/llm"

// MaxBatchSize bounds the number of items a single response may carry.
const MaxBatchSize = 20

// BatchSchema defines the JSON schema for question batch responses.
var BatchSchema = &llm.Schema{
	Name:        "question-batch",
	Description: "A batch of interview questions, each with a concise reference answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"maxItems": MaxBatchSize,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The interview question as asked to the candidate",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "A short, correct reference answer that is enough to check understanding",
						},
					},
					"required":             []any{"question", "answer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// FeedbackSchema defines the JSON schema for answer evaluations.
var FeedbackSchema = &llm.Schema{
	Name:        "answer-feedback",
	Description: "Short and detailed feedback on a candidate's answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"short_feedback": map[string]any{
				"type":        "string",
				"description": "One or two plain-text sentences summarizing the verdict",
			},
			"detailed_feedback": map[string]any{
				"type":        "string",
				"description": "Markdown breakdown: what was right, what was missing or wrong, and what to study",
			},
		},
		"required":             []any{"short_feedback", "detailed_feedback"},
		"additionalProperties": false,
	},
}
