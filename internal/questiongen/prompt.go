package questiongen

import (
	"fmt"
	"strings"
)

const batchSystemPrompt = `You are an experienced technical interviewer preparing practice questions.

Rules:
- Generate distinct interview questions for the given topic and seniority level.
- Every question must be meaningful and relevant to the topic and level.
- For each question give a short, correct reference answer. It should be enough to check understanding without being exhaustive.
- Do not repeat or rephrase any question from the "already asked" list.
- If the topic is too narrow for the requested count, return as many good questions as you can, at least one when possible.
- Respond only with the JSON object described by the schema.`

// buildBatchMessage constructs the user message for a batch request.
func buildBatchMessage(req BatchRequest, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Level: %s\n", req.Difficulty.Label())
	fmt.Fprintf(&b, "Number of questions: %d\n", req.Size)

	b.WriteString("\nAlready asked in this session:\n")
	b.WriteString(buildDedup(req.PriorPrompts, cfg.MaxPriorPrompts))

	return b.String()
}

const evalSystemPrompt = `You are an experienced interviewer and subject matter expert.
You receive a question, a reference answer for your eyes only, and the candidate's answer.
Assess the candidate's answer and produce two kinds of feedback.

short_feedback:
- One or two sentences, at most about 40 words, e.g. "Solid answer, all key points covered." or "Mostly right, but the role of XYZ is missing."
- Plain text without markdown.

detailed_feedback:
- What the candidate got right and complete.
- What was missing compared to the reference answer.
- Any incorrect statements, pointed out tactfully with the reason they are wrong.
- Concrete advice on how to improve or what to study next.
- Use markdown for lists and emphasis, and fenced code blocks with a language tag for code.

Never quote the reference answer verbatim. Be constructive and supportive.`

// buildEvalMessage constructs the user message for an evaluation.
func buildEvalMessage(in EvaluateInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", in.Topic)
	fmt.Fprintf(&b, "Question:\n%s\n\n", in.Question)
	fmt.Fprintf(&b, "Reference answer (do not reveal):\n%s\n\n", in.ReferenceAnswer)
	fmt.Fprintf(&b, "Candidate answer:\n%s\n", in.UserAnswer)
	return b.String()
}
