package questiongen

import (
	"fmt"
	"strings"
)

// Difficulty is the seniority level questions are pitched at.
type Difficulty string

const (
	Junior Difficulty = "Junior"
	Middle Difficulty = "Middle"
	Senior Difficulty = "Senior"
)

// DefaultDifficulty is preselected on the setup screen.
const DefaultDifficulty = Middle

// Difficulties lists the levels in ascending order.
var Difficulties = []Difficulty{Junior, Middle, Senior}

// ParseDifficulty accepts any casing of a known level.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q (want junior, middle or senior)", s)
}

// Label returns the level with a short description for menus.
func (d Difficulty) Label() string {
	switch d {
	case Junior:
		return "Junior (entry level)"
	case Middle:
		return "Middle (intermediate)"
	case Senior:
		return "Senior (advanced)"
	}
	return string(d)
}

// DefaultBatchSize is the number of questions requested per fetch.
const DefaultBatchSize = 7

// Topics offered on the setup screen. Anything else is entered as a custom
// topic.
var Topics = []string{
	"Java",
	"Python",
	"JavaScript",
	"Algorithms and data structures",
	"SQL databases",
	"Software testing theory",
	"Frontend development",
	"Backend development",
}

// BatchRequest asks for Size new questions.
type BatchRequest struct {
	Topic      string
	Difficulty Difficulty
	Size       int

	// PriorPrompts are the prompts already in the session queue, oldest
	// first. Fetchers avoid repeating them.
	PriorPrompts []string
}

// Item is one generated question with its reference answer.
type Item struct {
	Prompt          string
	ReferenceAnswer string
}

// EvaluateInput is everything an evaluator sees for one answer.
type EvaluateInput struct {
	Topic           string
	Question        string
	ReferenceAnswer string
	UserAnswer      string
}

// Feedback is the two-level evaluation result.
type Feedback struct {
	Short    string
	Detailed string
}
