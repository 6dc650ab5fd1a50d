package questiongen

import (
	"context"
	"embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed banks/*.yaml
var bankFS embed.FS

// Bank serves questions from a fixed, offline list. Each topic entry lists
// match keywords; a requested topic matches when one of its words equals a
// keyword, so "Java" and "Java concurrency" hit the Java bank while
// "JavaScript" does not.
type Bank struct {
	topics []bankTopic
}

type bankFile struct {
	Topics []bankTopic `yaml:"topics"`
}

type bankTopic struct {
	Name      string                `yaml:"name"`
	Match     []string              `yaml:"match"`
	Questions map[string][]bankItem `yaml:"questions"`
}

type bankItem struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// DefaultBank returns the bank compiled into the binary.
func DefaultBank() (*Bank, error) {
	entries, err := bankFS.ReadDir("banks")
	if err != nil {
		return nil, fmt.Errorf("read embedded banks: %w", err)
	}
	bank := &Bank{}
	for _, e := range entries {
		data, err := bankFS.ReadFile("banks/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded bank %s: %w", e.Name(), err)
		}
		b, err := ParseBank(data)
		if err != nil {
			return nil, fmt.Errorf("embedded bank %s: %w", e.Name(), err)
		}
		bank.topics = append(bank.topics, b.topics...)
	}
	return bank, nil
}

// LoadBank reads a YAML bank from disk.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	b, err := ParseBank(data)
	if err != nil {
		return nil, fmt.Errorf("bank %s: %w", path, err)
	}
	return b, nil
}

// ParseBank decodes and checks a YAML bank.
func ParseBank(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(f.Topics) == 0 {
		return nil, fmt.Errorf("no topics defined")
	}
	for i := range f.Topics {
		t := &f.Topics[i]
		if t.Name == "" {
			return nil, fmt.Errorf("topic %d has no name", i+1)
		}
		if len(t.Match) == 0 {
			t.Match = []string{t.Name}
		}
		normalized := make(map[string][]bankItem, len(t.Questions))
		for level, items := range t.Questions {
			d, err := ParseDifficulty(level)
			if err != nil {
				return nil, fmt.Errorf("topic %q: %w", t.Name, err)
			}
			for j, it := range items {
				if strings.TrimSpace(it.Question) == "" || strings.TrimSpace(it.Answer) == "" {
					return nil, fmt.Errorf("topic %q, %s question %d: question and answer are required", t.Name, level, j+1)
				}
			}
			normalized[strings.ToLower(string(d))] = items
		}
		t.Questions = normalized
	}
	return &Bank{topics: f.Topics}, nil
}

// Extend returns a bank that consults other before b.
func (b *Bank) Extend(other *Bank) *Bank {
	topics := append([]bankTopic{}, other.topics...)
	return &Bank{topics: append(topics, b.topics...)}
}

// Topics lists the names of the bank's topics.
func (b *Bank) Topics() []string {
	names := make([]string, len(b.topics))
	for i, t := range b.topics {
		names[i] = t.Name
	}
	return names
}

// Matches reports whether the bank can serve topic.
func (b *Bank) Matches(topic string) bool {
	return b.find(topic) != nil
}

func (b *Bank) find(topic string) *bankTopic {
	words := strings.FieldsFunc(strings.ToLower(topic), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	for i := range b.topics {
		t := &b.topics[i]
		for _, m := range t.Match {
			for _, w := range words {
				if w == strings.ToLower(m) {
					return t
				}
			}
		}
	}
	return nil
}

// FetchBatch returns up to req.Size questions at req.Difficulty that are not
// among req.PriorPrompts, in bank order. Once every question was served it
// returns an empty batch.
func (b *Bank) FetchBatch(ctx context.Context, req BatchRequest) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := b.find(req.Topic)
	if t == nil {
		return nil, fmt.Errorf("no bank for topic %q", req.Topic)
	}
	size := req.Size
	if size <= 0 {
		size = DefaultBatchSize
	}

	seen := newSeenSet(req.PriorPrompts)
	var items []Item
	for _, q := range t.Questions[strings.ToLower(string(req.Difficulty))] {
		if !seen.add(q.Question) {
			continue
		}
		items = append(items, Item{
			Prompt:          strings.TrimSpace(q.Question),
			ReferenceAnswer: strings.TrimSpace(q.Answer),
		})
		if len(items) == size {
			break
		}
	}
	return items, nil
}
