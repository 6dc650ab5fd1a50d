package questiongen

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// dedupKey normalizes a prompt for duplicate detection: NFC, case folded,
// whitespace collapsed, trailing punctuation dropped.
func dedupKey(s string) string {
	s = cases.Fold().String(norm.NFC.String(s))
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRightFunc(s, unicode.IsPunct)
}

// buildDedup formats prior prompts for the request, keeping the most recent
// max. Returns "None" if there are none.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

// seenSet tracks normalized prompts.
type seenSet map[string]struct{}

func newSeenSet(prompts []string) seenSet {
	s := make(seenSet, len(prompts))
	for _, p := range prompts {
		s[dedupKey(p)] = struct{}{}
	}
	return s
}

// add records p and reports whether it was new.
func (s seenSet) add(p string) bool {
	k := dedupKey(p)
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}
