// Package dedup detects near-duplicate questions using Jaccard similarity over normalized token sets.
package dedup

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "at": {}, "in": {}, "on": {}, "to": {}, "of": {}, "and": {}, "is": {},
	"was": {}, "were": {}, "i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "they": {}, "we": {}, "my": {},
	"your": {}, "his": {}, "her": {}, "their": {}, "that": {}, "this": {}, "do": {}, "did": {}, "have": {}, "has": {},
}

// Set is a set of normalized tokens.
type Set map[string]struct{}

// Normalize lower-cases text, replaces punctuation with spaces and drops stop words and tokens of two characters
// or fewer.
func Normalize(text string) Set {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	set := make(Set)
	for _, token := range strings.Fields(cleaned) {
		if len([]rune(token)) <= 2 {
			continue
		}
		if _, ok := stopWords[token]; ok {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// Similarity is the Jaccard index of a and b. Two empty sets are identical; an empty set shares nothing with a
// non-empty one.
func Similarity(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for token := range small {
		if _, ok := large[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// IsDuplicate reports whether candidate is at least threshold similar to any set in history.
func IsDuplicate(candidate Set, history []Set, threshold float64) bool {
	for _, prior := range history {
		if Similarity(candidate, prior) >= threshold {
			return true
		}
	}
	return false
}

// Memory remembers the questions asked to each entity.
//
// The zero value is ready to use.
type Memory struct {
	asked map[string][]Set
}

// Remember records a question asked to entityID.
func (m *Memory) Remember(entityID, question string) {
	if m.asked == nil {
		m.asked = make(map[string][]Set)
	}
	m.asked[entityID] = append(m.asked[entityID], Normalize(question))
}

// Seed records questions that were asked before the memory existed.
func (m *Memory) Seed(entityID string, questions []string) {
	for _, q := range questions {
		m.Remember(entityID, q)
	}
}

// Seen reports whether question duplicates anything asked to entityID.
func (m *Memory) Seen(entityID, question string, threshold float64) bool {
	return IsDuplicate(Normalize(question), m.asked[entityID], threshold)
}

// Len returns the number of questions remembered for entityID.
func (m *Memory) Len(entityID string) int {
	return len(m.asked[entityID])
}

// Reset forgets everything.
func (m *Memory) Reset() {
	m.asked = nil
}
