package puzzle

import (
	"slices"

	"github.com/samber/lo"
)

// AnswerIndex groups answers by length. It is immutable once built.
type AnswerIndex struct {
	all      []string
	byLength map[int][]string
}

// NewAnswerIndex indexes words by rune length in a single pass. Duplicates
// are kept as given.
func NewAnswerIndex(words []string) *AnswerIndex {
	return &AnswerIndex{
		all: slices.Clone(words),
		byLength: lo.GroupBy(words, func(w string) int {
			return len([]rune(w))
		}),
	}
}

// ForLength returns the answers of exactly n letters.
func (a *AnswerIndex) ForLength(n int) []string {
	return a.byLength[n]
}

// ForLevel returns the answers accepted at level.
func (a *AnswerIndex) ForLevel(level int) []string {
	return a.ForLength(level + MinAnswerLength)
}

// Contains reports whether word is an answer. Only the bucket for the
// word's own length is consulted.
func (a *AnswerIndex) Contains(word string) bool {
	return slices.Contains(a.ForLength(len([]rune(word))), word)
}

// All returns every answer in configuration order.
func (a *AnswerIndex) All() []string { return a.all }

// Len is the total number of answers.
func (a *AnswerIndex) Len() int { return len(a.all) }
