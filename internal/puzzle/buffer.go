package puzzle

import (
	"slices"
	"strings"
)

// Buffer is the ordered list of selected letter indices that forms the
// candidate word. An index appears at most once.
type Buffer struct {
	entries []int
}

// Append adds letterIndex unless the buffer is full or already holds it.
func (b *Buffer) Append(letterIndex int) bool {
	if len(b.entries) >= MaxInputLength || b.Contains(letterIndex) {
		return false
	}
	b.entries = append(b.entries, letterIndex)
	return true
}

// DeleteLast drops the most recent entry. It reports false on an empty
// buffer.
func (b *Buffer) DeleteLast() bool {
	if len(b.entries) == 0 {
		return false
	}
	b.entries = b.entries[:len(b.entries)-1]
	return true
}

// Clear empties the buffer.
func (b *Buffer) Clear() { b.entries = b.entries[:0] }

// Len returns the number of entries.
func (b *Buffer) Len() int { return len(b.entries) }

// Contains reports whether letterIndex is selected.
func (b *Buffer) Contains(letterIndex int) bool {
	return slices.Contains(b.entries, letterIndex)
}

// IndexOf returns the 0-based order of letterIndex in the buffer, or -1.
func (b *Buffer) IndexOf(letterIndex int) int {
	return slices.Index(b.entries, letterIndex)
}

// Entries returns a copy of the selected letter indices.
func (b *Buffer) Entries() []int { return slices.Clone(b.entries) }

// Materialize spells the buffer through lookup, lower-cased.
func (b *Buffer) Materialize(lookup func(letterIndex int) string) string {
	var sb strings.Builder
	for _, i := range b.entries {
		sb.WriteString(lookup(i))
	}
	return strings.ToLower(sb.String())
}
