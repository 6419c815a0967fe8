// Package puzzle implements the letter-wheel progression engine: cumulative
// letter sets per level, the answer index, the eight-tile pool, the input
// buffer, level progression with hints, and the constrained shuffle.
//
// A Session is plain single-threaded state. Callers that share one between
// goroutines must serialize every call themselves.
package puzzle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Board and level dimensions.
const (
	TileCount       = 8 // fixed tiles on the wheel
	MaxInputLength  = 8 // longest candidate word
	MinAnswerLength = 3 // answer length at level 0
	DefaultHints    = 3
	MaxLevelCap     = TileCount - MinAnswerLength
)

// DefaultConfig is the puzzle shipped with the server.
const DefaultConfig = "aeg|aegr|aegrs|adegrs|abdegrs|abdegirs,age|gear|rage|gears|rages|sarge|grades|badgers|abridges|brigades"

var (
	ErrMalformedConfig = errors.New("malformed puzzle config")
	ErrNoLetterSets    = errors.New("puzzle config has no letter sets")
	ErrNoAnswers       = errors.New("puzzle config has no answers")
)

// Definition is the read-only puzzle data shared by every session.
type Definition struct {
	raw        []string
	letterSets []string // cumulative, one per level
	answers    *AnswerIndex
}

// ParseDefinition parses "<letterSets>,<answers>" where both halves are
// '|'-joined lists.
func ParseDefinition(config string) (*Definition, error) {
	config = strings.TrimSpace(config)
	parts := strings.Split(config, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: want 2 comma-separated fields, got %d", ErrMalformedConfig, len(parts))
	}

	raw := splitList(parts[0], true)
	if len(raw) == 0 {
		return nil, ErrNoLetterSets
	}
	words := splitList(parts[1], true)
	if len(words) == 0 {
		return nil, ErrNoAnswers
	}

	return NewDefinition(raw, words), nil
}

// NewDefinition builds a Definition from raw per-level letter strings and
// the answer list. Letters and answers are lowercased.
func NewDefinition(rawSets, answers []string) *Definition {
	rawSets = lo.Map(rawSets, func(s string, _ int) string { return strings.ToLower(s) })
	answers = lo.Map(answers, func(s string, _ int) string { return strings.ToLower(s) })
	return &Definition{
		raw:        rawSets,
		letterSets: NormalizeWordsets(rawSets),
		answers:    NewAnswerIndex(answers),
	}
}

func splitList(s string, lower bool) []string {
	return lo.FilterMap(strings.Split(s, "|"), func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		if lower {
			item = strings.ToLower(item)
		}
		return item, item != ""
	})
}

// NormalizeWordsets makes each level's letters cumulative: level n holds
// every letter introduced at levels 0..n, in first-seen order, once.
func NormalizeWordsets(raw []string) []string {
	result := make([]string, len(raw))
	var seen []rune
	for i, set := range raw {
		for _, r := range set {
			if !lo.Contains(seen, r) {
				seen = append(seen, r)
			}
		}
		result[i] = string(seen)
	}
	return result
}

// Levels returns the number of configured levels.
func (d *Definition) Levels() int { return len(d.letterSets) }

// MaxLevel is the last playable level. It is bounded by the tile count,
// since entering level L reveals tile L+2.
func (d *Definition) MaxLevel() int {
	return min(len(d.letterSets)-1, MaxLevelCap)
}

// Letters returns the cumulative letter set for level, clamped to the
// configured range.
func (d *Definition) Letters(level int) string {
	if len(d.letterSets) == 0 {
		return ""
	}
	level = max(0, min(level, len(d.letterSets)-1))
	return d.letterSets[level]
}

// Answers returns the answer index.
func (d *Definition) Answers() *AnswerIndex { return d.answers }

// String renders the definition back into config form.
func (d *Definition) String() string {
	return strings.Join(d.raw, "|") + "," + strings.Join(d.answers.All(), "|")
}

// Problems reports configuration inconsistencies. None of them stop play:
// a tile whose letter is missing simply never reveals.
func (d *Definition) Problems() []string {
	var problems []string
	for level := 0; level <= d.MaxLevel(); level++ {
		want := level + MinAnswerLength
		if n := len([]rune(d.Letters(level))); n < want {
			problems = append(problems, fmt.Sprintf("level %d has %d letters, needs %d", level, n, want))
		}
		if len(d.answers.ForLevel(level)) == 0 {
			problems = append(problems, fmt.Sprintf("level %d has no %d-letter answers", level, want))
		}
	}
	for _, word := range d.answers.All() {
		level := len([]rune(word)) - MinAnswerLength
		if level < 0 || level > d.MaxLevel() {
			problems = append(problems, fmt.Sprintf("answer %q has no matching level", word))
			continue
		}
		if !spellable(word, d.boardLetters(level)) {
			problems = append(problems, fmt.Sprintf("answer %q cannot be spelled from %q", word, d.boardLetters(level)))
		}
	}
	return problems
}

// boardLetters is what the revealed tiles show at level: one tile per
// letter, tiles 0..level+2.
func (d *Definition) boardLetters(level int) string {
	letters := []rune(d.Letters(level))
	return string(letters[:min(len(letters), level+MinAnswerLength)])
}

// spellable reports whether word uses each tile at most once.
func spellable(word, tiles string) bool {
	left := []rune(tiles)
	for _, r := range word {
		i := lo.IndexOf(left, r)
		if i < 0 {
			return false
		}
		left = append(left[:i], left[i+1:]...)
	}
	return true
}
