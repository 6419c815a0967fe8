package puzzle

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"slices"

	"github.com/samber/lo"
)

// MaxShuffleAttempts bounds the search for an acceptable arrangement. When
// it runs out the last permutation is kept anyway.
const MaxShuffleAttempts = 100

// Source supplies random integers in [0, n). *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	IntN(n int) int
}

// cryptoSource draws from crypto/rand and falls back to math/rand/v2 if the
// system reader fails.
type cryptoSource struct{}

func (cryptoSource) IntN(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return mrand.IntN(n)
	}
	return int(v.Int64())
}

// ShuffleResult describes one shuffle.
type ShuffleResult struct {
	Before   string
	After    string
	Attempts int
	// Accepted is false when every attempt was rejected and the last
	// permutation was kept regardless.
	Accepted bool
}

// shuffle permutes the revealed tiles among their positions. A permutation
// is rejected when it spells the current arrangement or any answer of the
// same length.
func (p *Pool) shuffle(src Source, answers *AnswerIndex) ShuffleResult {
	positions := p.revealedPositions()
	before := p.Arrangement()
	res := ShuffleResult{Before: before, After: before}
	if len(positions) < 2 {
		return res
	}

	bucket := answers.ForLength(len([]rune(before)))
	current := lo.Map(positions, func(pos int, _ int) int { return p.slots[pos] })

	var candidate []int
	for attempt := 1; attempt <= MaxShuffleAttempts; attempt++ {
		candidate = slices.Clone(current)
		fisherYates(candidate, src)
		res.Attempts = attempt
		res.After = p.spellTiles(candidate)
		if res.After != before && !slices.Contains(bucket, res.After) {
			res.Accepted = true
			break
		}
	}

	for i, pos := range positions {
		p.slots[pos] = candidate[i]
	}
	return res
}

func fisherYates(s []int, src Source) {
	for i := len(s) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func (p *Pool) spellTiles(tiles []int) string {
	return lo.Reduce(tiles, func(acc string, ti int, _ int) string {
		return acc + p.tiles[ti].Char
	}, "")
}
