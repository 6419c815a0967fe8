package puzzle

import (
	"strings"

	"github.com/samber/lo"
)

// Tile is one of the eight letter tiles. LetterIndex is fixed when the tile
// is created and never changes; Char is re-resolved against the current
// level's letters.
type Tile struct {
	LetterIndex int
	Revealed    bool
	Hinted      bool
	Char        string
}

// Pool holds the tiles and the board position each one occupies.
type Pool struct {
	tiles [TileCount]Tile
	slots [TileCount]int // board position -> tile
}

func newPool() Pool {
	var p Pool
	for i := range TileCount {
		p.tiles[i] = Tile{LetterIndex: i}
		p.slots[i] = i
	}
	return p
}

// reveal shows tile i using letters. A letterIndex past the end of letters
// leaves the tile hidden.
func (p *Pool) reveal(i int, letters string) bool {
	if i < 0 || i >= TileCount {
		return false
	}
	t := &p.tiles[i]
	char, ok := charAt(letters, t.LetterIndex)
	if !ok {
		return false
	}
	t.Revealed = true
	t.Char = char
	return true
}

// refresh re-resolves every revealed tile against letters.
func (p *Pool) refresh(letters string) {
	for i := range p.tiles {
		t := &p.tiles[i]
		if !t.Revealed {
			continue
		}
		if char, ok := charAt(letters, t.LetterIndex); ok {
			t.Char = char
		}
	}
}

func charAt(letters string, i int) (string, bool) {
	runes := []rune(letters)
	if i < 0 || i >= len(runes) {
		return "", false
	}
	return string(runes[i]), true
}

// TileAt returns the tile occupying position.
func (p *Pool) TileAt(position int) (Tile, bool) {
	if position < 0 || position >= TileCount {
		return Tile{}, false
	}
	return p.tiles[p.slots[position]], true
}

// CharacterAt returns the character shown at position, or "" when the
// tile there is hidden.
func (p *Pool) CharacterAt(position int) string {
	t, ok := p.TileAt(position)
	if !ok || !t.Revealed {
		return ""
	}
	return t.Char
}

// Tile returns a tile by creation index.
func (p *Pool) Tile(i int) Tile { return p.tiles[i] }

// RevealedCount is the number of revealed tiles.
func (p *Pool) RevealedCount() int {
	return lo.CountBy(p.tiles[:], func(t Tile) bool { return t.Revealed })
}

// revealedPositions lists, in board order, the positions holding a
// revealed tile.
func (p *Pool) revealedPositions() []int {
	return lo.Filter(lo.Range(TileCount), func(pos int, _ int) bool {
		return p.tiles[p.slots[pos]].Revealed
	})
}

// Arrangement spells the revealed positions in board order.
func (p *Pool) Arrangement() string {
	var sb strings.Builder
	for _, pos := range p.revealedPositions() {
		sb.WriteString(p.tiles[p.slots[pos]].Char)
	}
	return sb.String()
}
