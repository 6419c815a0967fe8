package puzzle

// TileState is what a renderer needs for one board position.
type TileState struct {
	Position int
	Tile
	// Order is the 1-based place of this tile in the input, 0 when not
	// selected.
	Order int
}

// Selected reports whether the tile is part of the current input.
func (t TileState) Selected() bool { return t.Order > 0 }

// Snapshot is a read-only copy of everything the renderer shows. Taking
// one never changes the session.
type Snapshot struct {
	Tiles          [TileCount]TileState
	Input          string
	Level          int
	MaxLevel       int
	ExpectedLength int
	HintsRemaining int
	Won            bool
	Message        Message
}

// Snapshot copies the session state for rendering.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Input:          s.Input(),
		Level:          s.level,
		MaxLevel:       s.def.MaxLevel(),
		ExpectedLength: s.ExpectedLength(),
		HintsRemaining: s.hints,
		Won:            s.won,
		Message:        s.message,
	}
	for pos := range TileCount {
		t, _ := s.pool.TileAt(pos)
		snap.Tiles[pos] = TileState{
			Position: pos,
			Tile:     t,
			Order:    s.buffer.IndexOf(t.LetterIndex) + 1,
		}
	}
	return snap
}
