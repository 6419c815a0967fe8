package types

// Client event types accepted over HTTP and the WebSocket.
const (
	EventTile    = "tile"
	EventDelete  = "delete"
	EventEnter   = "enter"
	EventShuffle = "shuffle"
	EventHint    = "hint"
	EventDismiss = "dismiss"
	EventState   = "state"
)

// ClientEvent is one input from the player.
type ClientEvent struct {
	Type     string `json:"type"`
	Position int    `json:"position,omitempty"`
}

// TileView is one board position as drawn. X and Y are in the 0..100
// viewBox of the wheel.
type TileView struct {
	Position int     `json:"position"`
	Char     string  `json:"char"`
	Revealed bool    `json:"revealed"`
	Selected bool    `json:"selected"`
	Order    int     `json:"order"`
	Hinted   bool    `json:"hinted"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// MessageView is the pending level-up or win notice.
type MessageView struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// BoardView is everything the page needs to draw one frame.
type BoardView struct {
	Tiles          []TileView   `json:"tiles"`
	Input          string       `json:"input"`
	Level          int          `json:"level"`
	MaxLevel       int          `json:"maxLevel"`
	ExpectedLength int          `json:"expectedLength"`
	HintsRemaining int          `json:"hintsRemaining"`
	Won            bool         `json:"won"`
	Message        *MessageView `json:"message,omitempty"`
}
