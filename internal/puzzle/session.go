package puzzle

import "slices"

// WinText is shown after the final answer.
const WinText = "You win!"

var levelUpTexts = []string{"Nice!", "Great!", "Amazing!", "Super!", "Incredible!"}

// MessageKind tells the renderer what kind of advance just happened.
type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageLevelUp
	MessageWin
)

func (k MessageKind) String() string {
	switch k {
	case MessageLevelUp:
		return "level-up"
	case MessageWin:
		return "win"
	default:
		return "none"
	}
}

// Message is the one-shot advance notice. It stays set until Dismiss.
type Message struct {
	Kind  MessageKind
	Text  string
	Level int
}

// Session is one player's puzzle: tile pool, input buffer and progression.
// It is not safe for concurrent use.
type Session struct {
	def     *Definition
	src     Source
	pool    Pool
	buffer  Buffer
	level   int
	hints   int
	won     bool
	message Message
}

// Option configures a Session.
type Option func(*Session)

// WithSource sets the randomness used by Shuffle.
func WithSource(src Source) Option {
	return func(s *Session) { s.src = src }
}

// WithHints sets the starting hint budget.
func WithHints(n int) Option {
	return func(s *Session) { s.hints = max(0, n) }
}

// NewSession starts a puzzle at level 0 with the first three tiles shown.
func NewSession(def *Definition, opts ...Option) *Session {
	s := &Session{
		def:   def,
		src:   cryptoSource{},
		pool:  newPool(),
		hints: DefaultHints,
	}
	for _, opt := range opts {
		opt(s)
	}
	letters := def.Letters(0)
	for i := range MinAnswerLength {
		s.pool.reveal(i, letters)
	}
	return s
}

// ActivateTile selects the tile at position, adding it to the input. It
// reports whether the input changed.
func (s *Session) ActivateTile(position int) bool {
	t, ok := s.pool.TileAt(position)
	if !ok || !t.Revealed {
		return false
	}
	return s.buffer.Append(t.LetterIndex)
}

// Delete removes the last selected tile from the input.
func (s *Session) Delete() bool {
	return s.buffer.DeleteLast()
}

// Input spells the current selection with this level's letters.
func (s *Session) Input() string {
	letters := s.def.Letters(s.level)
	return s.buffer.Materialize(func(i int) string {
		c, _ := charAt(letters, i)
		return c
	})
}

// Enter submits the input and always clears it. Only an answer of exactly
// the current level's length counts. It reports whether the level advanced
// or the puzzle was won by this submission.
func (s *Session) Enter() bool {
	word := s.Input()
	s.buffer.Clear()

	if s.won {
		s.message = s.winMessage()
		return false
	}
	if !slices.Contains(s.def.answers.ForLevel(s.level), word) {
		return false
	}
	if s.level >= s.def.MaxLevel() {
		s.won = true
		s.message = s.winMessage()
		return true
	}
	return s.advance(false)
}

// Hint spends a hint to advance without an answer. Ignored once hints run
// out or on the last level. After a win it only re-shows the win message.
func (s *Session) Hint() bool {
	if s.won {
		s.message = s.winMessage()
		return false
	}
	if s.hints <= 0 || s.level >= s.def.MaxLevel() {
		return false
	}
	s.hints--
	return s.advance(true)
}

// advance moves to the next level and reveals its tile. Hinted advances
// mark the tile and raise no message.
func (s *Session) advance(hinted bool) bool {
	if s.level >= s.def.MaxLevel() {
		if s.won {
			s.message = s.winMessage()
		}
		return false
	}

	left := s.level
	s.level++
	letters := s.def.Letters(s.level)
	s.pool.refresh(letters)

	next := s.level + MinAnswerLength - 1
	if s.pool.reveal(next, letters) && hinted {
		s.pool.tiles[next].Hinted = true
	}
	if !hinted {
		s.message = Message{Kind: MessageLevelUp, Text: levelUpTexts[left%len(levelUpTexts)], Level: s.level}
	}
	return true
}

func (s *Session) winMessage() Message {
	return Message{Kind: MessageWin, Text: WinText, Level: s.level}
}

// Shuffle rearranges the revealed tiles.
func (s *Session) Shuffle() ShuffleResult {
	return s.pool.shuffle(s.src, s.def.answers)
}

// Message returns the pending advance notice, if any.
func (s *Session) Message() (Message, bool) {
	return s.message, s.message.Kind != MessageNone
}

// Dismiss clears the pending advance notice.
func (s *Session) Dismiss() bool {
	had := s.message.Kind != MessageNone
	s.message = Message{}
	return had
}

func (s *Session) Level() int          { return s.level }
func (s *Session) HintsRemaining() int { return s.hints }
func (s *Session) Won() bool           { return s.won }

// ExpectedLength is the answer length accepted at the current level.
func (s *Session) ExpectedLength() int { return s.level + MinAnswerLength }

// Definition returns the puzzle this session plays.
func (s *Session) Definition() *Definition { return s.def }

// Pool exposes the tiles for read-only inspection.
func (s *Session) Pool() *Pool { return &s.pool }
