package history

import "time"

// Role identifies who produced a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation. Turns are never modified after creation.
type Turn struct {
	Role      Role
	Text      string
	Timestamp time.Time
}

// NewTurn creates a turn stamped with the current time
func NewTurn(role Role, text string) Turn {
	return Turn{Role: role, Text: text, Timestamp: time.Now()}
}

// Store is an ordered, size-bounded sequence of turns with FIFO eviction.
// It is not safe for concurrent use; a single session owns it.
type Store struct {
	turns []Turn
	limit int
}

// New creates an empty store retaining at most limit turns.
// A limit below 1 is treated as 1.
func New(limit int) *Store {
	if limit < 1 {
		limit = 1
	}
	return &Store{
		turns: make([]Turn, 0, min(limit, 64)),
		limit: limit,
	}
}

// Append inserts turn at the end and evicts from the front until Len() <= Limit().
func (s *Store) Append(turn Turn) {
	s.turns = append(s.turns, turn)
	if over := len(s.turns) - s.limit; over > 0 {
		// copy down so the backing array does not grow without bound
		n := copy(s.turns, s.turns[over:])
		clear(s.turns[n:])
		s.turns = s.turns[:n]
	}
}

// Clear empties the store
func (s *Store) Clear() {
	clear(s.turns)
	s.turns = s.turns[:0]
}

// Turns returns a copy of the retained turns, oldest first
func (s *Store) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Last returns up to n of the most recent turns, oldest first
func (s *Store) Last(n int) []Turn {
	if n <= 0 {
		return nil
	}
	start := max(len(s.turns)-n, 0)
	out := make([]Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// Len returns the number of retained turns
func (s *Store) Len() int {
	return len(s.turns)
}

// Limit returns the maximum number of retained turns
func (s *Store) Limit() int {
	return s.limit
}
