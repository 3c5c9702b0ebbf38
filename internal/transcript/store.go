package transcript

import "sync"

// Role identifies the author of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one utterance in the conversation. Seq is the turn's position in
// the transcript and never changes.
type Turn struct {
	Role Role
	Text string
	Seq  int
}

// Store holds the ordered conversation transcript. Turns are append-only;
// a model turn may grow in place while its reply is still streaming, via the
// OpenTurn handle. Only the companion session mutates the store.
type Store struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewStore() *Store { return &Store{} }

// Append adds a finished turn and returns its index.
func (s *Store) Append(role Role, text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.turns)
	s.turns = append(s.turns, Turn{Role: role, Text: text, Seq: idx})
	return idx
}

// Turns returns a snapshot copy of the transcript.
func (s *Store) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Turn returns the turn at index i.
func (s *Store) Turn(i int) (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.turns) {
		return Turn{}, false
	}
	return s.turns[i], true
}

// Len returns the number of turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// OpenModel appends a model turn seeded with the first streamed fragment and
// returns a handle for appending the rest. The handle pins the turn being
// updated, so stream application never looks entries up by index.
func (s *Store) OpenModel(seed string) *OpenTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := len(s.turns)
	s.turns = append(s.turns, Turn{Role: RoleModel, Text: seed, Seq: idx})
	return &OpenTurn{store: s, index: idx}
}

// OpenTurn is the handle to the model turn currently receiving fragments.
type OpenTurn struct {
	store  *Store
	index  int
	closed bool
}

// Index returns the turn's position in the transcript.
func (t *OpenTurn) Index() int { return t.index }

// Append grows the turn's text by one fragment. Appending after Close is a
// no-op.
func (t *OpenTurn) Append(fragment string) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.closed || fragment == "" {
		return
	}
	t.store.turns[t.index].Text += fragment
}

// Text returns the turn's accumulated text so far.
func (t *OpenTurn) Text() string {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.turns[t.index].Text
}

// Close seals the turn; it is immutable afterwards.
func (t *OpenTurn) Close() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.closed = true
}
