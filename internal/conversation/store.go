package conversation

import (
	"sync"
)

// Store keeps the in-memory state of every chat. Nothing survives a restart.
//
// Turns for the same chat are serialized: Acquire blocks until the previous
// turn for that chat has released it. Different chats never block each other.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

type session struct {
	mu    sync.Mutex
	state State
	// refs counts turns holding or waiting for mu. Guarded by Store.mu.
	refs int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*session)}
}

// Acquire locks the session of chatID for the duration of one turn.
// The caller must call Release on the returned Turn.
func (s *Store) Acquire(chatID int64) *Turn {
	s.mu.Lock()
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &session{state: Idle{}}
		s.sessions[chatID] = sess
	}
	sess.refs++
	s.mu.Unlock()

	sess.mu.Lock()
	return &Turn{store: s, chatID: chatID, sess: sess}
}

// Peek returns the current state of chatID without holding the session.
func (s *Store) Peek(chatID int64) State {
	turn := s.Acquire(chatID)
	defer turn.Release()
	return turn.State()
}

// size returns the number of sessions kept in memory.
func (s *Store) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Turn is exclusive access to one chat's state while an update is handled.
type Turn struct {
	store    *Store
	chatID   int64
	sess     *session
	released bool
}

// State returns the current state.
func (t *Turn) State() State {
	return t.sess.state
}

// Set replaces the current state. A nil state resets the session to Idle.
func (t *Turn) Set(state State) {
	if state == nil {
		state = Idle{}
	}
	t.sess.state = state
}

// Release unlocks the session. An idle session nobody else is waiting for
// is dropped, so memory only holds chats with an active flow.
// Calling Release more than once is a no-op.
func (t *Turn) Release() {
	if t.released {
		return
	}
	t.released = true

	t.store.mu.Lock()
	t.sess.refs--
	if _, idle := t.sess.state.(Idle); idle && t.sess.refs == 0 {
		delete(t.store.sessions, t.chatID)
	}
	t.store.mu.Unlock()

	t.sess.mu.Unlock()
}
