package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/parley/internal/dialogue"
	"github.com/samcharles93/parley/internal/transcript"
)

// Session is one server-side chat: a fixed persona, a bounded history
// window for the model, and the full transcript for the client.
type Session struct {
	ID        string
	Lang      string // tag token, e.g. "<en>"
	LangID    int
	Persona   [][]int
	History   *dialogue.History
	Dialog    []transcript.Turn
	CreatedAt time.Time
}

// SessionStore keeps sessions in memory keyed by id.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers a new session and returns it.
func (s *SessionStore) Create(lang string, langID int, persona [][]int, maxTurns int) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Lang:      lang,
		LangID:    langID,
		Persona:   persona,
		History:   dialogue.NewHistory(maxTurns),
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get looks up a session by id.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete removes a session, reporting whether it existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}
