package memory

import (
	"context"
	"sort"
	"sync"

	"lingo-trainer/internal/app"
)

// SessionStore tracks the quiz sessions that are currently live, keyed by connection id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Controller
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Controller),
	}
}

func (s *SessionStore) Put(id string, session *app.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.sessions[id]; ok && prev != session {
		prev.Close()
	}
	s.sessions[id] = session
}

func (s *SessionStore) Get(id string) (*app.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Delete closes and forgets the session. A completed session is unaffected by Close.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		session.Close()
	}
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CountLive reports the sessions of this process.
func (s *SessionStore) CountLive(context.Context) (int, error) {
	return s.Len(), nil
}

// Touch marks the session as active. Liveness is implicit in process.
func (s *SessionStore) Touch(string) {}

// IDs lists the registered connection ids in sorted order.
func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// CloseAll abandons every live session, e.g. on shutdown.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*app.Controller)
	s.mu.Unlock()
	for _, session := range sessions {
		session.Close()
	}
}
