package store

import "sync"

// MemorySessionStore keeps sessions in a map; tokens survive only for the
// lifetime of the process.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]string // token -> userID
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]string)}
}

func (s *MemorySessionStore) NewSession(userID string) (string, error) {
	token := NewID()
	s.mu.Lock()
	s.sessions[token] = userID
	s.mu.Unlock()
	return token, nil
}

func (s *MemorySessionStore) GetUserIDByToken(token string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[token]
	return userID, ok, nil
}

func (s *MemorySessionStore) DeleteSession(token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
