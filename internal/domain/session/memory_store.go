// internal/domain/session/memory_store.go
package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used in tests and single-node
// development runs. It does not expire sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]string),
	}
}

// Get returns the value of a field and whether it is present
func (s *MemoryStore) Get(_ context.Context, sessionID, field string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.sessions[sessionID]
	if !ok {
		return "", false, nil
	}
	value, ok := fields[field]
	return value, ok, nil
}

// Set stores a field value, creating the session if needed
func (s *MemoryStore) Set(_ context.Context, sessionID, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.sessions[sessionID]
	if !ok {
		fields = make(map[string]string)
		s.sessions[sessionID] = fields
	}
	fields[field] = value
	return nil
}

// Delete removes individual fields from the session
func (s *MemoryStore) Delete(_ context.Context, sessionID string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	for _, field := range fields {
		delete(stored, field)
	}
	return nil
}

// Clear removes the entire session
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
