// Package session provides the injected auth-token provider consumed by the
// rest client and the synchronizers. Keeping the token behind an explicit
// interface keeps the 401-redirect path testable without a shared global
// store.
package session

import (
	"strings"
	"sync"
)

// Store owns the session token for one panel user.
type Store interface {
	// Token returns the current session token, empty when logged out.
	Token() string
	// SetToken replaces the stored token. Written at login.
	SetToken(token string) error
	// Clear drops the stored token. Called on logout and on 401.
	Clear() error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns a store optionally seeded with an existing token.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: strings.TrimSpace(token)}
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
