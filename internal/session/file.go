package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists the session token at a fixed path so a restarted
// watcher can resume without re-entering credentials. The in-memory copy is
// authoritative between writes.
type FileStore struct {
	mu    sync.Mutex
	path  string
	token string
}

// NewFileStore loads any token cached at path. A missing file starts the
// store logged out.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		s.token = strings.TrimSpace(string(raw))
	case os.IsNotExist(err):
		// logged out
	default:
		return nil, fmt.Errorf("read token cache %s: %w", path, err)
	}
	return s, nil
}

func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	trimmed := strings.TrimSpace(token)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token cache dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(trimmed), 0o600); err != nil {
		return fmt.Errorf("write token cache %s: %w", s.path, err)
	}
	s.token = trimmed
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token cache %s: %w", s.path, err)
	}
	return nil
}
