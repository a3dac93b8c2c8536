package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Slot names written after a successful login.
const (
	SlotToken   = "adminToken"
	SlotProfile = "adminProfile"
)

// Slots is client-side key/value storage for the session.
type Slots interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// FileSlots keeps slots in a small JSON object on disk, readable only by the
// current user.
type FileSlots struct {
	path string
	mu   sync.Mutex
}

// NewFileSlots returns slots backed by the file at path. The file is created
// on first Set.
func NewFileSlots(path string) *FileSlots {
	return &FileSlots{path: path}
}

// Path returns the backing file location.
func (s *FileSlots) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *FileSlots) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

// Set stores value under key, replacing any previous value.
func (s *FileSlots) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	m[key] = value

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode slots: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create slots dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write slots: %w", err)
	}
	return nil
}

func (s *FileSlots) load() (map[string]string, error) {
	m := map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slots: %w", err)
	}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode slots %s: %w", s.path, err)
	}
	return m, nil
}
