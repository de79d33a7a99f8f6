package onboarding

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// cacheKey is the single durable key holding the serialized wizard state.
// Absence of the entry means no onboarding is in progress.
const cacheKey = "seller-onboarding"

// cachedState is what survives a reload: the accumulated form fields plus
// the step the client believes it is on. The server remains the tie-breaker
// of record on resume.
type cachedState struct {
	Step   Step              `json:"step"`
	Fields map[string]string `json:"fields"`
}

// Store is the durable client-side cache for in-progress onboarding
type Store interface {
	// Load returns the cached state, or (nil, nil) when nothing is cached.
	Load() (*cachedState, error)
	Save(state *cachedState) error
	Clear() error
}

// FileStore persists the onboarding cache as one JSON file under a fixed
// directory, standing in for the browser's durable storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, cacheKey+".json")}
}

func (s *FileStore) Load() (*cachedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read onboarding cache: %w", err)
	}

	state := &cachedState{}
	if err := json.Unmarshal(raw, state); err != nil {
		// A corrupt cache is treated as absent rather than fatal.
		return nil, nil
	}
	if state.Fields == nil {
		state.Fields = make(map[string]string)
	}
	return state, nil
}

func (s *FileStore) Save(state *cachedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode onboarding cache: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write onboarding cache: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear onboarding cache: %w", err)
	}
	return nil
}
