package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"creationhub/internal/domain"
)

// Store keeps hub settings as a single JSON blob on disk. The blob is
// read once at construction and rewritten on every update, mirroring
// the fixed local-storage key the web client used.
type Store struct {
	mu       sync.Mutex
	path     string
	settings domain.HubSettings
}

// NewStore loads settings from path, falling back to defaults when the
// file does not exist yet. A corrupt file is an error, not a silent reset.
func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("settings: path is required")
	}
	s := &Store{path: path, settings: domain.DefaultSettings()}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("settings: read: %w", err)
	}
	var loaded domain.HubSettings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("settings: decode: %w", err)
	}
	s.settings = loaded.Normalize()
	return s, nil
}

// Get returns a snapshot of the current settings.
func (s *Store) Get() domain.HubSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Update normalizes, persists, and applies the new settings atomically.
func (s *Store) Update(next domain.HubSettings) (domain.HubSettings, error) {
	next = next.Normalize()
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return domain.HubSettings{}, fmt.Errorf("settings: encode: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.HubSettings{}, fmt.Errorf("settings: ensure directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return domain.HubSettings{}, fmt.Errorf("settings: write: %w", err)
	}
	s.settings = next
	return next, nil
}
