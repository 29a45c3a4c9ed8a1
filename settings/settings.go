package settings

import (
	"os"
	"path/filepath"
	"sync"
)

// defaults applied when a guild has no explicit value.
var defaults = map[string]string{
	"prefix": "!",
}

// Store is the per-guild key -> value settings file (prefix and friends).
type Store struct {
	path string

	mu   sync.Mutex
	data map[string]map[string]string
}

// NewStore loads (or initializes) the settings file.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Store{path: path, data: loadJSONMap[map[string]string](path)}, nil
}

// Get returns the guild's value for key, falling back to the default.
func (s *Store) Get(guildID, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vals, ok := s.data[guildID]; ok {
		if v, ok := vals[key]; ok {
			return v
		}
	}
	return defaults[key]
}

// Set stores a guild value and rewrites the file.
func (s *Store) Set(guildID, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[guildID] == nil {
		s.data[guildID] = map[string]string{}
	}
	s.data[guildID][key] = value
	saveJSONMap(s.path, s.data)
}

// Prefix returns the guild's command prefix.
func (s *Store) Prefix(guildID string) string {
	return s.Get(guildID, "prefix")
}
