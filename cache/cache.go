// Package cache implements the persistent stream-link cache: a JSON file
// mapping game -> side -> cached entry, rewritten in full on every mutation.
//
// The store is safe for concurrent use within one process. There is no
// cross-process write coordination; concurrent writers from separate processes
// would race on the file. That is a documented limitation of the single-process
// deployment model, not something the store defends against.
package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one cached stream lookup result. Timestamp is unix seconds of the
// moment the lookup succeeded.
type Entry struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
}

// Expired reports whether the entry is older than ttl at the given instant.
func (e Entry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Unix()-e.Timestamp >= int64(ttl.Seconds())
}

// Store is a JSON-file backed two-level map. A zero value is not usable; use New.
type Store struct {
	path string

	mu   sync.Mutex
	data map[string]map[string]Entry
}

// New creates the parent directory if needed and loads existing content.
// Missing or malformed files yield an empty store, never an error.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	s := &Store{path: path}
	s.data = s.load()
	return s, nil
}

func (s *Store) load() map[string]map[string]Entry {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]map[string]Entry{}
	}
	var data map[string]map[string]Entry
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Warn("link cache unreadable, starting empty", slog.String("path", s.path), slog.Any("err", err))
		return map[string]map[string]Entry{}
	}
	if data == nil {
		data = map[string]map[string]Entry{}
	}
	return data
}

// Get returns the cached entry for (game, side) if present.
func (s *Store) Get(game, side string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sides, ok := s.data[game]
	if !ok {
		return Entry{}, false
	}
	e, ok := sides[side]
	return e, ok
}

// Put stores the entry and rewrites the whole file. A failed write keeps the
// in-memory value so the process still benefits from the cache.
func (s *Store) Put(game, side string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[game] == nil {
		s.data[game] = map[string]Entry{}
	}
	s.data[game][side] = e
	s.save()
}

// Delete removes a cached entry if present and persists.
func (s *Store) Delete(game, side string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sides, ok := s.data[game]
	if !ok {
		return
	}
	if _, ok := sides[side]; !ok {
		return
	}
	delete(sides, side)
	if len(sides) == 0 {
		delete(s.data, game)
	}
	s.save()
}

// Len returns the number of cached entries across all games.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sides := range s.data {
		n += len(sides)
	}
	return n
}

func (s *Store) save() {
	raw, err := json.MarshalIndent(s.data, "", "    ")
	if err != nil {
		slog.Error("link cache marshal failed", slog.Any("err", err))
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		slog.Error("link cache write failed", slog.String("path", s.path), slog.Any("err", err))
	}
}
