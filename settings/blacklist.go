// Package settings holds the small per-guild JSON stores: the command
// blacklist and server settings. Both are constructed explicitly and passed
// to whoever needs them; there is no package-level state.
package settings

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Blacklist maps guild -> user -> blocked command names. The special command
// name "all" blocks every command for that user.
type Blacklist struct {
	path string

	mu   sync.Mutex
	data map[string]map[string][]string
}

// NewBlacklist loads (or initializes) the blacklist file. Missing or corrupt
// files start empty.
func NewBlacklist(path string) (*Blacklist, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	b := &Blacklist{path: path, data: loadJSONMap[map[string][]string](path)}
	return b, nil
}

// Add blocks a command for a user in a guild. Returns false when the block
// already existed.
func (b *Blacklist) Add(guildID, userID, command string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := b.data[guildID]
	if users == nil {
		users = map[string][]string{}
		b.data[guildID] = users
	}
	for _, c := range users[userID] {
		if c == command {
			return false
		}
	}
	users[userID] = append(users[userID], command)
	saveJSONMap(b.path, b.data)
	return true
}

// Remove unblocks a command. Empty users and guilds are pruned so the file
// does not accumulate dead keys. Returns false when no such block existed.
func (b *Blacklist) Remove(guildID, userID, command string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	users, ok := b.data[guildID]
	if !ok {
		return false
	}
	cmds := users[userID]
	for i, c := range cmds {
		if c == command {
			users[userID] = append(cmds[:i], cmds[i+1:]...)
			if len(users[userID]) == 0 {
				delete(users, userID)
			}
			if len(users) == 0 {
				delete(b.data, guildID)
			}
			saveJSONMap(b.path, b.data)
			return true
		}
	}
	return false
}

// Blocked reports whether the user may not run the command in the guild.
func (b *Blacklist) Blocked(guildID, userID, command string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	users, ok := b.data[guildID]
	if !ok {
		return false
	}
	for _, c := range users[userID] {
		if c == command || c == "all" {
			return true
		}
	}
	return false
}

// Guild returns a copy of a guild's blocks for display.
func (b *Blacklist) Guild(guildID string) map[string][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := map[string][]string{}
	for uid, cmds := range b.data[guildID] {
		out[uid] = append([]string(nil), cmds...)
	}
	return out
}

// shared JSON file helpers --------------------------------------------------

func loadJSONMap[V any](path string) map[string]V {
	raw, err := os.ReadFile(path)
	if err != nil {
		return map[string]V{}
	}
	var data map[string]V
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Warn("settings file unreadable, starting empty", slog.String("path", path), slog.Any("err", err))
		return map[string]V{}
	}
	if data == nil {
		data = map[string]V{}
	}
	return data
}

func saveJSONMap[V any](path string, data map[string]V) {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		slog.Error("settings marshal failed", slog.String("path", path), slog.Any("err", err))
		return
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		slog.Error("settings write failed", slog.String("path", path), slog.Any("err", err))
	}
}
