package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBlacklistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.json")
	b, err := NewBlacklist(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if !b.Add("g1", "u1", "cctv") {
		t.Fatal("first add must succeed")
	}
	if b.Add("g1", "u1", "cctv") {
		t.Fatal("repeat add must report existing")
	}
	if !b.Blocked("g1", "u1", "cctv") {
		t.Fatal("block not effective")
	}
	if b.Blocked("g1", "u1", "save") {
		t.Fatal("unrelated command blocked")
	}
	if b.Blocked("g2", "u1", "cctv") {
		t.Fatal("block leaked across guilds")
	}

	// Persisted across reload.
	b2, err := NewBlacklist(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !b2.Blocked("g1", "u1", "cctv") {
		t.Fatal("block lost on reload")
	}
}

func TestBlacklistAllWildcard(t *testing.T) {
	b, _ := NewBlacklist(filepath.Join(t.TempDir(), "b.json"))
	b.Add("g1", "u1", "all")
	if !b.Blocked("g1", "u1", "cctv") || !b.Blocked("g1", "u1", "save") {
		t.Fatal("'all' must block every command")
	}
}

func TestBlacklistRemovePrunes(t *testing.T) {
	b, _ := NewBlacklist(filepath.Join(t.TempDir(), "b.json"))
	b.Add("g1", "u1", "cctv")
	if !b.Remove("g1", "u1", "cctv") {
		t.Fatal("remove must succeed")
	}
	if b.Remove("g1", "u1", "cctv") {
		t.Fatal("second remove must report missing")
	}
	if len(b.Guild("g1")) != 0 {
		t.Fatal("empty user not pruned")
	}
}

func TestStorePrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := s.Prefix("g1"); got != "!" {
		t.Fatalf("expected default prefix, got %q", got)
	}
	s.Set("g1", "prefix", "?")
	if got := s.Prefix("g1"); got != "?" {
		t.Fatalf("expected custom prefix, got %q", got)
	}
	if got := s.Prefix("g2"); got != "!" {
		t.Fatalf("prefix leaked across guilds: %q", got)
	}

	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := s2.Prefix("g1"); got != "?" {
		t.Fatalf("prefix lost on reload: %q", got)
	}
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := s.Prefix("g1"); got != "!" {
		t.Fatalf("expected defaults after corrupt file, got %q", got)
	}
}
