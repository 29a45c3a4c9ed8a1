package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, ok := s.Get("sdvx", "L"); ok {
		t.Fatal("expected empty store")
	}

	e := Entry{URL: "https://www.youtube.com/watch?v=abc", Title: "x [SILVERCORD - L]", Timestamp: time.Now().Unix()}
	s.Put("sdvx", "L", e)

	// Reload from disk to prove persistence.
	s2, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := s2.Get("sdvx", "L")
	if !ok {
		t.Fatal("entry missing after reload")
	}
	if got.URL != e.URL || got.Title != e.Title {
		t.Fatalf("entry mismatch: %+v", got)
	}
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store from corrupt file, got %d entries", s.Len())
	}
	// Store must still accept writes after recovering.
	s.Put("iidx", "R", Entry{URL: "u", Title: "t", Timestamp: 1})
	if _, ok := s.Get("iidx", "R"); !ok {
		t.Fatal("put after recovery failed")
	}
}

func TestEntryExpired(t *testing.T) {
	now := time.Now()
	e := Entry{Timestamp: now.Add(-30 * time.Minute).Unix()}
	if e.Expired(now, time.Hour) {
		t.Fatal("entry inside ttl reported expired")
	}
	if !e.Expired(now, 30*time.Minute) {
		t.Fatal("entry at ttl boundary should be expired")
	}
}

func TestStoreDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.json")
	s, _ := New(path)
	s.Put("sdvx", "L", Entry{URL: "u"})
	s.Put("sdvx", "R", Entry{URL: "v"})
	s.Delete("sdvx", "L")
	if _, ok := s.Get("sdvx", "L"); ok {
		t.Fatal("deleted entry still present")
	}
	if _, ok := s.Get("sdvx", "R"); !ok {
		t.Fatal("sibling entry lost on delete")
	}
}
