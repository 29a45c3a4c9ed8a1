package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"CHANNEL_URL", "STREAM_CACHE_TTL", "FRAME_FRESHNESS", "DATA_DIR", "IMAGE_DIR", "DB_PATH", "HTTP_ADDR", "ADMIN_ROLE_NAME"} {
		os.Unsetenv(k)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StreamCacheTTL != time.Hour {
		t.Fatalf("expected 1h cache ttl, got %v", cfg.StreamCacheTTL)
	}
	if cfg.FrameFreshness != 15*time.Second {
		t.Fatalf("expected 15s freshness, got %v", cfg.FrameFreshness)
	}
	if cfg.DataDir != "data" {
		t.Fatalf("expected default data dir, got %q", cfg.DataDir)
	}
	if cfg.ImageDir != filepath.Join("data", "img") {
		t.Fatalf("unexpected image dir %q", cfg.ImageDir)
	}
	if cfg.DBPath != filepath.Join("data", "quotes.db") {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr %q", cfg.HTTPAddr)
	}
}

func TestLoadDurationForms(t *testing.T) {
	os.Setenv("STREAM_CACHE_TTL", "30m")
	os.Setenv("FRAME_FRESHNESS", "30")
	defer os.Unsetenv("STREAM_CACHE_TTL")
	defer os.Unsetenv("FRAME_FRESHNESS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StreamCacheTTL != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", cfg.StreamCacheTTL)
	}
	if cfg.FrameFreshness != 30*time.Second {
		t.Fatalf("expected bare seconds to parse, got %v", cfg.FrameFreshness)
	}
}

func TestValidateBotReady(t *testing.T) {
	os.Unsetenv("DISCORD_BOT_TOKEN")
	os.Unsetenv("OWNER_ID")
	cfg, _ := Load()
	if err := cfg.ValidateBotReady(); err == nil {
		t.Fatal("expected error without token")
	}
	cfg.DiscordToken = "t"
	if err := cfg.ValidateBotReady(); err == nil {
		t.Fatal("expected error without owner id")
	}
	cfg.OwnerID = "1"
	if err := cfg.ValidateBotReady(); err != nil {
		t.Fatalf("expected ready, got %v", err)
	}
}
