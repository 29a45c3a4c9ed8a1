// Package config loads environment variables and provides a typed Config used across the bot.
// It applies sensible defaults so the binary can run locally with minimal setup.
// Only the Discord token is hard-required; missing optional variables disable
// features (e.g. the YouTube Data API lister falls back to yt-dlp).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Discord
	DiscordToken  string
	OwnerID       string
	AdminRoleName string

	// Stream lookup
	ChannelURL       string // YouTube /streams page scanned by yt-dlp
	YouTubeChannelID string // channel id for the Data API lister
	YouTubeAPIKey    string // enables the Data API lister when set
	StreamCacheTTL   time.Duration
	FrameFreshness   time.Duration

	// Storage
	DataDir  string
	ImageDir string
	DBPath   string

	// HTTP
	HTTPAddr string
}

// Load reads environment variables and applies defaults. It does not fail when
// optional stream credentials are missing; use ValidateBotReady before
// connecting to Discord.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DiscordToken = os.Getenv("DISCORD_BOT_TOKEN")
	cfg.OwnerID = os.Getenv("OWNER_ID")
	cfg.AdminRoleName = os.Getenv("ADMIN_ROLE_NAME")
	if cfg.AdminRoleName == "" {
		cfg.AdminRoleName = "Moderator"
	}

	cfg.ChannelURL = os.Getenv("CHANNEL_URL")
	if cfg.ChannelURL == "" {
		cfg.ChannelURL = "https://www.youtube.com/@SilvercordTST/streams"
	}
	cfg.YouTubeChannelID = os.Getenv("YOUTUBE_CHANNEL_ID")
	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")

	cfg.StreamCacheTTL = envDuration("STREAM_CACHE_TTL", time.Hour)
	cfg.FrameFreshness = envDuration("FRAME_FRESHNESS", 15*time.Second)

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	cfg.ImageDir = os.Getenv("IMAGE_DIR")
	if cfg.ImageDir == "" {
		cfg.ImageDir = filepath.Join(cfg.DataDir, "img")
	}
	cfg.DBPath = os.Getenv("DB_PATH")
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "quotes.db")
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	return cfg, nil
}

// ValidateBotReady checks required fields for connecting to the Discord gateway.
func (c *Config) ValidateBotReady() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("missing discord env: require DISCORD_BOT_TOKEN")
	}
	if c.OwnerID == "" {
		return fmt.Errorf("missing discord env: require OWNER_ID")
	}
	return nil
}

func envDuration(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
		// Bare seconds accepted for compatibility with older deployments.
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
