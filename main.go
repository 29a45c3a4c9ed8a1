// Command recorder is the main entrypoint for the Silvercord recorder bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Opens the local sqlite store and runs idempotent migrations.
//   - Connects the Discord gateway and serves prefix commands: stream frame
//     grabs (!cctv) and the quote recorder (!save, !9up and friends).
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status, /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/silvercord/recorder/bot"
	"github.com/silvercord/recorder/cache"
	"github.com/silvercord/recorder/config"
	"github.com/silvercord/recorder/db"
	"github.com/silvercord/recorder/quotes"
	"github.com/silvercord/recorder/server"
	"github.com/silvercord/recorder/settings"
	"github.com/silvercord/recorder/stream"
	"github.com/silvercord/recorder/telemetry"
	"github.com/silvercord/recorder/youtubeapi"
)

var cli struct {
	EnvFile   string `help:"Path to a .env file loaded before config." default:".env"`
	HTTPAddr  string `help:"Override HTTP_ADDR for the ops server." name:"http-addr"`
	DBPath    string `help:"Override DB_PATH for the quote store." name:"db-path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." enum:"debug,info,warn,error" default:"info"`
	LogFormat string `help:"Log format (text, json)." enum:"text,json" default:"text"`
}

func main() {
	start := time.Now()
	kong.Parse(&cli,
		kong.Name("recorder"),
		kong.Description("Discord quote recorder and live-stream frame grabber."),
	)

	// Local dev convenience only; production relies on real env.
	_ = godotenv.Load(cli.EnvFile)

	lvl := slog.LevelInfo
	switch strings.ToLower(firstNonEmpty(os.Getenv("LOG_LEVEL"), cli.LogLevel)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	var handler slog.Handler
	if strings.ToLower(firstNonEmpty(os.Getenv("LOG_FORMAT"), cli.LogFormat)) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if cli.HTTPAddr != "" {
		cfg.HTTPAddr = cli.HTTPAddr
	}
	if cli.DBPath != "" {
		cfg.DBPath = cli.DBPath
	}
	if err := cfg.ValidateBotReady(); err != nil {
		slog.Error("config invalid", slog.Any("err", err))
		os.Exit(1)
	}

	telemetry.Init()
	shutdownTracing, err := telemetry.InitTracing("recorder", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdownTracing()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.Migrate(ctx, database); err != nil {
		slog.Error("failed to migrate db", slog.Any("err", err))
		os.Exit(1)
	}

	quoteStore := quotes.NewStore(database)
	if n, err := quoteStore.Count(ctx); err == nil {
		telemetry.SetQuoteCount(n)
	}

	streamCache, err := cache.New(filepath.Join(cfg.DataDir, "stream_cache.json"))
	if err != nil {
		slog.Error("failed to open stream cache", slog.Any("err", err))
		os.Exit(1)
	}
	blacklist, err := settings.NewBlacklist(filepath.Join(cfg.DataDir, "blacklist.json"))
	if err != nil {
		slog.Error("failed to open blacklist store", slog.Any("err", err))
		os.Exit(1)
	}
	guildSettings, err := settings.NewStore(filepath.Join(cfg.DataDir, "server_settings.json"))
	if err != nil {
		slog.Error("failed to open settings store", slog.Any("err", err))
		os.Exit(1)
	}

	// Prefer the Data API lister when credentials are present; yt-dlp
	// otherwise.
	var lister stream.Lister
	if cfg.YouTubeAPIKey != "" && cfg.YouTubeChannelID != "" {
		lister = youtubeapi.New(cfg.YouTubeAPIKey, cfg.YouTubeChannelID)
		slog.Info("live lister", slog.String("backend", "youtube-data-api"))
	} else {
		lister = stream.NewYtDlpLister(cfg.ChannelURL)
		slog.Info("live lister", slog.String("backend", "yt-dlp"))
	}
	resolver := stream.NewResolver(streamCache, lister, cfg.StreamCacheTTL)
	capture, err := stream.NewCapture(cfg.ImageDir, cfg.FrameFreshness)
	if err != nil {
		slog.Error("failed to prepare image directory", slog.Any("err", err))
		os.Exit(1)
	}

	b, err := bot.New(bot.Options{
		Config:    cfg,
		Quotes:    quoteStore,
		Resolver:  resolver,
		Capture:   capture,
		Blacklist: blacklist,
		Settings:  guildSettings,
		Logger:    slog.Default(),
	})
	if err != nil {
		slog.Error("failed to create bot", slog.Any("err", err))
		os.Exit(1)
	}
	if err := b.Start(ctx); err != nil {
		slog.Error("failed to start bot", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := b.Stop(); err != nil {
			slog.Error("bot shutdown error", slog.Any("err", err))
		}
	}()

	go func() {
		deps := server.Deps{DB: database, Cache: streamCache, DataDir: cfg.DataDir, Start: start}
		if err := server.Start(ctx, deps, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited", slog.Any("err", err))
		}
	}()
	slog.Info("recorder running", slog.String("http_addr", cfg.HTTPAddr))

	<-ctx.Done()
	slog.Info("shutting down")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
