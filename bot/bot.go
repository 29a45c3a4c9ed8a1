// Package bot is the Discord boundary: session lifecycle, prefix command
// dispatch, and interaction routing. Handlers run on the goroutines discordgo
// spawns per event, so blocking work (subprocess, storage) never touches the
// gateway read loop. All collaborators are injected.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/silvercord/recorder/config"
	"github.com/silvercord/recorder/iam"
	"github.com/silvercord/recorder/quotes"
	"github.com/silvercord/recorder/settings"
	"github.com/silvercord/recorder/stream"
	"github.com/silvercord/recorder/telemetry"
)

// handlerTimeout bounds a single command end to end, including subprocess
// work behind the capture pipeline.
const handlerTimeout = 2 * time.Minute

// Bot wires the Discord session to the quote store and the stream pipeline.
type Bot struct {
	cfg       *config.Config
	session   *discordgo.Session
	quotes    *quotes.Store
	resolver  *stream.Resolver
	capture   *stream.Capture
	limiter   *stream.KeyedLimiter
	blacklist *settings.Blacklist
	gate      *iam.Gate
	settings  *settings.Store
	menus     *menuRegistry
	cooldowns *cooldownTracker
	log       *slog.Logger

	ctx   context.Context
	start time.Time
}

// Options carries the injected collaborators for New.
type Options struct {
	Config    *config.Config
	Quotes    *quotes.Store
	Resolver  *stream.Resolver
	Capture   *stream.Capture
	Blacklist *settings.Blacklist
	Settings  *settings.Store
	Logger    *slog.Logger
}

// New creates the bot and its Discord session without connecting.
func New(opts Options) (*Bot, error) {
	session, err := discordgo.New("Bot " + opts.Config.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	b := &Bot{
		cfg:       opts.Config,
		session:   session,
		quotes:    opts.Quotes,
		resolver:  opts.Resolver,
		capture:   opts.Capture,
		limiter:   stream.NewKeyedLimiter(),
		blacklist: opts.Blacklist,
		gate:      &iam.Gate{Blocklist: opts.Blacklist},
		settings:  opts.Settings,
		menus:     newMenuRegistry(),
		cooldowns: newCooldownTracker(10 * time.Second),
		log:       log.With("component", "bot"),
	}

	session.AddHandler(b.handleMessage)
	session.AddHandler(b.handleInteraction)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.Info("connected to discord", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	return b, nil
}

// Start opens the gateway connection. ctx bounds handler work and the menu
// janitor; Stop still must be called to close the session.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	b.start = time.Now()
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord connection: %w", err)
	}
	go b.menus.janitor(ctx)
	return nil
}

// Stop closes the Discord session.
func (b *Bot) Stop() error {
	if b.session != nil {
		return b.session.Close()
	}
	return nil
}

// splitCommand strips the prefix and splits the remainder into the command
// name (lowercased) and its arguments. ok is false when the message is not a
// command under this prefix.
func splitCommand(content, prefix string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	prefix := b.settings.Prefix(m.GuildID)
	name, args, ok := splitCommand(m.Content, prefix)
	if !ok {
		return
	}

	// Blacklist denials are silent at the boundary.
	if d := b.gate.CanRun(m.GuildID, m.Author.ID, name); !d.Allowed {
		b.log.Debug("blocked command", "command", name,
			"guild", m.GuildID, "user", m.Author.ID, "reason", d.Reason)
		return
	}

	handler, known := b.route(name)
	if !known {
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, handlerTimeout)
	defer cancel()
	ctx = telemetry.WithCorrelation(ctx, m.ID)

	if err := handler(ctx, s, m, args); err != nil {
		b.log.Error("command failed", "command", name,
			"guild", m.GuildID, "user", m.Author.ID, "error", err)
		s.ChannelMessageSend(m.ChannelID, "❌ An internal error occurred.")
	}
}

type commandHandler func(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error

func (b *Bot) route(name string) (commandHandler, bool) {
	switch name {
	case "cctv":
		return b.handleCCTV, true
	case "save":
		return b.handleSave, true
	case "9up":
		return b.handleQuote, true
	case "9uplist":
		return b.handleQuoteList, true
	case "9uptop":
		return b.handleQuoteTop, true
	case "9updel":
		return b.handleQuoteDelete, true
	case "blacklist":
		return b.ownerOnly(b.handleBlacklistAdd), true
	case "unblacklist":
		return b.ownerOnly(b.handleBlacklistRemove), true
	case "viewblacklist":
		return b.ownerOnly(b.handleBlacklistView), true
	case "setprefix":
		return b.ownerOnly(b.handleSetPrefix), true
	case "health":
		return b.ownerOnly(b.handleHealth), true
	}
	return nil, false
}

// ownerOnly silently drops the command for anyone but the configured owner.
func (b *Bot) ownerOnly(h commandHandler) commandHandler {
	return func(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
		if d := iam.IsOwner(iam.Actor{UserID: m.Author.ID}, b.cfg.OwnerID); !d.Allowed {
			b.log.Debug("owner command denied", "user", m.Author.ID)
			return nil
		}
		return h(ctx, s, m, args)
	}
}

// firstMention returns the first mentioned user, if any.
func firstMention(m *discordgo.Message) *discordgo.User {
	if len(m.Mentions) == 0 {
		return nil
	}
	return m.Mentions[0]
}
