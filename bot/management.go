package bot

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

func successEmbed(action, detail string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "System Update",
		Description: fmt.Sprintf("✅ Successfully %s: **%s**", action, detail),
		Color:       colorGreen,
	}
}

// commandArg returns the first argument that is not a user mention.
func commandArg(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "<@") {
			return strings.ToLower(a)
		}
	}
	return ""
}

func (b *Bot) handleBlacklistAdd(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	target := firstMention(m.Message)
	cmd := commandArg(args)
	if m.GuildID == "" || target == nil || cmd == "" {
		s.ChannelMessageSend(m.ChannelID, "Usage: `blacklist @user <command|all>`")
		return nil
	}
	if b.blacklist.Add(m.GuildID, target.ID, cmd) {
		s.ChannelMessageSendEmbed(m.ChannelID,
			successEmbed("blacklisted", fmt.Sprintf("%s from !%s", target.Username, cmd)))
	} else {
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("⚠️ **%s** is already blacklisted.", target.Username))
	}
	return nil
}

func (b *Bot) handleBlacklistRemove(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	target := firstMention(m.Message)
	cmd := commandArg(args)
	if m.GuildID == "" || target == nil || cmd == "" {
		s.ChannelMessageSend(m.ChannelID, "Usage: `unblacklist @user <command|all>`")
		return nil
	}
	if b.blacklist.Remove(m.GuildID, target.ID, cmd) {
		s.ChannelMessageSendEmbed(m.ChannelID,
			successEmbed("unblacklisted", fmt.Sprintf("%s from !%s", target.Username, cmd)))
	} else {
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("⚠️ **%s** was not blacklisted from `!%s`.", target.Username, cmd))
	}
	return nil
}

func (b *Bot) handleBlacklistView(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" {
		return nil
	}
	entries := b.blacklist.Guild(m.GuildID)
	if len(entries) == 0 {
		s.ChannelMessageSend(m.ChannelID, "✅ The blacklist is empty for this server.")
		return nil
	}
	var sb strings.Builder
	for userID, cmds := range entries {
		name := "ID: " + userID
		if user, err := s.User(userID); err == nil {
			name = user.Username
		}
		fmt.Fprintf(&sb, "**%s**: `%s`\n", name, strings.Join(cmds, ", "))
	}
	s.ChannelMessageSendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       "⛔ Server Blacklist",
		Description: sb.String(),
		Color:       colorDarkRed,
	})
	return nil
}

func (b *Bot) handleSetPrefix(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" || len(args) == 0 {
		s.ChannelMessageSend(m.ChannelID, "Usage: `setprefix <prefix>`")
		return nil
	}
	prefix := args[0]
	if len(prefix) > 5 {
		s.ChannelMessageSend(m.ChannelID, "❌ Prefix is too long.")
		return nil
	}
	b.settings.Set(m.GuildID, "prefix", prefix)
	s.ChannelMessageSendEmbed(m.ChannelID,
		successEmbed("updated prefix", fmt.Sprintf("New prefix is `%s`", prefix)))
	return nil
}

// handleHealth reports process vitals.
func (b *Bot) handleHealth(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := time.Since(b.start).Round(time.Second)
	quoteCount, err := b.quotes.Count(ctx)
	if err != nil {
		return fmt.Errorf("count quotes: %w", err)
	}

	embed := &discordgo.MessageEmbed{
		Title: "🏥 System Health Check",
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏓 Latency", Value: fmt.Sprintf("`%dms`", s.HeartbeatLatency().Milliseconds()), Inline: true},
			{Name: "⏱️ Uptime", Value: fmt.Sprintf("`%s`", uptime), Inline: true},
			{Name: "💻 OS", Value: fmt.Sprintf("`%s/%s`", runtime.GOOS, runtime.GOARCH), Inline: true},
			{Name: "🧠 Heap", Value: fmt.Sprintf("`%.2f MB`", float64(mem.HeapAlloc)/1024/1024), Inline: true},
			{Name: "⚙️ Goroutines", Value: fmt.Sprintf("`%d`", runtime.NumGoroutine()), Inline: true},
			{Name: "📜 Quotes", Value: fmt.Sprintf("`%d`", quoteCount), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	_, err = s.ChannelMessageSendEmbed(m.ChannelID, embed)
	return err
}
