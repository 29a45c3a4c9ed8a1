package bot

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/silvercord/recorder/stream"
)

var sides = []string{"L", "R"}

const (
	colorBlue    = 0x3498db
	colorMagenta = 0xff00ff
	colorGold    = 0xf1c40f
	colorGreen   = 0x2ecc71
	colorRed     = 0xe74c3c
	colorDarkRed = 0x992d22
)

// handleCCTV resolves the live broadcast for a cabinet and uploads a frame
// grab. Captures for the same guild are serialized behind the keyed limiter;
// callers queue rather than fail.
func (b *Bot) handleCCTV(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" {
		return nil
	}
	if len(args) == 0 {
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Usage: `%scctv <game> [side]`", b.settings.Prefix(m.GuildID)))
		return nil
	}
	game := strings.ToLower(args[0])

	switch game {
	case "iidx":
		_, err := s.ChannelMessageSendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Title:       "🎹 Beatmania IIDX",
			Description: "🚧 **Deployment in progress.**",
			Color:       colorGold,
		})
		return err

	case "sdvx":
		side := ""
		if len(args) > 1 {
			side = strings.ToUpper(args[1])
		} else {
			side = sides[rand.Intn(len(sides))]
		}
		if side != "L" && side != "R" {
			s.ChannelMessageSend(m.ChannelID, "❌ Invalid side! Use **L** or **R**.")
			return nil
		}
		return b.captureAndSend(ctx, s, m, game, side)

	default:
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("❓ Unknown game `%s`. Supported games: `sdvx`, `iidx`", game))
		return nil
	}
}

func (b *Bot) captureAndSend(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, game, side string) error {
	if ok, wait := b.cooldowns.Allow(m.Author.ID); !ok {
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("⏳ Slow down! Try again in %.0fs.", wait.Seconds()))
		return nil
	}

	status, err := s.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("🔍 Searching live: **SDVX - %s** ...", side))
	if err != nil {
		return fmt.Errorf("send status message: %w", err)
	}
	deleteStatus := func() {
		s.ChannelMessageDelete(m.ChannelID, status.ID)
	}

	// One capture per guild at a time; later requests wait their turn.
	if err := b.limiter.Acquire(ctx, m.GuildID); err != nil {
		deleteStatus()
		return fmt.Errorf("acquire capture slot: %w", err)
	}
	defer b.limiter.Release(m.GuildID)

	info, ok := b.resolver.StreamInfo(ctx, game, side)
	if !ok {
		deleteStatus()
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("⚠️ **Stream Offline**\nCould not find a live stream for SDVX %s.", side))
		return nil
	}

	filename := stream.FrameFilename(game, side)
	path, ok := b.capture.Frame(ctx, info.URL, filename)
	deleteStatus()
	if !ok {
		s.ChannelMessageSend(m.ChannelID, "❌ Error: Failed to capture frame from the stream.")
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open captured frame: %w", err)
	}
	defer f.Close()

	color := colorBlue
	if side == "R" {
		color = colorMagenta
	}
	requester := userDisplayName(m.Author)
	if m.Member != nil && m.Member.Nick != "" {
		requester = m.Member.Nick
	}
	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Files: []*discordgo.File{{Name: filename, Reader: f}},
		Embed: &discordgo.MessageEmbed{
			Title: "🔴 " + info.Title,
			URL:   info.URL,
			Color: color,
			Image: &discordgo.MessageEmbedImage{URL: "attachment://" + filename},
			Footer: &discordgo.MessageEmbedFooter{
				Text: "Requested by " + requester,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("upload frame: %w", err)
	}
	return nil
}
