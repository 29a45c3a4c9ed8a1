package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/silvercord/recorder/quotes"
)

func errorEmbed(text string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ Error",
		Description: text,
		Color:       colorRed,
	}
}

// handleSave records the message the invocation replies to.
func (b *Bot) handleSave(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" {
		return nil
	}
	prefix := b.settings.Prefix(m.GuildID)

	if m.MessageReference == nil {
		s.ChannelMessageSendEmbed(m.ChannelID, errorEmbed(
			fmt.Sprintf("Please reply to a message with `%ssave` to record it.", prefix)))
		return nil
	}

	ref := m.ReferencedMessage
	if ref == nil {
		var err error
		ref, err = s.ChannelMessage(m.MessageReference.ChannelID, m.MessageReference.MessageID)
		if err != nil {
			s.ChannelMessageSendEmbed(m.ChannelID, errorEmbed("Message not found (it might be deleted)."))
			return nil
		}
	}

	res, err := b.quotes.Save(ctx, quotes.SaveRequest{
		GuildID:     m.GuildID,
		AuthorID:    ref.Author.ID,
		Content:     ref.Content,
		ChannelID:   ref.ChannelID,
		AdderID:     m.Author.ID,
		AuthorIsBot: ref.Author.Bot,
		FromWebhook: ref.WebhookID != "",
		CapturedAt:  ref.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("save quote: %w", err)
	}

	authorName := userDisplayName(ref.Author)
	switch res.Status {
	case quotes.RejectedInvalid:
		s.ChannelMessageSendEmbed(m.ChannelID, errorEmbed(capitalize(res.Reason)+"."))
	case quotes.RejectedDuplicate:
		s.ChannelMessageSendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("⚠️ I already have that quote saved for **%s**!", authorName),
			Color:       colorGold,
		})
	case quotes.Created:
		b.log.Info("saved quote",
			"guild", m.GuildID,
			"author", authorName,
			"saved_by", userDisplayName(m.Author),
			"content", truncate(oneline(ref.Content), 30))
		s.ChannelMessageSendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("**%s**", ref.Content),
			Color:       colorGreen,
			Author: &discordgo.MessageEmbedAuthor{
				Name:    "✅ Recorded: " + authorName,
				IconURL: ref.Author.AvatarURL("128"),
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text: "Saved by " + userDisplayName(m.Author),
			},
		})
	}
	return nil
}

// handleQuote serves a random quote, optionally scoped to a mentioned user,
// with `-f` appending origin and popularity fields.
func (b *Bot) handleQuote(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" {
		return nil
	}
	target := firstMention(m.Message)
	showFooter := false
	for _, a := range args {
		if a == "-f" {
			showFooter = true
		}
	}

	authorID := ""
	if target != nil {
		authorID = target.ID
	}
	q, err := b.quotes.FetchRandom(ctx, m.GuildID, authorID)
	if err != nil {
		return fmt.Errorf("fetch random quote: %w", err)
	}
	if q == nil {
		if target != nil {
			s.ChannelMessageSend(m.ChannelID,
				fmt.Sprintf("📜 No clean records for **%s**.", userDisplayName(target)))
		} else {
			s.ChannelMessageSend(m.ChannelID, "📜 No valid quotes found in this server.")
		}
		return nil
	}

	author := b.resolveAuthor(s, m.GuildID, q.UserID)
	if author.IsBot {
		s.ChannelMessageSend(m.ChannelID, "🤖 Cannot add bot message.")
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Description: q.Content,
		Color:       colorBlue,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    "🗣️ " + author.DisplayName,
			IconURL: author.AvatarURL,
		},
	}
	if showFooter {
		adder := "System"
		if q.AdderUserID != "" {
			adder = fmt.Sprintf("<@%s>", q.AdderUserID)
		}
		addedAt := "Unknown date"
		if q.AddedTimestamp != 0 {
			addedAt = fmt.Sprintf("<t:%d:R>", q.AddedTimestamp)
		}
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "📜 Original", Value: fmt.Sprintf("<#%s>\n<t:%d:f>", q.ChannelID, q.Timestamp), Inline: true},
			{Name: "✍️ Added By", Value: adder + "\n" + addedAt, Inline: true},
			{Name: "📊 Popularity", Value: fmt.Sprintf("Triggered **%d** times", q.Uses)},
		}
	}
	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embed:           embed,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		return fmt.Errorf("send quote: %w", err)
	}
	return nil
}

// handleQuoteTop renders the top-10 leaderboard, globally or for one user.
func (b *Bot) handleQuoteTop(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	if m.GuildID == "" {
		return nil
	}
	target := firstMention(m.Message)
	authorID := ""
	title := "🏆 9up"
	if target != nil {
		authorID = target.ID
		title = "🏆 9up: " + userDisplayName(target)
	}

	rows, err := b.quotes.Top(ctx, m.GuildID, authorID)
	if err != nil {
		return fmt.Errorf("fetch top quotes: %w", err)
	}
	if len(rows) == 0 {
		if target != nil {
			s.ChannelMessageSend(m.ChannelID,
				fmt.Sprintf("📜 **%s** has no highly used quotes yet.", userDisplayName(target)))
		} else {
			s.ChannelMessageSend(m.ChannelID, "📜 No quotes have been used yet.")
		}
		return nil
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	for i, q := range rows {
		rank := fmt.Sprintf("`#%d`", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		content := truncate(oneline(q.Content), 40)
		if target != nil {
			fmt.Fprintf(&sb, "%s 「%s」 • **%d** uses\n\n", rank, content, q.Uses)
		} else {
			fmt.Fprintf(&sb, "%s 「%s」\nby <@%s> • **%d** uses\n\n", rank, content, q.UserID, q.Uses)
		}
	}
	_, err = s.ChannelMessageSendEmbed(m.ChannelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: sb.String(),
		Color:       colorGold,
	})
	if err != nil {
		return fmt.Errorf("send leaderboard: %w", err)
	}
	return nil
}

// oneline flattens newlines for log lines and compact embeds.
func oneline(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
