package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/silvercord/recorder/iam"
	"github.com/silvercord/recorder/menu"
	"github.com/silvercord/recorder/quotes"
)

type menuKind int

const (
	kindList menuKind = iota
	kindDelete
)

// menuSession ties a live menu state machine to the Discord message that
// renders it. Only the invoker may drive the controls.
type menuSession struct {
	id        string
	kind      menuKind
	menu      *menu.Menu
	invokerID string
	guildID   string
	channelID string
	title     string
	target    ResolvedAuthor
}

type menuRegistry struct {
	mu       sync.Mutex
	sessions map[string]*menuSession
}

func newMenuRegistry() *menuRegistry {
	return &menuRegistry{sessions: make(map[string]*menuSession)}
}

func (r *menuRegistry) add(s *menuSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

func (r *menuRegistry) get(id string) (*menuSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *menuRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// janitor drops expired sessions so abandoned menus do not accumulate.
func (r *menuRegistry) janitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			for id, s := range r.sessions {
				if s.menu.State() == menu.Expired {
					delete(r.sessions, id)
				}
			}
			r.mu.Unlock()
		}
	}
}

func quotesToItems(rows []quotes.Quote) []menu.Item {
	items := make([]menu.Item, len(rows))
	for i, q := range rows {
		items[i] = menu.Item{
			ID:             q.ID,
			Content:        q.Content,
			AddedTimestamp: q.AddedTimestamp,
			AdderUserID:    q.AdderUserID,
			Uses:           q.Uses,
		}
	}
	return items
}

// handleQuoteList opens a read-only paginated menu of a user's quotes.
func (b *Bot) handleQuoteList(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	return b.openQuoteMenu(ctx, s, m, kindList)
}

// handleQuoteDelete opens the deletion menu for a user's quotes.
func (b *Bot) handleQuoteDelete(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) error {
	return b.openQuoteMenu(ctx, s, m, kindDelete)
}

func (b *Bot) openQuoteMenu(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, kind menuKind) error {
	if m.GuildID == "" {
		return nil
	}
	target := firstMention(m.Message)
	if target == nil {
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("⚠️ Please tag a user. Usage: `%s%s @User`",
				b.settings.Prefix(m.GuildID), map[menuKind]string{kindList: "9uplist", kindDelete: "9updel"}[kind]))
		return nil
	}
	if target.Bot {
		s.ChannelMessageSend(m.ChannelID, "🤖 Bots do not have quote records.")
		return nil
	}

	rows, err := b.quotes.ListByAuthor(ctx, m.GuildID, target.ID)
	if err != nil {
		return fmt.Errorf("list quotes: %w", err)
	}
	if len(rows) == 0 {
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("📜 No recorded quotes found for **%s**.", userDisplayName(target)))
		return nil
	}

	title := "Quotes by " + userDisplayName(target)
	if kind == kindDelete {
		title = "Delete Quote: " + userDisplayName(target)
	}
	sess := &menuSession{
		id:        uuid.NewString(),
		kind:      kind,
		menu:      menu.New(quotesToItems(rows)),
		invokerID: m.Author.ID,
		guildID:   m.GuildID,
		channelID: m.ChannelID,
		title:     title,
		target:    b.resolveAuthor(s, m.GuildID, target.ID),
	}
	b.menus.add(sess)

	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embed:      sessionEmbed(sess),
		Components: sessionComponents(sess),
	})
	if err != nil {
		return fmt.Errorf("send menu: %w", err)
	}
	return nil
}

// handleInteraction routes button presses back into the owning menu session.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	id, action, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	sess, ok := b.menus.get(id)
	if !ok {
		// Stale message from a previous process; disable its controls.
		s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{Components: []discordgo.MessageComponent{}},
		})
		return
	}

	presser := interactionUser(i)
	if presser == nil || presser.ID != sess.invokerID {
		s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "⚠️ This menu belongs to someone else.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}

	var note string
	switch {
	case action == "prev":
		sess.menu.Prev()
	case action == "next":
		sess.menu.Next()
	case action == "cancel":
		sess.menu.Cancel()
	case strings.HasPrefix(action, "sel"):
		note = b.applySelect(s, i, sess, action)
	case action == "confirm":
		note = b.applyDelete(sess)
	}

	if sess.menu.State() == menu.Expired {
		b.menus.remove(sess.id)
	}

	resp := &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{sessionEmbed(sess)},
		Components: sessionComponents(sess),
	}
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: resp,
	})
	if note != "" {
		s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: note,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
	}
}

// applySelect picks an item and runs the delete authorization before the
// menu may enter its confirm state.
func (b *Bot) applySelect(s *discordgo.Session, i *discordgo.InteractionCreate, sess *menuSession, action string) string {
	if sess.kind != kindDelete {
		return ""
	}
	n, err := strconv.Atoi(strings.TrimPrefix(action, "sel"))
	if err != nil {
		return ""
	}
	item, ok := sess.menu.Select(n)
	if !ok {
		return ""
	}
	actor := b.actorFromInteraction(s, i)
	decision := iam.CanDeleteQuote(actor, b.cfg.OwnerID, b.cfg.AdminRoleName, item.AdderUserID)
	if !sess.menu.Authorize(decision) {
		note := authorizeNote(sess.menu, decision)
		if note != "" {
			b.log.Info("quote delete denied",
				"guild", sess.guildID, "user", actor.UserID, "quote", item.ID, "reason", decision.Reason)
		}
		return note
	}
	return ""
}

// authorizeNote is the user-facing note for a failed Authorize. Expiry is not
// a denial; the rendered embed already says the menu expired, so no note.
func authorizeNote(m *menu.Menu, d iam.Decision) string {
	if m.State() == menu.Expired || d.Allowed {
		return ""
	}
	return "⛔ " + d.Reason
}

// applyDelete commits a confirmed deletion to the store.
func (b *Bot) applyDelete(sess *menuSession) string {
	item, ok := sess.menu.Delete()
	if !ok {
		return ""
	}
	ctx, cancel := context.WithTimeout(b.ctx, 10*time.Second)
	defer cancel()
	if err := b.quotes.Delete(ctx, item.ID); err != nil {
		b.log.Error("quote delete failed", "quote", item.ID, "error", err)
		return "❌ An internal error occurred."
	}
	b.log.Info("deleted quote", "guild", sess.guildID, "quote", item.ID,
		"content", truncate(oneline(item.Content), 30))
	return ""
}

// actorFromInteraction builds the authorization view of the pressing member,
// with role IDs resolved to names.
func (b *Bot) actorFromInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) iam.Actor {
	user := interactionUser(i)
	actor := iam.Actor{}
	if user != nil {
		actor.UserID = user.ID
	}
	if i.Member == nil || i.GuildID == "" {
		return actor
	}
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		guild, err = s.Guild(i.GuildID)
		if err != nil {
			return actor
		}
	}
	byID := make(map[string]string, len(guild.Roles))
	for _, r := range guild.Roles {
		byID[r.ID] = r.Name
	}
	for _, id := range i.Member.Roles {
		if name, ok := byID[id]; ok {
			actor.Roles = append(actor.Roles, name)
		}
	}
	return actor
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

const customIDPrefix = "quotemenu"

func componentID(sessionID, action string) string {
	return customIDPrefix + ":" + sessionID + ":" + action
}

func parseCustomID(id string) (sessionID, action string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix {
		return "", "", false
	}
	return parts[1], parts[2], true
}
