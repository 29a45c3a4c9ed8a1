package bot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/silvercord/recorder/iam"
	"github.com/silvercord/recorder/menu"
)

func testSession(kind menuKind, n int) *menuSession {
	items := make([]menu.Item, n)
	for i := range items {
		items[i] = menu.Item{ID: int64(i + 1), Content: fmt.Sprintf("quote %d", i+1), AdderUserID: "42"}
	}
	return &menuSession{
		id:        "test-session",
		kind:      kind,
		menu:      menu.New(items),
		invokerID: "1",
		title:     "Quotes by someone",
		target:    ResolvedAuthor{Known: true, ID: "2", DisplayName: "someone"},
	}
}

func buttonsOf(rows []discordgo.MessageComponent) []discordgo.Button {
	var out []discordgo.Button
	for _, row := range rows {
		ar, ok := row.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if b, ok := c.(discordgo.Button); ok {
				out = append(out, b)
			}
		}
	}
	return out
}

func TestListEmbedShowsPageItems(t *testing.T) {
	sess := testSession(kindList, 7)
	embed := sessionEmbed(sess)
	if !strings.Contains(embed.Title, "7 total") {
		t.Fatalf("title = %q, want total count", embed.Title)
	}
	if len(embed.Fields) != menu.PerPage {
		t.Fatalf("fields = %d, want %d", len(embed.Fields), menu.PerPage)
	}
	sess.menu.Next()
	if got := len(sessionEmbed(sess).Fields); got != 2 {
		t.Fatalf("second page fields = %d, want 2", got)
	}
}

func TestListComponentsNavDisabledAtBounds(t *testing.T) {
	sess := testSession(kindList, 7)
	buttons := buttonsOf(sessionComponents(sess))
	if len(buttons) != 3 {
		t.Fatalf("list menu has %d buttons, want 3", len(buttons))
	}
	if !buttons[0].Disabled {
		t.Fatal("prev should be disabled on the first page")
	}
	if buttons[2].Disabled {
		t.Fatal("next should be enabled on the first page")
	}
	sess.menu.Next()
	buttons = buttonsOf(sessionComponents(sess))
	if buttons[0].Disabled || !buttons[2].Disabled {
		t.Fatal("bounds flipped on the last page")
	}
}

func TestDeleteComponentsIncludeSelectRow(t *testing.T) {
	sess := testSession(kindDelete, 7)
	sess.menu.Next() // last page has 2 items
	buttons := buttonsOf(sessionComponents(sess))
	// 3 nav + 2 select buttons
	if len(buttons) != 5 {
		t.Fatalf("delete menu has %d buttons, want 5", len(buttons))
	}
}

func TestConfirmStateRendersConfirmControls(t *testing.T) {
	sess := testSession(kindDelete, 3)
	sess.menu.Select(0)
	sess.menu.Authorize(iam.Allow())

	embed := sessionEmbed(sess)
	if !strings.Contains(embed.Title, "Confirm") {
		t.Fatalf("title = %q, want a confirmation prompt", embed.Title)
	}
	buttons := buttonsOf(sessionComponents(sess))
	if len(buttons) != 2 {
		t.Fatalf("confirm view has %d buttons, want 2", len(buttons))
	}
	if buttons[0].Style != discordgo.DangerButton {
		t.Fatal("delete button should use the danger style")
	}
}

func TestExpiredComponentsAllDisabled(t *testing.T) {
	sess := testSession(kindDelete, 7)
	clock := time.Now()
	sess.menu = menu.NewWithClock(sess.menu.PageItems(), func() time.Time {
		defer func() { clock = clock.Add(2 * time.Minute) }()
		return clock
	})
	sess.menu.State() // second clock read is past the deadline
	for _, b := range buttonsOf(sessionComponents(sess)) {
		if !b.Disabled {
			t.Fatalf("button %q should be disabled after expiry", b.Label)
		}
	}
	if embed := sessionEmbed(sess); embed.Footer == nil || embed.Footer.Text != "Menu expired." {
		t.Fatal("expired embed should carry the expiry footer")
	}
}
