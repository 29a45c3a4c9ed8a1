package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/silvercord/recorder/menu"
)

var numberEmojis = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣"}

// sessionEmbed renders the menu's current state. Pure over the session.
func sessionEmbed(sess *menuSession) *discordgo.MessageEmbed {
	m := sess.menu

	if m.State() == menu.ConfirmingDelete {
		item, _ := m.Selected()
		return &discordgo.MessageEmbed{
			Title:       "🗑️ Confirm Deletion",
			Description: fmt.Sprintf("Delete this quote?\n\n**%s**", truncate(oneline(item.Content), 200)),
			Color:       colorDarkRed,
		}
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s (%d total)", sess.title, m.Len()),
		Color: colorBlue,
	}
	if sess.target.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: sess.target.AvatarURL}
	}
	if m.State() == menu.Expired {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Menu expired."}
	}

	for i, item := range m.PageItems() {
		adder := "System"
		if item.AdderUserID != "" {
			adder = fmt.Sprintf("<@%s>", item.AdderUserID)
		}
		added := "Unknown date"
		if item.AddedTimestamp != 0 {
			added = fmt.Sprintf("<t:%d:R>", item.AddedTimestamp)
		}
		label := "🔹"
		if i < len(numberEmojis) {
			label = numberEmojis[i]
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: label,
			Value: fmt.Sprintf("%s\n%d times\n*%s by %s*",
				truncate(oneline(item.Content), 60), item.Uses, added, adder),
		})
	}
	return embed
}

// sessionComponents renders the button rows for the menu's current state.
// Every control is disabled once the menu expires.
func sessionComponents(sess *menuSession) []discordgo.MessageComponent {
	m := sess.menu
	expired := m.State() == menu.Expired

	if m.State() == menu.ConfirmingDelete {
		return []discordgo.MessageComponent{discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Delete",
					Style:    discordgo.DangerButton,
					CustomID: componentID(sess.id, "confirm"),
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.SecondaryButton,
					CustomID: componentID(sess.id, "cancel"),
				},
			},
		}}
	}

	nav := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "◀️",
				Style:    discordgo.SecondaryButton,
				CustomID: componentID(sess.id, "prev"),
				Disabled: expired || !m.HasPrev(),
			},
			discordgo.Button{
				Label:    fmt.Sprintf("Page %d/%d", m.Page()+1, m.TotalPages()),
				Style:    discordgo.SecondaryButton,
				CustomID: componentID(sess.id, "page"),
				Disabled: true,
			},
			discordgo.Button{
				Label:    "▶️",
				Style:    discordgo.SecondaryButton,
				CustomID: componentID(sess.id, "next"),
				Disabled: expired || !m.HasNext(),
			},
		},
	}
	rows := []discordgo.MessageComponent{nav}

	if sess.kind == kindDelete && !expired {
		var selects []discordgo.MessageComponent
		for i := range m.PageItems() {
			selects = append(selects, discordgo.Button{
				Label:    fmt.Sprintf("%d", i+1),
				Style:    discordgo.PrimaryButton,
				CustomID: componentID(sess.id, fmt.Sprintf("sel%d", i)),
			})
		}
		if len(selects) > 0 {
			rows = append(rows, discordgo.ActionsRow{Components: selects})
		}
	}
	return rows
}
