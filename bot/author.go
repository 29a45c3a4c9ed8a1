package bot

import (
	"github.com/bwmarrin/discordgo"
)

// ResolvedAuthor is the display identity of a quote's author. Known is false
// when the user has left the guild or deleted their account; the fallback
// display fields are then populated instead, so callers never probe for
// missing profile data.
type ResolvedAuthor struct {
	Known       bool
	ID          string
	DisplayName string
	AvatarURL   string
	IsBot       bool
}

// unknownAuthor is the fallback variant for users that cannot be resolved.
func unknownAuthor(id string) ResolvedAuthor {
	return ResolvedAuthor{Known: false, ID: id, DisplayName: "Unknown User"}
}

// memberDisplayName prefers the guild nick over the account name.
func memberDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	return userDisplayName(member.User)
}

func userDisplayName(u *discordgo.User) string {
	if u == nil {
		return "Unknown User"
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// resolveAuthor looks a user up via the session state, the guild, then the
// user endpoint, falling back to the Unknown variant.
func (b *Bot) resolveAuthor(s *discordgo.Session, guildID, userID string) ResolvedAuthor {
	if member, err := s.State.Member(guildID, userID); err == nil && member.User != nil {
		return ResolvedAuthor{
			Known:       true,
			ID:          userID,
			DisplayName: memberDisplayName(member),
			AvatarURL:   member.AvatarURL("128"),
			IsBot:       member.User.Bot,
		}
	}
	if member, err := s.GuildMember(guildID, userID); err == nil && member.User != nil {
		return ResolvedAuthor{
			Known:       true,
			ID:          userID,
			DisplayName: memberDisplayName(member),
			AvatarURL:   member.AvatarURL("128"),
			IsBot:       member.User.Bot,
		}
	}
	if user, err := s.User(userID); err == nil {
		return ResolvedAuthor{
			Known:       true,
			ID:          userID,
			DisplayName: userDisplayName(user),
			AvatarURL:   user.AvatarURL("128"),
			IsBot:       user.Bot,
		}
	}
	return unknownAuthor(userID)
}
