// Package iam holds the bot's authorization decisions. Checks return an
// explicit Decision rather than signalling through errors, so the caller
// chooses whether a denial is silent or reported.
package iam

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason string) Decision { return Decision{Reason: reason} }

// Actor identifies the user attempting an action, with the role names the
// boundary layer resolved for them.
type Actor struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the actor holds the named role.
func (a Actor) HasRole(name string) bool {
	for _, r := range a.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// CanDeleteQuote decides whether actor may delete a quote added by adderID.
// Allowed for the bot owner, holders of the admin role, and the original
// adder of that specific quote.
func CanDeleteQuote(actor Actor, ownerID, adminRoleName, adderID string) Decision {
	if actor.UserID == ownerID {
		return Allow()
	}
	if adminRoleName != "" && actor.HasRole(adminRoleName) {
		return Allow()
	}
	if adderID != "" && actor.UserID == adderID {
		return Allow()
	}
	return Deny("only the bot owner, admins, or whoever added the quote can delete it")
}

// IsOwner decides owner-only access.
func IsOwner(actor Actor, ownerID string) Decision {
	if actor.UserID == ownerID {
		return Allow()
	}
	return Deny("owner only")
}

// Blocklist answers per-guild command blacklist lookups.
type Blocklist interface {
	Blocked(guildID, userID, command string) bool
}

// Gate combines the blacklist into a command-dispatch decision. Denials from
// the blacklist are conventionally silent at the boundary; that choice stays
// with the caller.
type Gate struct {
	Blocklist Blocklist
}

// CanRun decides whether a user may invoke a command in a guild. Direct
// messages (empty guild) are never blacklisted.
func (g *Gate) CanRun(guildID, userID, command string) Decision {
	if guildID == "" {
		return Allow()
	}
	if g.Blocklist != nil && g.Blocklist.Blocked(guildID, userID, command) {
		return Deny("user is blacklisted from " + command)
	}
	return Allow()
}
