package iam

import "testing"

func TestCanDeleteQuote(t *testing.T) {
	const owner, adder, admin = "owner-1", "adder-1", "Moderator"

	cases := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owner", Actor{UserID: owner}, true},
		{"admin role", Actor{UserID: "rando", Roles: []string{"Member", admin}}, true},
		{"adder", Actor{UserID: adder}, true},
		{"stranger", Actor{UserID: "rando", Roles: []string{"Member"}}, false},
		{"wrong role", Actor{UserID: "rando", Roles: []string{"moderator"}}, false},
	}
	for _, tc := range cases {
		got := CanDeleteQuote(tc.actor, owner, admin, adder)
		if got.Allowed != tc.want {
			t.Fatalf("%s: allowed=%v, want %v", tc.name, got.Allowed, tc.want)
		}
		if !got.Allowed && got.Reason == "" {
			t.Fatalf("%s: denial without reason", tc.name)
		}
	}
}

func TestCanDeleteQuoteEmptyAdder(t *testing.T) {
	// A quote with no recorded adder must not let an arbitrary user with an
	// empty id sneak through.
	got := CanDeleteQuote(Actor{UserID: ""}, "owner", "Moderator", "")
	if got.Allowed {
		t.Fatal("empty actor must not match empty adder")
	}
}

type fakeBlocklist map[string]bool

func (f fakeBlocklist) Blocked(guildID, userID, command string) bool {
	return f[guildID+"/"+userID+"/"+command]
}

func TestGateCanRun(t *testing.T) {
	g := &Gate{Blocklist: fakeBlocklist{"g1/u1/cctv": true}}

	if d := g.CanRun("g1", "u1", "cctv"); d.Allowed {
		t.Fatal("blacklisted user allowed")
	}
	if d := g.CanRun("g1", "u1", "save"); !d.Allowed {
		t.Fatal("non-blacklisted command denied")
	}
	if d := g.CanRun("g1", "u2", "cctv"); !d.Allowed {
		t.Fatal("other user denied")
	}
	// DMs bypass the blacklist entirely.
	if d := g.CanRun("", "u1", "cctv"); !d.Allowed {
		t.Fatal("dm denied")
	}
}
