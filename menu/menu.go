// Package menu implements the paginated selection state machine behind the
// quote list and delete views. It is pure state: no Discord types, no I/O.
// The boundary layer renders pages and feeds transitions in; expiry is driven
// by an injected clock so it can be tested without sleeping.
package menu

import (
	"time"

	"github.com/silvercord/recorder/iam"
)

// State of the menu.
type State int

const (
	// Browsing pages through items.
	Browsing State = iota
	// Selecting holds a picked item awaiting authorization.
	Selecting
	// ConfirmingDelete awaits the final confirm on an authorized pick.
	ConfirmingDelete
	// Expired is terminal: every transition is a no-op and controls are
	// disabled. Reached from any state by inactivity, never by error.
	Expired
)

// PerPage is the fixed page size of all quote menus.
const PerPage = 5

const (
	browseTimeout  = 60 * time.Second
	confirmTimeout = 30 * time.Second
)

// Item is one selectable row.
type Item struct {
	ID             int64
	Content        string
	AddedTimestamp int64
	AdderUserID    string
	Uses           int64
}

// Menu is a page-indexed view over items with an optional
// select → authorize → confirm → delete flow.
type Menu struct {
	items    []Item
	page     int
	state    State
	selected int
	deadline time.Time
	now      func() time.Time
}

// New builds a menu in Browsing state with the browse deadline armed.
func New(items []Item) *Menu {
	return NewWithClock(items, time.Now)
}

// NewWithClock is New with an injected clock, for deterministic expiry in
// tests.
func NewWithClock(items []Item, now func() time.Time) *Menu {
	m := &Menu{items: items, state: Browsing, selected: -1, now: now}
	m.deadline = m.now().Add(browseTimeout)
	return m
}

// checkExpiry flips to Expired when the deadline has passed. Returns true
// when the menu is (now) expired.
func (m *Menu) checkExpiry() bool {
	if m.state == Expired {
		return true
	}
	if !m.now().Before(m.deadline) {
		m.state = Expired
		return true
	}
	return false
}

func (m *Menu) touchBrowse() { m.deadline = m.now().Add(browseTimeout) }

// State reports the current state, accounting for a lapsed deadline.
func (m *Menu) State() State {
	m.checkExpiry()
	return m.state
}

func (m *Menu) Page() int { return m.page }

// TotalPages is never below 1, even for an empty item set.
func (m *Menu) TotalPages() int {
	n := (len(m.items) + PerPage - 1) / PerPage
	if n < 1 {
		n = 1
	}
	return n
}

func (m *Menu) Len() int { return len(m.items) }

// PageItems returns the items visible on the current page.
func (m *Menu) PageItems() []Item {
	start := m.page * PerPage
	if start >= len(m.items) {
		return nil
	}
	end := start + PerPage
	if end > len(m.items) {
		end = len(m.items)
	}
	return m.items[start:end]
}

func (m *Menu) HasPrev() bool { return m.page > 0 }
func (m *Menu) HasNext() bool { return m.page < m.TotalPages()-1 }

// Next advances one page. Returns false (no-op) at the last page, when
// expired, or outside Browsing.
func (m *Menu) Next() bool {
	if m.checkExpiry() || m.state != Browsing || !m.HasNext() {
		return false
	}
	m.page++
	m.touchBrowse()
	return true
}

// Prev retreats one page with the same no-op rules as Next.
func (m *Menu) Prev() bool {
	if m.checkExpiry() || m.state != Browsing || !m.HasPrev() {
		return false
	}
	m.page--
	m.touchBrowse()
	return true
}

// Select picks the n-th item (0-based) of the current page and moves to
// Selecting. Returns the item and true on success.
func (m *Menu) Select(n int) (Item, bool) {
	if m.checkExpiry() || m.state != Browsing {
		return Item{}, false
	}
	page := m.PageItems()
	if n < 0 || n >= len(page) {
		return Item{}, false
	}
	m.selected = m.page*PerPage + n
	m.state = Selecting
	m.touchBrowse()
	return page[n], true
}

// Selected returns the currently selected item while in Selecting or
// ConfirmingDelete.
func (m *Menu) Selected() (Item, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return Item{}, false
	}
	return m.items[m.selected], true
}

// Authorize applies the delete authorization decision to the selected item.
// Allowed moves to ConfirmingDelete and arms the shorter confirm deadline;
// Denied drops back to Browsing. Returns the decision outcome for rendering.
func (m *Menu) Authorize(d iam.Decision) bool {
	if m.checkExpiry() || m.state != Selecting {
		return false
	}
	if !d.Allowed {
		m.selected = -1
		m.state = Browsing
		m.touchBrowse()
		return false
	}
	m.state = ConfirmingDelete
	m.deadline = m.now().Add(confirmTimeout)
	return true
}

// Cancel abandons a selection or confirmation and returns to Browsing.
func (m *Menu) Cancel() {
	if m.checkExpiry() {
		return
	}
	m.selected = -1
	m.state = Browsing
	m.touchBrowse()
}

// Delete removes the confirmed item, re-clamps the page to the new last
// valid page, and returns to Browsing. The caller performs the store delete;
// this only mutates view state.
func (m *Menu) Delete() (Item, bool) {
	if m.checkExpiry() || m.state != ConfirmingDelete {
		return Item{}, false
	}
	it, ok := m.Selected()
	if !ok {
		m.state = Browsing
		return Item{}, false
	}
	m.items = append(m.items[:m.selected], m.items[m.selected+1:]...)
	m.selected = -1
	if m.page > m.TotalPages()-1 {
		m.page = m.TotalPages() - 1
	}
	m.state = Browsing
	m.touchBrowse()
	return it, true
}
