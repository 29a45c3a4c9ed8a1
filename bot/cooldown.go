package bot

import (
	"sync"
	"time"
)

// cooldownTracker enforces a per-user minimum interval between uses of a
// command. Entries are pruned opportunistically on each check.
type cooldownTracker struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

func newCooldownTracker(interval time.Duration) *cooldownTracker {
	return &cooldownTracker{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether the user may run the command now, and if so records
// the use. Returns the remaining wait otherwise.
func (c *cooldownTracker) Allow(userID string) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if at, ok := c.last[userID]; ok {
		if wait := c.interval - now.Sub(at); wait > 0 {
			return false, wait
		}
	}
	for id, at := range c.last {
		if now.Sub(at) > c.interval {
			delete(c.last, id)
		}
	}
	c.last[userID] = now
	return true, 0
}
