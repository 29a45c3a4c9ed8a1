package stream

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// KeyedLimiter serializes work per key: at most one in-flight capture
// workflow per community, later callers wait rather than fail. Semaphores are
// created on first use and kept for the process lifetime; the key space is
// the set of guilds the bot is in, which is small.
type KeyedLimiter struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func NewKeyedLimiter() *KeyedLimiter {
	return &KeyedLimiter{sems: make(map[string]*semaphore.Weighted)}
}

func (l *KeyedLimiter) sem(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[key]
	if !ok {
		s = semaphore.NewWeighted(1)
		l.sems[key] = s
	}
	return s
}

// Acquire blocks until the key's slot is free or ctx is canceled.
func (l *KeyedLimiter) Acquire(ctx context.Context, key string) error {
	return l.sem(key).Acquire(ctx, 1)
}

// TryAcquire grabs the key's slot without waiting.
func (l *KeyedLimiter) TryAcquire(key string) bool {
	return l.sem(key).TryAcquire(1)
}

// Release frees the key's slot. Must pair with a successful Acquire/TryAcquire.
func (l *KeyedLimiter) Release(key string) {
	l.sem(key).Release(1)
}
