package ratelimit

import (
	"context"
	"sync"
	"time"
)

// entry tracks one client's count inside the current window.
type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window limiter backed by an in-process map.
// It is safe for concurrent use but scoped to a single process; deploy
// the Redis store when running multiple instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	max           int
	window        time.Duration
	sweepInterval time.Duration

	done chan struct{}
	wg   sync.WaitGroup

	now func() time.Time
}

// NewMemory creates a MemoryLimiter. Call Start to run the background
// sweep and Stop during shutdown.
func NewMemory(max int, window, sweepInterval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries:       make(map[string]*entry),
		max:           max,
		window:        window,
		sweepInterval: sweepInterval,
		done:          make(chan struct{}),
		now:           time.Now,
	}
}

// Allow checks and increments the count for key.
// A max of 0 disables limiting: no entry is created.
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	if l.max <= 0 {
		return &Result{Allowed: true}, nil
	}

	now := l.now()

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok || !e.resetAt.After(now) {
		// First request in a window, or the previous window expired.
		e = &entry{count: 1, resetAt: now.Add(l.window)}
		l.entries[key] = e
	} else {
		e.count++
	}
	count := e.count
	resetAt := e.resetAt
	l.mu.Unlock()

	remaining := int64(l.max - count)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   count <= l.max,
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}

	if !result.Allowed {
		result.RetryAfter = ceilSeconds(resetAt.Sub(now))
	}

	return result, nil
}

// SweepExpired deletes entries whose window has already expired and
// returns how many were removed. Runs on a fixed schedule independent of
// request traffic, bounding memory growth.
func (l *MemoryLimiter) SweepExpired() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if !e.resetAt.After(now) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Start launches the background sweep loop.
func (l *MemoryLimiter) Start() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ticker := time.NewTicker(l.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.SweepExpired()
			case <-l.done:
				return
			}
		}
	}()
}

// Stop terminates the background sweep loop.
func (l *MemoryLimiter) Stop(ctx context.Context) error {
	close(l.done)
	l.wg.Wait()
	return nil
}

// len reports the current number of tracked entries.
func (l *MemoryLimiter) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// ceilSeconds rounds d up to whole seconds.
func ceilSeconds(d time.Duration) time.Duration {
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return secs * time.Second
}
