// Package ratelimit implements fixed-window request limiting.
//
// The limiter counts requests per client key inside fixed time windows:
// the first request in a window creates an entry with count 1 and a reset
// deadline, later requests increment the count, and the entry is reset
// once the deadline passes. Requests beyond the configured maximum are
// rejected until the window resets.
//
// Two stores implement the same interface: an in-process map with a
// periodic sweep (single instance) and a Redis-backed counter for
// multi-instance deployments.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter checks and increments the request count for a client key.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}
