package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitKeyPrefix namespaces limiter keys in Redis.
const rateLimitKeyPrefix = "ratelimit:ip:"

// fixedWindowScript atomically increments the window counter and pins the
// key's expiry to the window boundary.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_ms = tonumber(ARGV[1])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('PEXPIRE', key, window_ms)
	end

	local ttl = redis.call('PTTL', key)
	if ttl < 0 then
		redis.call('PEXPIRE', key, window_ms)
		ttl = window_ms
	end

	return {count, ttl}
`)

// RedisLimiter is a fixed-window limiter backed by a shared Redis
// counter. Counters are shared across instances, so it is safe for
// horizontally scaled deployments. Expiry replaces the in-memory store's
// background sweep.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewRedis creates a RedisLimiter from a Redis URL.
func NewRedis(ctx context.Context, redisURL string, max int, window time.Duration) (*RedisLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisLimiter{
		client: client,
		max:    max,
		window: window,
	}, nil
}

// Allow checks and increments the count for key.
// A max of 0 disables limiting: no key is written.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	if l.max <= 0 {
		return &Result{Allowed: true}, nil
	}

	values, err := fixedWindowScript.Run(ctx, l.client,
		[]string{rateLimitKeyPrefix + key},
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	count := values[0]
	ttl := time.Duration(values[1]) * time.Millisecond

	remaining := int64(l.max) - count
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   count <= int64(l.max),
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}

	if !result.Allowed {
		result.RetryAfter = ceilSeconds(ttl)
	}

	return result, nil
}

// Ping checks Redis connectivity.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
