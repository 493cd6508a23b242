// Package ratelimit throttles the anonymous access-code lookup route. The
// code space is large but finite, so unthrottled guessing must not be free.
//
// Two implementations share one interface: a Redis fixed-window counter for
// multi-instance deployments, and an in-process fallback used when no Redis
// address is configured (mirroring how the job queue degrades without
// postgres).
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLimited is returned when the caller exceeded the window budget.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter admits or rejects one attempt for a key.
type Limiter interface {
	// Allow consumes one attempt for key. Returns ErrLimited when the
	// budget for the current window is spent.
	Allow(ctx context.Context, key string) error
}

// RedisLimiter is a fixed-window counter stored in Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing limit attempts per window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow consumes one attempt for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	k := "lookup_limit:" + key
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		// First hit in the window sets the expiry.
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if n > int64(l.limit) {
		return ErrLimited
	}
	return nil
}

// MemoryLimiter is the single-process fallback.
type MemoryLimiter struct {
	mu        sync.Mutex
	counts    map[string]*window
	limit     int
	span      time.Duration
	now       func() time.Time
	lastPrune time.Time
}

type window struct {
	start time.Time
	hits  int
}

// NewMemoryLimiter creates an in-process limiter allowing limit attempts per
// window.
func NewMemoryLimiter(limit int, span time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		counts: make(map[string]*window),
		limit:  limit,
		span:   span,
		now:    time.Now,
	}
}

// Allow consumes one attempt for key.
func (l *MemoryLimiter) Allow(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) >= l.span {
		l.prune(now)
	}
	w, ok := l.counts[key]
	if !ok || now.Sub(w.start) >= l.span {
		l.counts[key] = &window{start: now, hits: 1}
		return nil
	}
	w.hits++
	if w.hits > l.limit {
		return ErrLimited
	}
	return nil
}

// prune drops windows that have already expired. Without it every distinct
// key ever seen would stay in the map, and the lookup route keys on
// client-supplied addresses.
func (l *MemoryLimiter) prune(now time.Time) {
	for k, w := range l.counts {
		if now.Sub(w.start) >= l.span {
			delete(l.counts, k)
		}
	}
	l.lastPrune = now
}

// Tracked reports how many keys currently hold a window. Test hook.
func (l *MemoryLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counts)
}

// SetClock overrides the time source. Test hook.
func (l *MemoryLimiter) SetClock(now func() time.Time) { l.now = now }
