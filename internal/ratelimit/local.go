package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter is a per-key token bucket held in process memory. It serves
// single-instance deployments that run without redis.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localEntry
	limit    int
	window   time.Duration
	every    rate.Limit
	now      func() time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocal(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limiters: make(map[string]*localEntry),
		limit:    limit,
		window:   window,
		every:    rate.Limit(float64(limit) / window.Seconds()),
		now:      time.Now,
	}
}

func (l *LocalLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.every, l.limit)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	tokens := entry.limiter.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	resetAt := now
	if missing := float64(l.limit) - tokens; missing > 0 {
		resetAt = now.Add(time.Duration(missing / float64(l.every) * float64(time.Second)))
	}

	return Decision{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// evict drops keys idle for longer than a full window; their bucket is full again.
func (l *LocalLimiter) evict(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.window {
			delete(l.limiters, key)
		}
	}
}

func (l *LocalLimiter) Limit() int {
	return l.limit
}

func (l *LocalLimiter) Window() time.Duration {
	return l.window
}
