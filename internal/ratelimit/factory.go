package ratelimit

import (
	"time"

	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/storage"
)

const (
	FixedWindow   = "fixed_window"
	SlidingWindow = "sliding_window"
	TokenBucket   = "token_bucket"
)

// NewLimiter picks a redis-backed algorithm, or the in-process limiter
// when redis is nil.
func NewLimiter(redis *storage.RedisClient, algorithm string, limit int, window time.Duration) Limiter {
	if redis == nil {
		return NewLocal(limit, window)
	}

	switch algorithm {
	case TokenBucket:
		refillRate := float64(limit) / window.Seconds()
		return NewTokenBucket(redis, limit, refillRate)
	case SlidingWindow:
		return NewSlidingWindow(redis, limit, window)
	default:
		return NewFixedWindow(redis, limit, window)
	}
}
