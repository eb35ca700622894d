package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/storage"
)

type FixedWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
}

func NewFixedWindow(redis *storage.RedisClient, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
	}
}

func (f *FixedWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowSeconds := int64(f.window.Seconds())
	currentWindow := time.Now().Unix() / windowSeconds
	redisKey := fmt.Sprintf("calc:ratelimit:fixed:%s:%d", key, currentWindow)

	count, err := f.redis.Incr(ctx, redisKey)
	if err != nil {
		return Decision{}, err
	}

	// First hit of the window owns the expiry
	if count == 1 {
		if err := f.redis.Expire(ctx, redisKey, f.window); err != nil {
			return Decision{}, err
		}
	}

	remaining := f.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(f.limit),
		Limit:     f.limit,
		Remaining: remaining,
		ResetAt:   time.Unix((currentWindow+1)*windowSeconds, 0),
	}, nil
}

func (f *FixedWindowLimiter) Limit() int {
	return f.limit
}

func (f *FixedWindowLimiter) Window() time.Duration {
	return f.window
}
