package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/storage"
)

// SlidingWindowLimiter keeps one sorted-set member per request, scored by
// its timestamp in nanoseconds.
type SlidingWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
}

func NewSlidingWindow(redis *storage.RedisClient, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
	}
}

func (s *SlidingWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := fmt.Sprintf("calc:ratelimit:sliding:%s", key)
	now := time.Now()
	windowStart := now.Add(-s.window)

	pipe := s.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}
	count := int(countCmd.Val())

	d := Decision{Limit: s.limit, ResetAt: now.Add(s.window)}
	if count < s.limit {
		err := s.redis.ZAdd(ctx, redisKey, redis.Z{
			Score:  float64(now.UnixNano()),
			Member: strconv.FormatInt(now.UnixNano(), 10),
		})
		if err != nil {
			return Decision{}, err
		}
		if err := s.redis.Expire(ctx, redisKey, s.window); err != nil {
			return Decision{}, err
		}
		count++
		d.Allowed = true
	}
	d.Remaining = s.limit - count
	if d.Remaining < 0 {
		d.Remaining = 0
	}

	// Window frees a slot when the oldest request ages out
	oldest, err := s.redis.ZRange(ctx, redisKey, 0, 0)
	if err == nil && len(oldest) > 0 {
		if nanos, perr := strconv.ParseInt(oldest[0], 10, 64); perr == nil {
			d.ResetAt = time.Unix(0, nanos).Add(s.window)
		}
	}

	return d, nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

func (s *SlidingWindowLimiter) Window() time.Duration {
	return s.window
}
