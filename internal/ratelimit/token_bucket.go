package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/storage"
)

type TokenBucketLimiter struct {
	redis      *storage.RedisClient
	capacity   int
	refillRate float64 // tokens per second
}

type bucketState struct {
	Tokens     float64   `json:"tokens"`
	LastRefill time.Time `json:"last_refill"`
}

func NewTokenBucket(redis *storage.RedisClient, capacity int, refillRate float64) *TokenBucketLimiter {
	if refillRate <= 0 {
		refillRate = 1
	}
	return &TokenBucketLimiter{
		redis:      redis,
		capacity:   capacity,
		refillRate: refillRate,
	}
}

func (t *TokenBucketLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := fmt.Sprintf("calc:ratelimit:bucket:%s", key)
	now := time.Now()

	state := bucketState{Tokens: float64(t.capacity), LastRefill: now}
	data, err := t.redis.Get(ctx, redisKey)
	switch {
	case err == redis.Nil:
		// first request for this key
	case err != nil:
		return Decision{}, err
	default:
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			return Decision{}, fmt.Errorf("corrupt bucket state for %s: %w", key, err)
		}
	}

	elapsed := now.Sub(state.LastRefill).Seconds()
	state.Tokens = math.Min(state.Tokens+elapsed*t.refillRate, float64(t.capacity))
	state.LastRefill = now

	allowed := state.Tokens >= 1
	if allowed {
		state.Tokens--
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return Decision{}, err
	}
	if err := t.redis.Set(ctx, redisKey, stateJSON, t.Window()+time.Minute); err != nil {
		return Decision{}, err
	}

	secondsToFull := (float64(t.capacity) - state.Tokens) / t.refillRate
	return Decision{
		Allowed:   allowed,
		Limit:     t.capacity,
		Remaining: int(state.Tokens),
		ResetAt:   now.Add(time.Duration(secondsToFull * float64(time.Second))),
	}, nil
}

func (t *TokenBucketLimiter) Limit() int {
	return t.capacity
}

// Time to refill an empty bucket
func (t *TokenBucketLimiter) Window() time.Duration {
	return time.Duration(float64(t.capacity) / t.refillRate * float64(time.Second))
}
