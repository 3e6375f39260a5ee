package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter is a fixed window counter shared across instances through redis
type Limiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewLimiter creates a limiter allowing limit hits per window for each key
func NewLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *Limiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &Limiter{redis: client, limit: limit, window: window, prefix: prefix}
}

// Result of one Allow call
type Result struct {
	Allowed   bool
	Remaining int
	RetryIn   time.Duration
}

// Allow counts a hit for key. On redis errors the hit is allowed and the
// error returned so the caller can log it.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	count64, err := l.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{Allowed: true, Remaining: l.limit}, fmt.Errorf("redis error: %w", err)
	}
	if count64 == 1 {
		if err := l.redis.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Result{Allowed: true, Remaining: l.limit}, fmt.Errorf("redis error: %w", err)
		}
	}

	count := int(count64)
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	res := Result{Allowed: count <= l.limit, Remaining: remaining}
	if !res.Allowed {
		res.RetryIn, _ = l.redis.TTL(ctx, redisKey).Result()
		if res.RetryIn <= 0 {
			res.RetryIn = l.window
		}
	}
	return res, nil
}

// Reset clears the counter of key
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, fmt.Sprintf("%s:%s", l.prefix, key)).Err()
}

// NewClient parses a redis URL and checks connectivity
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
