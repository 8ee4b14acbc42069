package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitKeyPrefix = "content-notifier:ratelimit:"
	rateLimitWindow    = time.Second
)

// RateLimiter implements domain.RateLimiter with a sliding window per key
type RateLimiter struct {
	client      *Client
	limitPerSec int
}

// NewRateLimiter creates a new RateLimiter. A limit of zero or less disables limiting.
func NewRateLimiter(client *Client, limitPerSec int) *RateLimiter {
	return &RateLimiter{
		client:      client,
		limitPerSec: limitPerSec,
	}
}

func rateLimitKey(key string) string {
	return rateLimitKeyPrefix + key
}

// Allow checks if a request is allowed under the rate limit
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.limitPerSec <= 0 {
		return true, nil
	}

	redisKey := rateLimitKey(key)
	now := time.Now()
	windowStart := now.Add(-rateLimitWindow)

	pipe := r.client.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if countCmd.Val() >= int64(r.limitPerSec) {
		return false, nil
	}

	// Members must be unique even when two workers record in the same nanosecond
	pipe = r.client.client.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	pipe.Expire(ctx, redisKey, 2*rateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	return true, nil
}

// Wait blocks until a request is allowed
func (r *RateLimiter) Wait(ctx context.Context, key string) error {
	allowed, err := r.Allow(ctx, key)
	if err != nil || allowed {
		return err
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			allowed, err := r.Allow(ctx, key)
			if err != nil {
				return err
			}
			if allowed {
				return nil
			}
		}
	}
}

// CurrentRate returns the number of sends in the current window
func (r *RateLimiter) CurrentRate(ctx context.Context, key string) (int64, error) {
	redisKey := rateLimitKey(key)
	windowStart := time.Now().Add(-rateLimitWindow)

	pipe := r.client.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to get current rate: %w", err)
	}

	return countCmd.Val(), nil
}
