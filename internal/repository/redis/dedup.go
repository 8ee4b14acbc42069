package redis

import (
	"context"
	"fmt"
	"time"
)

const dedupKeyPrefix = "content-notifier:dedup:"

// DedupGuard implements domain.DedupGuard with SET NX and a TTL
type DedupGuard struct {
	client *Client
	ttl    time.Duration
}

// NewDedupGuard creates a new DedupGuard
func NewDedupGuard(client *Client, ttl time.Duration) *DedupGuard {
	return &DedupGuard{client: client, ttl: ttl}
}

// Acquire claims key for the configured TTL
func (g *DedupGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.client.SetNX(ctx, dedupKeyPrefix+key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire dedup key: %w", err)
	}
	return ok, nil
}

// Release deletes key
func (g *DedupGuard) Release(ctx context.Context, key string) error {
	if err := g.client.client.Del(ctx, dedupKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release dedup key: %w", err)
	}
	return nil
}
