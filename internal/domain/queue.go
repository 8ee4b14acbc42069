package domain

import (
	"context"
	"time"
)

// EventQueue buffers document events between streaming trigger adapters and workers
type EventQueue interface {
	// Enqueue appends an event to the queue
	Enqueue(ctx context.Context, event *DocumentEvent) error

	// Dequeue blocks up to timeout for the next event. It returns nil when
	// the queue stayed empty.
	Dequeue(ctx context.Context, timeout time.Duration) (*DocumentEvent, error)

	// Depth returns the number of pending events
	Depth(ctx context.Context) (int64, error)
}

// RateLimiter throttles sends per key
type RateLimiter interface {
	// Allow checks if a request is allowed under the rate limit
	Allow(ctx context.Context, key string) (bool, error)

	// Wait blocks until a request is allowed
	Wait(ctx context.Context, key string) error

	// CurrentRate returns the number of requests in the current window
	CurrentRate(ctx context.Context, key string) (int64, error)
}

// DedupGuard prevents the same content from being announced twice
type DedupGuard interface {
	// Acquire claims key. It returns false when the key is already held.
	Acquire(ctx context.Context, key string) (bool, error)

	// Release frees key so a later event may claim it again
	Release(ctx context.Context, key string) error
}
