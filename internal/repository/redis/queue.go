package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

const eventQueueKey = "content-notifier:events"

// Queue implements domain.EventQueue as a Redis list (LPUSH / BRPOP)
type Queue struct {
	client *Client
	key    string
}

// NewQueue creates a new Queue
func NewQueue(client *Client) *Queue {
	return &Queue{client: client, key: eventQueueKey}
}

// Enqueue adds an event to the head of the list
func (q *Queue) Enqueue(ctx context.Context, event *domain.DocumentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal document event: %w", err)
	}

	if err := q.client.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue document event: %w", err)
	}

	return nil
}

// Dequeue pops the oldest event, waiting up to timeout
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.DocumentEvent, error) {
	result, err := q.client.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to dequeue document event: %w", err)
	}

	// BRPOP answers [key, value]
	if len(result) != 2 {
		return nil, nil
	}

	var event domain.DocumentEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document event: %w", err)
	}

	return &event, nil
}

// Depth returns the number of pending events
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	n, err := q.client.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return n, nil
}
