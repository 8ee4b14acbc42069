// Package trigger turns document writes observed on external systems into
// domain.DocumentEvent values and hands them to the event queue.
package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

// Sink receives events produced by a trigger
type Sink interface {
	Enqueue(ctx context.Context, event *domain.DocumentEvent) error
}

// EventRecorder counts received events
type EventRecorder interface {
	RecordTriggerEvent(source domain.EventSource, eventType domain.EventType)
}

// normalizeFields converts store-specific values into JSON-safe ones so
// events survive the trip through the queue
func normalizeFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int, int32, int64, float32, float64:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case []byte:
		return string(val)
	case map[string]any:
		return normalizeFields(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return fmt.Sprint(val)
	}
}
