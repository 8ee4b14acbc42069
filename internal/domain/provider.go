package domain

import (
	"context"
	"time"
)

// Receipt is returned by a Transport on successful delivery
type Receipt struct {
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Transport delivers notification requests to the messaging provider
type Transport interface {
	// Name identifies the transport in logs and metrics
	Name() string

	// Send hands the request to the provider
	Send(ctx context.Context, req *NotificationRequest) (*Receipt, error)
}
