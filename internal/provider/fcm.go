package provider

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

const fcmProviderName = "fcm"

// MessagingClient is the subset of *messaging.Client the transport uses
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendDryRun(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMTransport implements domain.Transport using Firebase Cloud Messaging
type FCMTransport struct {
	client MessagingClient
	dryRun bool
}

// NewFCMTransport creates a new FCMTransport. With dryRun set, FCM validates
// the message without delivering it.
func NewFCMTransport(client MessagingClient, dryRun bool) *FCMTransport {
	return &FCMTransport{
		client: client,
		dryRun: dryRun,
	}
}

func (p *FCMTransport) Name() string {
	return fcmProviderName
}

// Send sends the request to its topic
func (p *FCMTransport) Send(ctx context.Context, req *domain.NotificationRequest) (*domain.Receipt, error) {
	msg := ToMessage(req)

	var (
		messageID string
		err       error
	)
	if p.dryRun {
		messageID, err = p.client.SendDryRun(ctx, msg)
	} else {
		messageID, err = p.client.Send(ctx, msg)
	}
	if err != nil {
		return nil, classifyFCMError(err)
	}

	return &domain.Receipt{
		MessageID: messageID,
		Timestamp: time.Now().UTC(),
	}, nil
}

// ToMessage converts a notification request into an FCM topic message
func ToMessage(req *domain.NotificationRequest) *messaging.Message {
	data := make(map[string]string, len(req.Data))
	for k, v := range req.Data {
		data[k] = v
	}
	badge := req.APNS.Badge

	return &messaging.Message{
		Topic: req.Topic,
		Notification: &messaging.Notification{
			Title: req.Title,
			Body:  req.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: string(req.Android.Priority),
			Notification: &messaging.AndroidNotification{
				ChannelID:             req.Android.ChannelID,
				Priority:              androidNotificationPriority(req.Android.Priority),
				DefaultSound:          req.Android.DefaultSound,
				DefaultVibrateTimings: req.Android.DefaultVibrateTimings,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound:            req.APNS.Sound,
					Badge:            &badge,
					ContentAvailable: req.APNS.ContentAvailable,
				},
			},
		},
	}
}

func androidNotificationPriority(p domain.AndroidPriority) messaging.AndroidNotificationPriority {
	if p == domain.AndroidPriorityHigh {
		return messaging.PriorityHigh
	}
	return messaging.PriorityDefault
}

// classifyFCMError maps SDK errors onto ProviderError. Availability and
// quota failures are marked retryable for the hosting framework.
func classifyFCMError(err error) error {
	switch {
	case messaging.IsUnavailable(err), messaging.IsInternal(err):
		return domain.NewProviderError(fcmProviderName, 503, err.Error(), true)
	case messaging.IsQuotaExceeded(err):
		return domain.NewProviderError(fcmProviderName, 429, err.Error(), true)
	case messaging.IsInvalidArgument(err):
		return domain.NewProviderError(fcmProviderName, 400, err.Error(), false)
	case messaging.IsThirdPartyAuthError(err), messaging.IsSenderIDMismatch(err):
		return domain.NewProviderError(fcmProviderName, 403, err.Error(), false)
	}
	return fmt.Errorf("fcm send: %w", domain.NewProviderError(fcmProviderName, 0, err.Error(), false))
}
