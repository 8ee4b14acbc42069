package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaiosophy/content-notifier/internal/config"
	"github.com/gaiosophy/content-notifier/internal/domain"
)

const webhookProviderName = "webhook"

// webhookResponse is the optional body returned by the webhook endpoint
type webhookResponse struct {
	MessageID string `json:"messageId"`
}

// WebhookTransport implements domain.Transport by posting the request as
// JSON. It stands in for FCM in local and staging environments.
type WebhookTransport struct {
	client  *http.Client
	baseURL string
}

// NewWebhookTransport creates a new WebhookTransport
func NewWebhookTransport(cfg config.WebhookConfig) *WebhookTransport {
	return &WebhookTransport{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.URL,
	}
}

func (p *WebhookTransport) Name() string {
	return webhookProviderName
}

// Send posts the notification request to the webhook
func (p *WebhookTransport) Send(ctx context.Context, req *domain.NotificationRequest) (*domain.Receipt, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, domain.NewProviderError(webhookProviderName, 0, fmt.Sprintf("request failed: %v", err), true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, domain.NewProviderError(webhookProviderName, resp.StatusCode, string(respBody), retryable)
	}

	receipt := &domain.Receipt{Timestamp: time.Now().UTC()}

	var parsed webhookResponse
	if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.MessageID != "" {
		receipt.MessageID = parsed.MessageID
	} else {
		// Endpoints that don't answer with an id still get a traceable one
		receipt.MessageID = fmt.Sprintf("webhook-%d", time.Now().UnixNano())
	}

	return receipt, nil
}
