package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaiosophy/content-notifier/internal/config"
	"github.com/gaiosophy/content-notifier/internal/domain"
)

func TestWebhookTransport_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("posts request and uses returned id", func(t *testing.T) {
		var got domain.NotificationRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"messageId":"wh-1"}`))
		}))
		defer server.Close()

		transport := NewWebhookTransport(config.WebhookConfig{URL: server.URL, Timeout: time.Second})
		receipt, err := transport.Send(ctx, publishedRequest(t))

		require.NoError(t, err)
		assert.Equal(t, "wh-1", receipt.MessageID)
		assert.Equal(t, "new-content", got.Topic)
		assert.Equal(t, "New Plant Ally: Elderflower", got.Title)
		assert.Equal(t, "gaiosophy_content_updates", got.Android.ChannelID)
	})

	t.Run("generates id when body is not json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}))
		defer server.Close()

		transport := NewWebhookTransport(config.WebhookConfig{URL: server.URL, Timeout: time.Second})
		receipt, err := transport.Send(ctx, publishedRequest(t))

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(receipt.MessageID, "webhook-"))
	})

	t.Run("server errors are retryable provider errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		transport := NewWebhookTransport(config.WebhookConfig{URL: server.URL, Timeout: time.Second})
		_, err := transport.Send(ctx, publishedRequest(t))

		var providerErr domain.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.Equal(t, http.StatusServiceUnavailable, providerErr.StatusCode)
		assert.True(t, providerErr.Retryable)
	})

	t.Run("client errors are not retryable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad", http.StatusBadRequest)
		}))
		defer server.Close()

		transport := NewWebhookTransport(config.WebhookConfig{URL: server.URL, Timeout: time.Second})
		_, err := transport.Send(ctx, publishedRequest(t))

		var providerErr domain.ProviderError
		require.ErrorAs(t, err, &providerErr)
		assert.False(t, providerErr.Retryable)
	})
}
