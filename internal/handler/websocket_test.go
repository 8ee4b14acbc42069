package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

func record(contentID string, kind domain.ContentKind, outcome domain.Outcome) *domain.DispatchRecord {
	event := domain.NewDocumentEvent(domain.EventCreated, domain.SourceFirestore, "content", contentID, nil)
	rec := domain.NewDispatchRecord(event, kind)
	rec.Outcome = outcome
	return rec
}

func TestClientFilter_Matches(t *testing.T) {
	rec := record("elder-1", domain.KindPlantAlly, domain.OutcomeSent)

	tests := []struct {
		name   string
		filter ClientFilter
		want   bool
	}{
		{"empty filter", ClientFilter{}, true},
		{"kind match", ClientFilter{Kinds: []domain.ContentKind{domain.KindPlantAlly}}, true},
		{"kind mismatch", ClientFilter{Kinds: []domain.ContentKind{domain.KindRecipe}}, false},
		{"outcome match", ClientFilter{Outcomes: []domain.Outcome{domain.OutcomeFailed, domain.OutcomeSent}}, true},
		{"content id mismatch", ClientFilter{ContentIDs: []string{"other"}}, false},
		{
			"all dimensions must match",
			ClientFilter{Kinds: []domain.ContentKind{domain.KindPlantAlly}, Outcomes: []domain.Outcome{domain.OutcomeSkipped}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(rec))
		})
	}
}

func TestWebSocketHub_BroadcastsFilteredDispatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewWebSocketHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(NewWebSocketHandler(hub).HandleWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(SubscribeMessage{
		Action: "subscribe",
		Filter: ClientFilter{Outcomes: []domain.Outcome{domain.OutcomeFailed}},
	}))

	// Give the read pump time to apply the filter
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastDispatch(record("r-1", domain.KindRecipe, domain.OutcomeSent))
	hub.BroadcastDispatch(record("r-2", domain.KindRecipe, domain.OutcomeFailed))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var update DispatchUpdate
	require.NoError(t, json.Unmarshal(msg, &update))
	assert.Equal(t, "dispatch", update.Type)
	assert.Equal(t, "r-2", update.Dispatch.ContentID)
}
