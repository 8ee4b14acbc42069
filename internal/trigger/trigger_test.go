package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

func TestSnapshotTracker(t *testing.T) {
	tracker := newSnapshotTracker("content_recipes")

	seed := tracker.apply([]docChange{
		{kind: changeAdded, id: "r-1", fields: map[string]any{"status": "published"}},
		{kind: changeAdded, id: "r-2", fields: map[string]any{"status": "draft"}},
	})
	assert.Empty(t, seed, "existing documents never produce events")
	assert.True(t, tracker.seeded)

	events := tracker.apply([]docChange{
		{kind: changeAdded, id: "r-3", fields: map[string]any{"status": "published"}},
		{kind: changeModified, id: "r-2", fields: map[string]any{"status": "published"}},
		{kind: changeRemoved, id: "r-1"},
	})
	require.Len(t, events, 2)

	created := events[0]
	assert.Equal(t, domain.EventCreated, created.Type)
	assert.Equal(t, domain.SourceFirestore, created.Source)
	assert.Equal(t, "content_recipes", created.Collection)
	assert.Equal(t, "r-3", created.DocumentID)
	assert.Nil(t, created.Before)

	updated := events[1]
	assert.Equal(t, domain.EventUpdated, updated.Type)
	assert.Equal(t, "r-2", updated.DocumentID)
	assert.Equal(t, map[string]any{"status": "draft"}, updated.Before)
	assert.Equal(t, map[string]any{"status": "published"}, updated.Fields)

	assert.NotContains(t, tracker.docs, "r-1")
	assert.Equal(t, map[string]any{"status": "published"}, tracker.docs["r-2"])
}

func TestSnapshotTracker_ModifiedUnknownDocument(t *testing.T) {
	tracker := newSnapshotTracker("content")
	tracker.apply(nil)

	events := tracker.apply([]docChange{
		{kind: changeModified, id: "x", fields: map[string]any{"status": "published"}},
	})

	require.Len(t, events, 1)
	assert.Nil(t, events[0].Before)
	assert.Nil(t, events[0].Previous())
}

func TestNormalizeFields(t *testing.T) {
	ts := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	got := normalizeFields(map[string]any{
		"title":  "Nettle",
		"count":  int64(3),
		"when":   ts,
		"nested": map[string]any{"at": ts},
		"list":   []any{"a", ts},
		"nil":    nil,
		"other":  struct{ A int }{A: 1},
	})

	assert.Equal(t, "Nettle", got["title"])
	assert.Equal(t, int64(3), got["count"])
	assert.Equal(t, "2024-03-20T12:00:00Z", got["when"])
	assert.Equal(t, map[string]any{"at": "2024-03-20T12:00:00Z"}, got["nested"])
	assert.Equal(t, []any{"a", "2024-03-20T12:00:00Z"}, got["list"])
	assert.Nil(t, got["nil"])
	assert.Equal(t, "{1}", got["other"])

	assert.Nil(t, normalizeFields(nil))
}

func TestDecodeNATSMessage(t *testing.T) {
	t.Run("valid created event", func(t *testing.T) {
		event, err := DecodeNATSMessage([]byte(`{
			"id": "evt-1",
			"type": "created",
			"collection": "content",
			"document_id": "s-1",
			"fields": {"status": "published", "type": "seasonal"},
			"occurred_at": "2024-03-20T12:00:00Z"
		}`))

		require.NoError(t, err)
		assert.Equal(t, "evt-1", event.ID)
		assert.Equal(t, domain.EventCreated, event.Type)
		assert.Equal(t, domain.SourceNATS, event.Source)
		assert.Equal(t, "s-1", event.DocumentID)
		assert.Equal(t, "published", event.Fields["status"])
		assert.Equal(t, time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC), event.OccurredAt)
	})

	t.Run("update carries previous fields", func(t *testing.T) {
		event, err := DecodeNATSMessage([]byte(`{
			"type": "updated",
			"collection": "content_recipes",
			"document_id": "r-1",
			"before": {"status": "draft"},
			"fields": {"status": "published"}
		}`))

		require.NoError(t, err)
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, "draft", event.Before["status"])
	})

	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"malformed json", `{`, "payload"},
		{"bad type", `{"type":"deleted","collection":"c","document_id":"d"}`, "type"},
		{"missing collection", `{"type":"created","document_id":"d"}`, "collection"},
		{"missing document id", `{"type":"created","collection":"c"}`, "document_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeNATSMessage([]byte(tt.payload))

			var validationErr domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
