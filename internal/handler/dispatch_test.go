package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaiosophy/content-notifier/internal/domain"
	"github.com/gaiosophy/content-notifier/internal/service"
)

type stubTransport struct {
	err  error
	sent []*domain.NotificationRequest
}

func (t *stubTransport) Name() string { return "stub" }

func (t *stubTransport) Send(ctx context.Context, req *domain.NotificationRequest) (*domain.Receipt, error) {
	if t.err != nil {
		return nil, t.err
	}
	t.sent = append(t.sent, req)
	return &domain.Receipt{MessageID: "projects/demo/messages/1", Timestamp: time.Now()}, nil
}

type memoryRepo struct {
	mu      sync.Mutex
	records []*domain.DispatchRecord
}

func (r *memoryRepo) Create(ctx context.Context, record *domain.DispatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DispatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, filter domain.DispatchFilter) (*domain.DispatchListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.DispatchRecord, 0)
	for _, rec := range r.records {
		if filter.Outcome != nil && rec.Outcome != *filter.Outcome {
			continue
		}
		if filter.Kind != nil && rec.Kind != *filter.Kind {
			continue
		}
		out = append(out, rec)
	}
	return &domain.DispatchListResult{
		Records:    out,
		Total:      int64(len(out)),
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: 1,
	}, nil
}

func (r *memoryRepo) CountByOutcome(ctx context.Context, since time.Time) (map[domain.Outcome]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[domain.Outcome]int64{}
	for _, rec := range r.records {
		counts[rec.Outcome]++
	}
	return counts, nil
}

func newTestRouter(transport *stubTransport, repo *memoryRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewDispatchService(domain.DefaultBindings(), transport, nil, nil, repo, logger, service.Options{
		NotifyOnPublishTransition: true,
	})
	h := NewDispatchHandler(svc)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/events", h.RegisterEventRoutes)
		r.Route("/dispatches", h.RegisterDispatchRoutes)
		r.Post("/decisions/preview", h.Preview)
		r.Get("/kinds", h.Kinds)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestDispatchHandler_Created(t *testing.T) {
	t.Run("published plant ally is sent", func(t *testing.T) {
		transport := &stubTransport{}
		router := newTestRouter(transport, &memoryRepo{})

		rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/events/created", map[string]any{
			"collection":  "content_plant_allies",
			"document_id": "elder-1",
			"fields": map[string]any{
				"status":  "published",
				"title":   "Elderflower",
				"summary": "Cordial season",
			},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, resp["success"])
		data := resp["data"].(map[string]any)
		assert.Equal(t, "sent", data["outcome"])
		assert.Equal(t, "plant", data["kind"])

		require.Len(t, transport.sent, 1)
		assert.Equal(t, "New Plant Ally: Elderflower", transport.sent[0].Title)
		assert.Equal(t, "Cordial season", transport.sent[0].Body)
	})

	t.Run("draft is skipped", func(t *testing.T) {
		transport := &stubTransport{}
		router := newTestRouter(transport, &memoryRepo{})

		rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/events/created", map[string]any{
			"collection":  "content_recipes",
			"document_id": "r-1",
			"fields":      map[string]any{"status": "draft"},
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		data := resp["data"].(map[string]any)
		assert.Equal(t, "skipped", data["outcome"])
		assert.Equal(t, "not_published", data["reason"])
		assert.Empty(t, transport.sent)
	})

	t.Run("delivery failure returns bad gateway", func(t *testing.T) {
		transport := &stubTransport{err: domain.NewProviderError("stub", 503, "unavailable", true)}
		router := newTestRouter(transport, &memoryRepo{})

		rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/events/created", map[string]any{
			"collection":  "content_recipes",
			"document_id": "r-2",
			"fields":      map[string]any{"status": "published"},
		})

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, false, resp["success"])
		errBody := resp["error"].(map[string]any)
		assert.Equal(t, "DELIVERY_FAILED", errBody["code"])
		details := errBody["details"].(map[string]any)
		assert.Equal(t, "r-2", details["content_id"])
		assert.Equal(t, "Recipe", details["kind"])
	})

	t.Run("missing document id is rejected", func(t *testing.T) {
		router := newTestRouter(&stubTransport{}, &memoryRepo{})

		rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/events/created", map[string]any{
			"collection": "content",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp["error"].(map[string]any)["code"])
	})
}

func TestDispatchHandler_Updated(t *testing.T) {
	transport := &stubTransport{}
	router := newTestRouter(transport, &memoryRepo{})

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/events/updated", map[string]any{
		"collection":  "content",
		"document_id": "s-1",
		"before":      map[string]any{"status": "draft", "type": "seasonal"},
		"fields":      map[string]any{"status": "published", "type": "seasonal"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sent", resp["data"].(map[string]any)["outcome"])
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "New Seasonal Wisdom: New wisdom available", transport.sent[0].Title)
}

func TestDispatchHandler_Preview(t *testing.T) {
	transport := &stubTransport{}
	repo := &memoryRepo{}
	router := newTestRouter(transport, repo)

	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/decisions/preview", map[string]any{
		"collection":  "content",
		"document_id": "x",
		"fields":      map[string]any{"status": "published", "type": "recipe", "seasonName": "Imbolc"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]any)
	assert.Equal(t, true, data["send"])
	request := data["request"].(map[string]any)
	assert.Equal(t, "New Recipe: New wisdom available", request["title"])
	assert.Empty(t, transport.sent)
	assert.Empty(t, repo.records)

	rec, resp = doJSON(t, router, http.MethodPost, "/api/v1/decisions/preview", map[string]any{
		"collection":  "users",
		"document_id": "x",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "UNBOUND_COLLECTION", resp["error"].(map[string]any)["code"])
}

func TestDispatchHandler_Dispatches(t *testing.T) {
	repo := &memoryRepo{}
	router := newTestRouter(&stubTransport{}, repo)

	doJSON(t, router, http.MethodPost, "/api/v1/events/created", map[string]any{
		"collection":  "content_recipes",
		"document_id": "r-1",
		"fields":      map[string]any{"status": "published"},
	})
	doJSON(t, router, http.MethodPost, "/api/v1/events/created", map[string]any{
		"collection":  "content_recipes",
		"document_id": "r-2",
		"fields":      map[string]any{"status": "draft"},
	})
	require.Len(t, repo.records, 2)

	t.Run("list filters by outcome", func(t *testing.T) {
		rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/dispatches?outcome=sent", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := resp["data"].(map[string]any)
		assert.EqualValues(t, 1, data["total"])
	})

	t.Run("invalid outcome", func(t *testing.T) {
		rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/dispatches?outcome=lost", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/dispatches/"+repo.records[0].ID.String(), nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "r-1", resp["data"].(map[string]any)["content_id"])
	})

	t.Run("get unknown id", func(t *testing.T) {
		rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/dispatches/"+uuid.New().String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("get malformed id", func(t *testing.T) {
		rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/dispatches/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("summary", func(t *testing.T) {
		rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/dispatches/summary", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		counts := resp["data"].(map[string]any)["counts"].(map[string]any)
		assert.EqualValues(t, 1, counts["sent"])
		assert.EqualValues(t, 1, counts["skipped"])
	})
}

func TestDispatchHandler_Kinds(t *testing.T) {
	router := newTestRouter(&stubTransport{}, &memoryRepo{})

	rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/kinds", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]any)
	assert.Len(t, data["kinds"], 4)
	assert.Len(t, data["bindings"], 4)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"validation", domain.NewValidationError("type", "bad"), http.StatusBadRequest},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"unbound", domain.ErrUnboundCollection, http.StatusUnprocessableEntity},
		{"delivery", &domain.DeliveryError{Kind: domain.KindRecipe, ContentID: "r", Err: errors.New("x")}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
