package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gaiosophy/content-notifier/internal/domain"
	"github.com/gaiosophy/content-notifier/internal/service"
)

// DispatchHandler handles document event and dispatch log HTTP requests
type DispatchHandler struct {
	service  *service.DispatchService
	validate *validator.Validate
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(service *service.DispatchService) *DispatchHandler {
	return &DispatchHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterEventRoutes registers trigger routes
func (h *DispatchHandler) RegisterEventRoutes(r chi.Router) {
	r.Post("/created", h.Created)
	r.Post("/updated", h.Updated)
}

// RegisterDispatchRoutes registers dispatch log routes
func (h *DispatchHandler) RegisterDispatchRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/summary", h.Summary)
	r.Get("/{id}", h.GetByID)
}

// DocumentEventRequest is a document write delivered over HTTP
// @Description A document write on a watched collection
type DocumentEventRequest struct {
	Collection string         `json:"collection" validate:"required" example:"content_plant_allies"`
	DocumentID string         `json:"document_id" validate:"required" example:"elderflower"`
	Fields     map[string]any `json:"fields"`
	Before     map[string]any `json:"before,omitempty"`
}

// PreviewRequest runs the policy without sending
type PreviewRequest struct {
	DocumentEventRequest
	Type domain.EventType `json:"type" validate:"omitempty,oneof=created updated" example:"created"`
}

// Created handles a document creation
// @Summary Document created
// @Description Run the dispatch policy for a newly created document and send the notification
// @Tags events
// @Accept json
// @Produce json
// @Param event body DocumentEventRequest true "Document event"
// @Success 200 {object} Response{data=domain.DispatchRecord}
// @Failure 400 {object} Response
// @Failure 502 {object} Response
// @Router /api/v1/events/created [post]
func (h *DispatchHandler) Created(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(w, r, domain.EventCreated)
}

// Updated handles a document update
// @Summary Document updated
// @Description Notify when an update moves a document into the published state
// @Tags events
// @Accept json
// @Produce json
// @Param event body DocumentEventRequest true "Document event"
// @Success 200 {object} Response{data=domain.DispatchRecord}
// @Failure 400 {object} Response
// @Failure 502 {object} Response
// @Router /api/v1/events/updated [post]
func (h *DispatchHandler) Updated(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(w, r, domain.EventUpdated)
}

func (h *DispatchHandler) handleEvent(w http.ResponseWriter, r *http.Request, eventType domain.EventType) {
	var req DocumentEventRequest
	if err := DecodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	event := req.toEvent(eventType)

	record, err := h.service.Handle(r.Context(), event)
	if err != nil {
		HandleError(w, err)
		return
	}

	JSON(w, http.StatusOK, record)
}

func (req DocumentEventRequest) toEvent(eventType domain.EventType) *domain.DocumentEvent {
	event := domain.NewDocumentEvent(eventType, domain.SourceHTTP, req.Collection, req.DocumentID, req.Fields)
	event.Before = req.Before
	return event
}

// Preview runs the dispatch policy without side effects
// @Summary Preview decision
// @Description Show what the dispatch policy would do for a document without sending or recording
// @Tags decisions
// @Accept json
// @Produce json
// @Param event body PreviewRequest true "Document event"
// @Success 200 {object} Response{data=domain.Decision}
// @Failure 400 {object} Response
// @Failure 422 {object} Response
// @Router /api/v1/decisions/preview [post]
func (h *DispatchHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := DecodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	eventType := req.Type
	if eventType == "" {
		eventType = domain.EventCreated
	}

	decision, err := h.service.Preview(req.toEvent(eventType))
	if err != nil {
		HandleError(w, err)
		return
	}

	JSON(w, http.StatusOK, decision)
}

// KindInfo describes a content kind
type KindInfo struct {
	Kind  domain.ContentKind `json:"kind"`
	Label string             `json:"label"`
}

// KindsResponse lists kinds and the collections bound to them
type KindsResponse struct {
	Kinds    []KindInfo                 `json:"kinds"`
	Bindings []domain.CollectionBinding `json:"bindings"`
}

// Kinds lists content kinds and collection bindings
// @Summary List content kinds
// @Description List the known content kinds and the collections watched for each
// @Tags decisions
// @Produce json
// @Success 200 {object} Response{data=KindsResponse}
// @Router /api/v1/kinds [get]
func (h *DispatchHandler) Kinds(w http.ResponseWriter, r *http.Request) {
	kinds := make([]KindInfo, 0, len(domain.AllKinds))
	for _, k := range domain.AllKinds {
		kinds = append(kinds, KindInfo{Kind: k, Label: k.Label()})
	}

	JSON(w, http.StatusOK, KindsResponse{
		Kinds:    kinds,
		Bindings: h.service.Bindings(),
	})
}

// GetByID retrieves a dispatch record by ID
// @Summary Get dispatch record
// @Description Get a dispatch record by its ID
// @Tags dispatches
// @Produce json
// @Param id path string true "Dispatch ID"
// @Success 200 {object} Response{data=domain.DispatchRecord}
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /api/v1/dispatches/{id} [get]
func (h *DispatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, http.StatusBadRequest, "INVALID_ID", "Invalid dispatch ID", nil)
		return
	}

	record, err := h.service.GetDispatch(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	JSON(w, http.StatusOK, record)
}

// SummaryResponse counts outcomes in a window
type SummaryResponse struct {
	Since  time.Time                `json:"since"`
	Counts map[domain.Outcome]int64 `json:"counts"`
}

// Summary counts dispatch outcomes
// @Summary Dispatch summary
// @Description Count dispatch outcomes since a point in time (default last 24h)
// @Tags dispatches
// @Produce json
// @Param since query string false "Start of the window (RFC3339)"
// @Success 200 {object} Response{data=SummaryResponse}
// @Failure 400 {object} Response
// @Router /api/v1/dispatches/summary [get]
func (h *DispatchHandler) Summary(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-24 * time.Hour)
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "INVALID_SINCE", "Invalid since format (use RFC3339)", nil)
			return
		}
		since = parsed
	}

	counts, err := h.service.Summary(r.Context(), since)
	if err != nil {
		HandleError(w, err)
		return
	}

	JSON(w, http.StatusOK, SummaryResponse{Since: since, Counts: counts})
}

// List lists dispatch records with filters
// @Summary List dispatch records
// @Description List dispatch records with optional filters and pagination
// @Tags dispatches
// @Produce json
// @Param outcome query string false "Filter by outcome (sent, skipped, failed)"
// @Param kind query string false "Filter by kind (plant, recipe, seasonal, content)"
// @Param content_id query string false "Filter by content ID"
// @Param start_date query string false "Filter by start date (RFC3339)"
// @Param end_date query string false "Filter by end date (RFC3339)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} Response{data=domain.DispatchListResult}
// @Failure 400 {object} Response
// @Failure 500 {object} Response
// @Router /api/v1/dispatches [get]
func (h *DispatchHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.DispatchFilter{
		Page:     1,
		PageSize: 20,
	}
	q := r.URL.Query()

	if outcome := q.Get("outcome"); outcome != "" {
		o := domain.Outcome(outcome)
		if !o.IsValid() {
			JSONError(w, http.StatusBadRequest, "INVALID_OUTCOME", "Invalid outcome", nil)
			return
		}
		filter.Outcome = &o
	}

	if kind := q.Get("kind"); kind != "" {
		k := domain.ContentKind(kind)
		if !k.IsValid() {
			JSONError(w, http.StatusBadRequest, "INVALID_KIND", "Invalid kind", nil)
			return
		}
		filter.Kind = &k
	}

	if contentID := q.Get("content_id"); contentID != "" {
		filter.ContentID = &contentID
	}

	if startDateStr := q.Get("start_date"); startDateStr != "" {
		startDate, err := time.Parse(time.RFC3339, startDateStr)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "INVALID_START_DATE", "Invalid start date format (use RFC3339)", nil)
			return
		}
		filter.StartDate = &startDate
	}

	if endDateStr := q.Get("end_date"); endDateStr != "" {
		endDate, err := time.Parse(time.RFC3339, endDateStr)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "INVALID_END_DATE", "Invalid end date format (use RFC3339)", nil)
			return
		}
		filter.EndDate = &endDate
	}

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			JSONError(w, http.StatusBadRequest, "INVALID_PAGE", "Invalid page number", nil)
			return
		}
		filter.Page = page
	}

	if pageSizeStr := q.Get("page_size"); pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil || pageSize < 1 || pageSize > 100 {
			JSONError(w, http.StatusBadRequest, "INVALID_PAGE_SIZE", "Page size must be between 1 and 100", nil)
			return
		}
		filter.PageSize = pageSize
	}

	result, err := h.service.ListDispatches(r.Context(), filter)
	if err != nil {
		HandleError(w, err)
		return
	}

	JSON(w, http.StatusOK, result)
}
