package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

const defaultSendTimeout = 10 * time.Second

// Recorder receives dispatch outcomes for metrics
type Recorder interface {
	RecordDispatch(kind domain.ContentKind, outcome domain.Outcome, reason domain.SkipReason)
	RecordSendLatency(transport string, latency time.Duration)
}

// Options tunes the dispatch service
type Options struct {
	NotifyOnPublishTransition bool
	SendTimeout               time.Duration
}

// DispatchService runs the dispatch policy for document events and hands
// the resulting requests to the transport
type DispatchService struct {
	bindings  *domain.Bindings
	transport domain.Transport
	dedup     domain.DedupGuard
	limiter   domain.RateLimiter
	repo      domain.DispatchRepository
	logger    *slog.Logger
	opts      Options

	recorder        Recorder
	statusBroadcast func(record *domain.DispatchRecord)
}

// NewDispatchService creates a new DispatchService. dedup and limiter may be nil.
func NewDispatchService(
	bindings *domain.Bindings,
	transport domain.Transport,
	dedup domain.DedupGuard,
	limiter domain.RateLimiter,
	repo domain.DispatchRepository,
	logger *slog.Logger,
	opts Options,
) *DispatchService {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	return &DispatchService{
		bindings:  bindings,
		transport: transport,
		dedup:     dedup,
		limiter:   limiter,
		repo:      repo,
		logger:    logger,
		opts:      opts,
	}
}

// SetRecorder sets the metrics recorder
func (s *DispatchService) SetRecorder(r Recorder) {
	s.recorder = r
}

// SetStatusBroadcast sets the function to broadcast dispatch records
func (s *DispatchService) SetStatusBroadcast(fn func(record *domain.DispatchRecord)) {
	s.statusBroadcast = fn
}

// Bindings returns the collection bindings in use
func (s *DispatchService) Bindings() []domain.CollectionBinding {
	return s.bindings.All()
}

// Handle routes an event by type
func (s *DispatchService) Handle(ctx context.Context, event *domain.DocumentEvent) (*domain.DispatchRecord, error) {
	switch event.Type {
	case domain.EventCreated:
		return s.HandleCreated(ctx, event)
	case domain.EventUpdated:
		return s.HandleUpdated(ctx, event)
	}
	return nil, domain.NewValidationError("type", fmt.Sprintf("unsupported event type %q", event.Type))
}

// HandleCreated handles a newly created document. Skips are not errors; a
// failed send is returned wrapped in a *domain.DeliveryError.
func (s *DispatchService) HandleCreated(ctx context.Context, event *domain.DocumentEvent) (*domain.DispatchRecord, error) {
	binding, ok := s.bindings.Lookup(event.Collection)
	if !ok {
		return s.skipUnbound(ctx, event), nil
	}

	doc := event.Document()
	kind := binding.Resolve(doc)
	return s.dispatch(ctx, event, domain.Decide(doc, kind))
}

// HandleUpdated handles an update and notifies only on the transition into
// the published state, when enabled
func (s *DispatchService) HandleUpdated(ctx context.Context, event *domain.DocumentEvent) (*domain.DispatchRecord, error) {
	binding, ok := s.bindings.Lookup(event.Collection)
	if !ok {
		return s.skipUnbound(ctx, event), nil
	}

	doc := event.Document()
	kind := binding.Resolve(doc)

	if !s.opts.NotifyOnPublishTransition {
		record := domain.NewDispatchRecord(event, kind)
		record.MarkSkipped(domain.SkipUpdatesDisabled)
		s.finish(ctx, record)
		return record, nil
	}

	return s.dispatch(ctx, event, domain.DecideTransition(event.Previous(), doc, kind))
}

// Preview runs the policy without sending or recording anything
func (s *DispatchService) Preview(event *domain.DocumentEvent) (*domain.Decision, error) {
	binding, ok := s.bindings.Lookup(event.Collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnboundCollection, event.Collection)
	}

	doc := event.Document()
	kind := binding.Resolve(doc)

	var decision domain.Decision
	if event.Type == domain.EventUpdated {
		decision = domain.DecideTransition(event.Previous(), doc, kind)
	} else {
		decision = domain.Decide(doc, kind)
	}
	return &decision, nil
}

// GetDispatch retrieves a dispatch record by ID
func (s *DispatchService) GetDispatch(ctx context.Context, id uuid.UUID) (*domain.DispatchRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// ListDispatches lists dispatch records with filters
func (s *DispatchService) ListDispatches(ctx context.Context, filter domain.DispatchFilter) (*domain.DispatchListResult, error) {
	return s.repo.List(ctx, filter)
}

// Summary counts outcomes since the given time
func (s *DispatchService) Summary(ctx context.Context, since time.Time) (map[domain.Outcome]int64, error) {
	return s.repo.CountByOutcome(ctx, since)
}

func (s *DispatchService) dispatch(ctx context.Context, event *domain.DocumentEvent, decision domain.Decision) (*domain.DispatchRecord, error) {
	record := domain.NewDispatchRecord(event, decision.Kind)
	logger := s.logger.With(
		"event_id", event.ID,
		"collection", event.Collection,
		"content_id", event.DocumentID,
		"kind", decision.Kind.Label(),
	)

	if !decision.Send {
		switch decision.Reason {
		case domain.SkipMissingData:
			logger.Info("no data found in document")
		case domain.SkipNotPublished:
			logger.Info("skipping notification for unpublished content")
		default:
			logger.Info("skipping notification", "reason", decision.Reason)
		}
		record.MarkSkipped(decision.Reason)
		s.finish(ctx, record)
		return record, nil
	}

	req := decision.Request
	key := dedupKey(event.DocumentID)

	if s.dedup != nil {
		acquired, err := s.dedup.Acquire(ctx, key)
		if err != nil {
			// Fail open on Redis errors
			logger.Warn("dedup check failed", "error", err)
			acquired = true
		}
		if !acquired {
			logger.Info("skipping notification, content already announced")
			record.MarkSkipped(domain.SkipDuplicate)
			s.finish(ctx, record)
			return record, nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, req.Topic); err != nil {
			return record, s.fail(ctx, record, req, key, fmt.Errorf("rate limiter: %w", err), logger)
		}
	}

	logger.Info("sending notification", "title", req.Title, "transport", s.transport.Name())

	sendCtx, cancel := context.WithTimeout(ctx, s.opts.SendTimeout)
	start := time.Now()
	receipt, err := s.transport.Send(sendCtx, req)
	cancel()
	if s.recorder != nil {
		s.recorder.RecordSendLatency(s.transport.Name(), time.Since(start))
	}
	if err != nil {
		return record, s.fail(ctx, record, req, key, err, logger)
	}

	record.MarkSent(req.Title, receipt.MessageID)
	logger.Info("notification sent", "message_id", receipt.MessageID)
	s.finish(ctx, record)

	return record, nil
}

// fail records a delivery failure and releases the dedup key so a retry by
// the hosting framework can send again
func (s *DispatchService) fail(
	ctx context.Context,
	record *domain.DispatchRecord,
	req *domain.NotificationRequest,
	key string,
	err error,
	logger *slog.Logger,
) error {
	deliveryErr := &domain.DeliveryError{Kind: record.Kind, ContentID: record.ContentID, Err: err}

	logger.Error("error sending notification", "error", err)

	if s.dedup != nil {
		if releaseErr := s.dedup.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			logger.Warn("failed to release dedup key", "error", releaseErr)
		}
	}

	record.MarkFailed(req.Title, err)
	s.finish(ctx, record)

	return deliveryErr
}

func (s *DispatchService) skipUnbound(ctx context.Context, event *domain.DocumentEvent) *domain.DispatchRecord {
	s.logger.Warn("event for unbound collection",
		"event_id", event.ID,
		"collection", event.Collection,
		"content_id", event.DocumentID,
	)
	record := domain.NewDispatchRecord(event, domain.KindGeneric)
	record.MarkSkipped(domain.SkipUnboundCollection)
	s.finish(ctx, record)
	return record
}

// finish persists, counts and broadcasts a record. Persistence failures
// never change the dispatch result.
func (s *DispatchService) finish(ctx context.Context, record *domain.DispatchRecord) {
	if err := s.repo.Create(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Error("failed to record dispatch",
			"dispatch_id", record.ID,
			"content_id", record.ContentID,
			"error", err,
		)
	}

	if s.recorder != nil {
		s.recorder.RecordDispatch(record.Kind, record.Outcome, record.Reason)
	}

	if s.statusBroadcast != nil {
		s.statusBroadcast(record)
	}
}

func dedupKey(contentID string) string {
	return "content:" + contentID
}
