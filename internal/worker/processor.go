package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gaiosophy/content-notifier/internal/config"
	"github.com/gaiosophy/content-notifier/internal/domain"
)

// EventHandler handles one document event
type EventHandler interface {
	Handle(ctx context.Context, event *domain.DocumentEvent) (*domain.DispatchRecord, error)
}

// Processor drains the event queue with a fixed pool of workers
type Processor struct {
	queue   domain.EventQueue
	handler EventHandler
	logger  *slog.Logger
	config  config.WorkerConfig

	mu         sync.Mutex
	running    bool
	wg         sync.WaitGroup
	cancelFunc context.CancelFunc
}

// NewProcessor creates a new Processor
func NewProcessor(
	queue domain.EventQueue,
	handler EventHandler,
	logger *slog.Logger,
	workerConfig config.WorkerConfig,
) *Processor {
	if workerConfig.Count < 1 {
		workerConfig.Count = 1
	}
	if workerConfig.PollTimeout <= 0 {
		workerConfig.PollTimeout = 2 * time.Second
	}
	if workerConfig.StopTimeout <= 0 {
		workerConfig.StopTimeout = 30 * time.Second
	}
	return &Processor{
		queue:   queue,
		handler: handler,
		logger:  logger,
		config:  workerConfig,
	}
}

// Start starts the worker pool
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	ctx, p.cancelFunc = context.WithCancel(ctx)
	p.mu.Unlock()

	for i := 0; i < p.config.Count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.logger.Info("processor started", "workers", p.config.Count)

	return nil
}

// Stop stops the worker pool and waits for in-flight events
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	if p.cancelFunc != nil {
		p.cancelFunc()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("processor stopped gracefully")
	case <-time.After(p.config.StopTimeout):
		p.logger.Warn("processor stop timed out")
	}
}

func (p *Processor) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", workerID)
	logger.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped")
			return
		default:
			if err := p.processNext(ctx, logger); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Error("failed to dequeue event", "error", err)
				p.backoff(ctx)
			}
		}
	}
}

// processNext handles the next event. Dispatch failures are logged and
// dropped; only queue errors are returned.
func (p *Processor) processNext(ctx context.Context, logger *slog.Logger) error {
	event, err := p.queue.Dequeue(ctx, p.config.PollTimeout)
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}

	// An in-flight event finishes even when shutdown starts
	handleCtx := context.WithoutCancel(ctx)

	record, err := p.handler.Handle(handleCtx, event)
	if err != nil {
		logger.Error("failed to handle event",
			"event_id", event.ID,
			"collection", event.Collection,
			"content_id", event.DocumentID,
			"error", err,
		)
		return nil
	}

	if record != nil {
		logger.Debug("event handled",
			"event_id", event.ID,
			"outcome", record.Outcome,
			"reason", record.Reason,
		)
	}
	return nil
}

func (p *Processor) backoff(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(500 * time.Millisecond):
	}
}
