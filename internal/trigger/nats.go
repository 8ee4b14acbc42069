package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/gaiosophy/content-notifier/internal/config"
	"github.com/gaiosophy/content-notifier/internal/domain"
)

const natsEnqueueTimeout = 5 * time.Second

// NATSSubscriber consumes document events published on a NATS subject. The
// queue group spreads messages across service instances.
type NATSSubscriber struct {
	conn     *nats.Conn
	cfg      config.NATSConfig
	sink     Sink
	recorder EventRecorder
	logger   *slog.Logger

	sub *nats.Subscription
}

// NATSMessage is the payload published by upstream writers
type NATSMessage struct {
	ID         string           `json:"id,omitempty"`
	Type       domain.EventType `json:"type"`
	Collection string           `json:"collection"`
	DocumentID string           `json:"document_id"`
	Fields     map[string]any   `json:"fields,omitempty"`
	Before     map[string]any   `json:"before,omitempty"`
	OccurredAt *time.Time       `json:"occurred_at,omitempty"`
}

// ConnectNATS dials the configured server
func ConnectNATS(cfg config.NATSConfig, logger *slog.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("content-notifier"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}

// NewNATSSubscriber creates a new NATSSubscriber
func NewNATSSubscriber(conn *nats.Conn, cfg config.NATSConfig, sink Sink, logger *slog.Logger) *NATSSubscriber {
	return &NATSSubscriber{
		conn:   conn,
		cfg:    cfg,
		sink:   sink,
		logger: logger.With("trigger", "nats", "subject", cfg.Subject),
	}
}

// SetRecorder sets the metrics recorder
func (s *NATSSubscriber) SetRecorder(r EventRecorder) {
	s.recorder = r
}

// Start subscribes to the configured subject
func (s *NATSSubscriber) Start() error {
	sub, err := s.conn.QueueSubscribe(s.cfg.Subject, s.cfg.QueueGroup, s.handleMsg)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.cfg.Subject, err)
	}
	s.sub = sub

	s.logger.Info("nats subscriber started", "queue_group", s.cfg.QueueGroup)
	return nil
}

// Stop drains the subscription so in-flight messages finish
func (s *NATSSubscriber) Stop() {
	if s.sub == nil {
		return
	}
	if err := s.sub.Drain(); err != nil {
		s.logger.Warn("failed to drain nats subscription", "error", err)
	}
	s.logger.Info("nats subscriber stopped")
}

// Health reports the connection state
func (s *NATSSubscriber) Health(ctx context.Context) error {
	if s.conn == nil || s.conn.Status() != nats.CONNECTED {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (s *NATSSubscriber) handleMsg(msg *nats.Msg) {
	event, err := DecodeNATSMessage(msg.Data)
	if err != nil {
		s.logger.Warn("dropping malformed document event", "error", err)
		s.reply(msg, err)
		return
	}

	if s.recorder != nil {
		s.recorder.RecordTriggerEvent(event.Source, event.Type)
	}

	ctx, cancel := context.WithTimeout(context.Background(), natsEnqueueTimeout)
	defer cancel()

	if err := s.sink.Enqueue(ctx, event); err != nil {
		s.logger.Error("failed to enqueue document event",
			"event_id", event.ID,
			"content_id", event.DocumentID,
			"error", err,
		)
		s.reply(msg, err)
		return
	}

	s.reply(msg, nil)
}

// reply acknowledges request-style publishes
func (s *NATSSubscriber) reply(msg *nats.Msg, err error) {
	if msg.Reply == "" {
		return
	}
	body := []byte("ok")
	if err != nil {
		body = []byte("error: " + err.Error())
	}
	if rerr := msg.Respond(body); rerr != nil {
		s.logger.Warn("failed to reply to nats message", "error", rerr)
	}
}

// DecodeNATSMessage parses and validates a published document event
func DecodeNATSMessage(data []byte) (*domain.DocumentEvent, error) {
	var m NATSMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, domain.NewValidationError("payload", "invalid JSON: "+err.Error())
	}

	if !m.Type.IsValid() {
		return nil, domain.NewValidationError("type", fmt.Sprintf("unsupported event type %q", m.Type))
	}
	if m.Collection == "" {
		return nil, domain.NewValidationError("collection", "collection is required")
	}
	if m.DocumentID == "" {
		return nil, domain.NewValidationError("document_id", "document_id is required")
	}

	event := domain.NewDocumentEvent(m.Type, domain.SourceNATS, m.Collection, m.DocumentID, m.Fields)
	event.Before = m.Before
	if m.ID != "" {
		event.ID = m.ID
	}
	if m.OccurredAt != nil {
		event.OccurredAt = m.OccurredAt.UTC()
	}
	return event, nil
}
