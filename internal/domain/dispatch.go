package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outcome is the final result of handling a document event
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSent, OutcomeSkipped, OutcomeFailed:
		return true
	}
	return false
}

// DispatchRecord is the audit entry written for every handled event
type DispatchRecord struct {
	ID         uuid.UUID   `json:"id"`
	EventID    string      `json:"event_id"`
	EventType  EventType   `json:"event_type"`
	Source     EventSource `json:"source"`
	Collection string      `json:"collection"`
	ContentID  string      `json:"content_id"`
	Kind       ContentKind `json:"kind"`
	Outcome    Outcome     `json:"outcome"`
	Reason     SkipReason  `json:"reason,omitempty"`
	Title      string      `json:"title,omitempty"`
	MessageID  *string     `json:"message_id,omitempty"`
	Error      *string     `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewDispatchRecord starts a record for an event
func NewDispatchRecord(event *DocumentEvent, kind ContentKind) *DispatchRecord {
	return &DispatchRecord{
		ID:         uuid.New(),
		EventID:    event.ID,
		EventType:  event.Type,
		Source:     event.Source,
		Collection: event.Collection,
		ContentID:  event.DocumentID,
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
	}
}

func (r *DispatchRecord) MarkSkipped(reason SkipReason) {
	r.Outcome = OutcomeSkipped
	r.Reason = reason
}

func (r *DispatchRecord) MarkSent(title, messageID string) {
	r.Outcome = OutcomeSent
	r.Title = title
	r.MessageID = &messageID
}

func (r *DispatchRecord) MarkFailed(title string, err error) {
	r.Outcome = OutcomeFailed
	r.Title = title
	msg := err.Error()
	r.Error = &msg
}

type DispatchFilter struct {
	Outcome   *Outcome
	Kind      *ContentKind
	ContentID *string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

type DispatchListResult struct {
	Records    []*DispatchRecord `json:"records"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

type DispatchRepository interface {
	Create(ctx context.Context, record *DispatchRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*DispatchRecord, error)
	List(ctx context.Context, filter DispatchFilter) (*DispatchListResult, error)
	CountByOutcome(ctx context.Context, since time.Time) (map[Outcome]int64, error)
}
