package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the kind of write that fired a trigger
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
)

func (t EventType) IsValid() bool {
	return t == EventCreated || t == EventUpdated
}

// EventSource names the trigger adapter that produced an event
type EventSource string

const (
	SourceHTTP      EventSource = "http"
	SourceFirestore EventSource = "firestore"
	SourceNATS      EventSource = "nats"
)

// DocumentEvent is what a trigger adapter hands to the dispatch service
type DocumentEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Source     EventSource    `json:"source"`
	Collection string         `json:"collection"`
	DocumentID string         `json:"document_id"`
	Fields     map[string]any `json:"fields,omitempty"`
	Before     map[string]any `json:"before,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewDocumentEvent creates an event with a generated id
func NewDocumentEvent(eventType EventType, source EventSource, collection, documentID string, fields map[string]any) *DocumentEvent {
	return &DocumentEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Source:     source,
		Collection: collection,
		DocumentID: documentID,
		Fields:     fields,
		OccurredAt: time.Now().UTC(),
	}
}

// Document returns the written document
func (e *DocumentEvent) Document() *ContentDocument {
	return NewContentDocument(e.Collection, e.DocumentID, e.Fields)
}

// Previous returns the document as it was before an update, or nil
func (e *DocumentEvent) Previous() *ContentDocument {
	if e.Before == nil {
		return nil
	}
	return NewContentDocument(e.Collection, e.DocumentID, e.Before)
}
