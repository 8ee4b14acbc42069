package trigger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

const listenerRetryDelay = 5 * time.Second

// FirestoreListener watches bound collections with snapshot listeners and
// enqueues an event for every added or modified document
type FirestoreListener struct {
	client      *firestore.Client
	collections []string
	sink        Sink
	recorder    EventRecorder
	logger      *slog.Logger

	wg         sync.WaitGroup
	cancelFunc context.CancelFunc
}

// NewFirestoreListener creates a new FirestoreListener
func NewFirestoreListener(client *firestore.Client, collections []string, sink Sink, logger *slog.Logger) *FirestoreListener {
	return &FirestoreListener{
		client:      client,
		collections: collections,
		sink:        sink,
		logger:      logger.With("trigger", "firestore"),
	}
}

// SetRecorder sets the metrics recorder
func (l *FirestoreListener) SetRecorder(r EventRecorder) {
	l.recorder = r
}

// Start starts one listener per collection
func (l *FirestoreListener) Start(ctx context.Context) {
	ctx, l.cancelFunc = context.WithCancel(ctx)

	for _, collection := range l.collections {
		l.wg.Add(1)
		go l.listen(ctx, collection)
	}

	l.logger.Info("firestore listener started", "collections", l.collections)
}

// Stop cancels all listeners and waits for them to exit
func (l *FirestoreListener) Stop() {
	if l.cancelFunc != nil {
		l.cancelFunc()
	}
	l.wg.Wait()
	l.logger.Info("firestore listener stopped")
}

func (l *FirestoreListener) listen(ctx context.Context, collection string) {
	defer l.wg.Done()

	logger := l.logger.With("collection", collection)

	for {
		err := l.watch(ctx, collection, logger)
		if ctx.Err() != nil {
			return
		}
		logger.Error("snapshot listener failed, restarting", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(listenerRetryDelay):
		}
	}
}

// watch runs a single snapshot iterator until it fails. A restarted
// iterator re-seeds, so writes made while it was down are not announced.
func (l *FirestoreListener) watch(ctx context.Context, collection string, logger *slog.Logger) error {
	it := l.client.Collection(collection).Snapshots(ctx)
	defer it.Stop()

	tracker := newSnapshotTracker(collection)

	for {
		qs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}

		changes := make([]docChange, 0, len(qs.Changes))
		for _, c := range qs.Changes {
			changes = append(changes, docChange{
				kind:   changeKindOf(c.Kind),
				id:     c.Doc.Ref.ID,
				fields: normalizeFields(c.Doc.Data()),
			})
		}

		seeding := !tracker.seeded
		for _, event := range tracker.apply(changes) {
			l.emit(ctx, event, logger)
		}
		if seeding {
			logger.Info("snapshot listener seeded", "documents", len(tracker.docs))
		}
	}
}

func (l *FirestoreListener) emit(ctx context.Context, event *domain.DocumentEvent, logger *slog.Logger) {
	if l.recorder != nil {
		l.recorder.RecordTriggerEvent(event.Source, event.Type)
	}
	if err := l.sink.Enqueue(ctx, event); err != nil {
		logger.Error("failed to enqueue document event",
			"event_id", event.ID,
			"content_id", event.DocumentID,
			"type", event.Type,
			"error", err,
		)
		return
	}
	logger.Debug("document event enqueued", "event_id", event.ID, "content_id", event.DocumentID, "type", event.Type)
}

type changeKind int

const (
	changeAdded changeKind = iota
	changeModified
	changeRemoved
)

func changeKindOf(k firestore.DocumentChangeKind) changeKind {
	switch k {
	case firestore.DocumentModified:
		return changeModified
	case firestore.DocumentRemoved:
		return changeRemoved
	}
	return changeAdded
}

type docChange struct {
	kind   changeKind
	id     string
	fields map[string]any
}

// snapshotTracker keeps the last seen fields of every document so updates
// can carry the previous state. The first snapshot only seeds it.
type snapshotTracker struct {
	collection string
	seeded     bool
	docs       map[string]map[string]any
}

func newSnapshotTracker(collection string) *snapshotTracker {
	return &snapshotTracker{
		collection: collection,
		docs:       make(map[string]map[string]any),
	}
}

func (t *snapshotTracker) apply(changes []docChange) []*domain.DocumentEvent {
	if !t.seeded {
		for _, c := range changes {
			if c.kind != changeRemoved {
				t.docs[c.id] = c.fields
			}
		}
		t.seeded = true
		return nil
	}

	var events []*domain.DocumentEvent
	for _, c := range changes {
		switch c.kind {
		case changeAdded:
			events = append(events, domain.NewDocumentEvent(domain.EventCreated, domain.SourceFirestore, t.collection, c.id, c.fields))
			t.docs[c.id] = c.fields
		case changeModified:
			event := domain.NewDocumentEvent(domain.EventUpdated, domain.SourceFirestore, t.collection, c.id, c.fields)
			event.Before = t.docs[c.id]
			events = append(events, event)
			t.docs[c.id] = c.fields
		case changeRemoved:
			delete(t.docs, c.id)
		}
	}
	return events
}
