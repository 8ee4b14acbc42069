package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

const dispatchColumns = `
	id, event_id, event_type, source, collection, content_id, kind,
	outcome, reason, title, message_id, error, created_at`

// DispatchRepository implements domain.DispatchRepository using PostgreSQL
type DispatchRepository struct {
	db *DB
}

// NewDispatchRepository creates a new DispatchRepository
func NewDispatchRepository(db *DB) *DispatchRepository {
	return &DispatchRepository{db: db}
}

// Create appends a dispatch record
func (r *DispatchRepository) Create(ctx context.Context, rec *domain.DispatchRecord) error {
	query := `
		INSERT INTO dispatch_records (` + dispatchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		rec.ID, rec.EventID, rec.EventType, rec.Source, rec.Collection, rec.ContentID, rec.Kind,
		rec.Outcome, rec.Reason, rec.Title, rec.MessageID, rec.Error, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dispatch record: %w", err)
	}

	return nil
}

// GetByID retrieves a dispatch record by ID
func (r *DispatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DispatchRecord, error) {
	query := `SELECT ` + dispatchColumns + ` FROM dispatch_records WHERE id = $1`

	rec, err := scanRecord(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan dispatch record: %w", err)
	}
	return rec, nil
}

// List lists dispatch records with filters and pagination, newest first
func (r *DispatchRepository) List(ctx context.Context, filter domain.DispatchFilter) (*domain.DispatchListResult, error) {
	whereClause, args := buildDispatchWhere(filter)

	countQuery := "SELECT COUNT(*) FROM dispatch_records WHERE " + whereClause
	var total int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count dispatch records: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM dispatch_records
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, dispatchColumns, whereClause, len(args)+1, len(args)+2)

	rows, err := r.db.Pool.Query(ctx, query, append(args, pageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dispatch records: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.DispatchRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dispatch records: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.DispatchListResult{
		Records:    records,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// CountByOutcome counts records created at or after since
func (r *DispatchRepository) CountByOutcome(ctx context.Context, since time.Time) (map[domain.Outcome]int64, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT outcome, COUNT(*) FROM dispatch_records WHERE created_at >= $1 GROUP BY outcome`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count dispatch outcomes: %w", err)
	}
	defer rows.Close()

	counts := map[domain.Outcome]int64{
		domain.OutcomeSent:    0,
		domain.OutcomeSkipped: 0,
		domain.OutcomeFailed:  0,
	}
	for rows.Next() {
		var outcome domain.Outcome
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan dispatch outcome: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// buildDispatchWhere returns the WHERE clause and its positional args
func buildDispatchWhere(filter domain.DispatchFilter) (string, []any) {
	conditions := []string{"1=1"}
	args := []any{}

	add := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Outcome != nil {
		add("outcome = $%d", *filter.Outcome)
	}
	if filter.Kind != nil {
		add("kind = $%d", *filter.Kind)
	}
	if filter.ContentID != nil {
		add("content_id = $%d", *filter.ContentID)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}

	return strings.Join(conditions, " AND "), args
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func scanRecord(row pgx.Row) (*domain.DispatchRecord, error) {
	rec := &domain.DispatchRecord{}
	err := row.Scan(
		&rec.ID, &rec.EventID, &rec.EventType, &rec.Source, &rec.Collection, &rec.ContentID, &rec.Kind,
		&rec.Outcome, &rec.Reason, &rec.Title, &rec.MessageID, &rec.Error, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
