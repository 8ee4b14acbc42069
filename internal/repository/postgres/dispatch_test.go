package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gaiosophy/content-notifier/internal/domain"
)

func TestBuildDispatchWhere(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		where, args := buildDispatchWhere(domain.DispatchFilter{})
		assert.Equal(t, "1=1", where)
		assert.Empty(t, args)
	})

	t.Run("all filters numbered in order", func(t *testing.T) {
		outcome := domain.OutcomeFailed
		kind := domain.KindRecipe
		contentID := "r-1"
		start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		end := start.Add(24 * time.Hour)

		where, args := buildDispatchWhere(domain.DispatchFilter{
			Outcome:   &outcome,
			Kind:      &kind,
			ContentID: &contentID,
			StartDate: &start,
			EndDate:   &end,
		})

		assert.Equal(t, "1=1 AND outcome = $1 AND kind = $2 AND content_id = $3 AND created_at >= $4 AND created_at <= $5", where)
		assert.Equal(t, []any{outcome, kind, contentID, start, end}, args)
	})
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name               string
		page, pageSize     int
		wantPage, wantSize int
	}{
		{"defaults", 0, 0, 1, 20},
		{"kept", 3, 50, 3, 50},
		{"capped", 1, 500, 1, 100},
		{"negative", -2, -1, 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := normalizePage(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantSize, size)
		})
	}
}
