package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SayanChouni/osint/internal/models"
)

// SearchLogService writes the append-only search audit trail. The core only
// ever appends; reads exist for the admin view-logs operation.
type SearchLogService struct {
	db *sql.DB
}

func NewSearchLogService(db *sql.DB) *SearchLogService {
	return &SearchLogService{db: db}
}

// Append inserts one audit row. The entry's ID and timestamp are filled in
// here when unset.
func (s *SearchLogService) Append(ctx context.Context, entry models.SearchLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_logs (id, user_id, target, ts, outcome_summary, cost_charged, was_blocked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.UserID, entry.Target, entry.Timestamp, entry.OutcomeSummary, entry.CostCharged, entry.WasBlocked)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Recent returns the n most recent entries, newest first.
func (s *SearchLogService) Recent(ctx context.Context, n int) ([]models.SearchLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, target, ts, outcome_summary, cost_charged, was_blocked
		FROM search_logs ORDER BY ts DESC LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var entries []models.SearchLogEntry
	for rows.Next() {
		var e models.SearchLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Target, &e.Timestamp, &e.OutcomeSummary, &e.CostCharged, &e.WasBlocked); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return entries, nil
}
