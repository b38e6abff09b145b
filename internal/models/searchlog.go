package models

import "time"

// SearchLogEntry is one row of the append-only search audit trail.
type SearchLogEntry struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"user_id"`
	Target         string    `json:"target"`
	Timestamp      time.Time `json:"timestamp"`
	OutcomeSummary string    `json:"outcome_summary"`
	CostCharged    int64     `json:"cost_charged"`
	WasBlocked     bool      `json:"was_blocked"`
}
