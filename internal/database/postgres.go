package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// ConnectPostgres connects to PostgreSQL and bootstraps the audit tables.
func ConnectPostgres(postgresURI string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		return nil, err
	}

	log.Println("✅ Connected to PostgreSQL")

	if err = initPostgresTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

// initPostgresTables creates the search audit log table if it doesn't exist.
func initPostgresTables(db *sql.DB) error {
	queries := []string{
		// Search logs table (append-only audit trail; never mutated)
		`CREATE TABLE IF NOT EXISTS search_logs (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL,
			target VARCHAR(64) NOT NULL,
			ts TIMESTAMP NOT NULL DEFAULT NOW(),
			outcome_summary TEXT NOT NULL,
			cost_charged BIGINT NOT NULL DEFAULT 0,
			was_blocked BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_search_logs_ts ON search_logs(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_search_logs_user_id ON search_logs(user_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}
