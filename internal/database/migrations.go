package database

import (
	"database/sql"
	"fmt"
)

// Schema creates the runs table. It is valid for both sqlite and postgres.
const Schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		kind VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		error_kind VARCHAR(50) NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		video_path TEXT NOT NULL DEFAULT '',
		duration_ms BIGINT NOT NULL DEFAULT 0,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_name ON runs(name);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// RunMigrations creates the necessary database tables
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	return nil
}
