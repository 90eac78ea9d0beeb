package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/themizzi/sitecheck/internal/models"
)

// DefaultListLimit caps ListRuns when no positive limit is given
const DefaultListLimit = 50

// RunRepository handles database operations for runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository with a specific database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{
		db: db,
	}
}

const runColumns = `id, name, kind, status, error_kind, error_message, video_path, duration_ms, started_at, finished_at`

// CreateRun inserts a new run
func (r *RunRepository) CreateRun(run *models.Run) error {
	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.Name,
		string(run.Kind),
		string(run.Status),
		string(run.ErrorKind),
		run.ErrorMessage,
		run.VideoPath,
		run.DurationMs,
		run.StartedAt.UTC(),
		nullTime(run),
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by its ID
func (r *RunRepository) GetRun(id string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs first
func (r *RunRepository) ListRuns(limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// UpdateRunStatus persists the outcome fields of a run
func (r *RunRepository) UpdateRunStatus(run *models.Run) error {
	query := `
		UPDATE runs
		SET status = $1, error_kind = $2, error_message = $3, video_path = $4, duration_ms = $5, finished_at = $6
		WHERE id = $7
	`

	result, err := r.db.Exec(query,
		string(run.Status),
		string(run.ErrorKind),
		run.ErrorMessage,
		run.VideoPath,
		run.DurationMs,
		nullTime(run),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", models.ErrRunNotFound, run.ID)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run                     models.Run
		kind, status, errorKind string
		finishedAt              sql.NullTime
	)

	err := row.Scan(
		&run.ID,
		&run.Name,
		&kind,
		&status,
		&errorKind,
		&run.ErrorMessage,
		&run.VideoPath,
		&run.DurationMs,
		&run.StartedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Kind = models.RunKind(kind)
	run.Status = models.RunStatus(status)
	run.ErrorKind = models.ErrorKind(errorKind)
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}

	return &run, nil
}

func nullTime(run *models.Run) sql.NullTime {
	if run.FinishedAt.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
}
