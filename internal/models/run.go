package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents valid run states
type RunStatus string

// Run statuses
const (
	RunStatusPending RunStatus = "pending"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
)

// RunKind identifies what executed the check
type RunKind string

// Run kinds
const (
	RunKindBrowser RunKind = "browser"
	RunKindAPI     RunKind = "api"
)

// Run records one execution of a browser scenario or API check
type Run struct {
	ID           string
	Name         string
	Kind         RunKind
	Status       RunStatus
	ErrorKind    ErrorKind
	ErrorMessage string
	VideoPath    string
	DurationMs   int64
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Domain errors
var (
	ErrInvalidRunName          = errors.New("run name cannot be empty")
	ErrInvalidRunKind          = errors.New("run kind must be browser or api")
	ErrInvalidStatusTransition = errors.New("invalid run status transition")
	ErrRunNotFound             = errors.New("run not found")
)

// NewRun creates a pending run with validation
func NewRun(name string, kind RunKind) (*Run, error) {
	if name == "" {
		return nil, ErrInvalidRunName
	}
	if kind != RunKindBrowser && kind != RunKindAPI {
		return nil, ErrInvalidRunKind
	}

	return &Run{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      kind,
		Status:    RunStatusPending,
		StartedAt: time.Now(),
	}, nil
}

// Pass marks the run as passed
func (r *Run) Pass(duration time.Duration) error {
	if r.Status != RunStatusPending {
		return fmt.Errorf("%w: cannot pass run with status %s", ErrInvalidStatusTransition, r.Status)
	}

	r.Status = RunStatusPassed
	r.finish(duration)
	return nil
}

// Fail marks the run as failed and records why
func (r *Run) Fail(cause error, duration time.Duration) error {
	if r.Status != RunStatusPending {
		return fmt.Errorf("%w: cannot fail run with status %s", ErrInvalidStatusTransition, r.Status)
	}
	if cause == nil {
		return errors.New("failure cause cannot be nil")
	}

	r.Status = RunStatusFailed
	r.ErrorKind = Classify(cause)
	r.ErrorMessage = cause.Error()
	r.finish(duration)
	return nil
}

// Complete passes the run when err is nil and fails it otherwise
func (r *Run) Complete(err error, duration time.Duration) error {
	if err == nil {
		return r.Pass(duration)
	}
	return r.Fail(err, duration)
}

func (r *Run) finish(duration time.Duration) {
	r.DurationMs = duration.Milliseconds()
	r.FinishedAt = time.Now()
}

// IsPending returns true if the run has not finished
func (r *Run) IsPending() bool {
	return r.Status == RunStatusPending
}

// IsPassed returns true if the run passed
func (r *Run) IsPassed() bool {
	return r.Status == RunStatusPassed
}

// IsFailed returns true if the run failed
func (r *Run) IsFailed() bool {
	return r.Status == RunStatusFailed
}

// Duration returns the recorded duration
func (r *Run) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

// GetFormattedDuration returns the duration in seconds for display
func (r *Run) GetFormattedDuration() string {
	if r.IsPending() {
		return "-"
	}
	return fmt.Sprintf("%.2fs", r.Duration().Seconds())
}
