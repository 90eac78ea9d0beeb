package services

import (
	"fmt"
	"time"

	"github.com/themizzi/sitecheck/internal/models"
	"go.uber.org/zap"
)

// RunRepository defines the interface for run persistence
type RunRepository interface {
	CreateRun(run *models.Run) error
	GetRun(id string) (*models.Run, error)
	ListRuns(limit int) ([]*models.Run, error)
	UpdateRunStatus(run *models.Run) error
}

// RunService records the lifecycle of runs
type RunService interface {
	Start(name string, kind models.RunKind) (*models.Run, error)
	Finish(run *models.Run, runErr error, duration time.Duration, videoPath string) error
	GetRun(id string) (*models.Run, error)
	ListRuns(limit int) ([]*models.Run, error)
}

// RunServiceImpl implements RunService
type RunServiceImpl struct {
	runRepo RunRepository
	logger  *zap.Logger
}

// NewRunService creates a new run service
func NewRunService(runRepo RunRepository, logger *zap.Logger) RunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunServiceImpl{
		runRepo: runRepo,
		logger:  logger,
	}
}

// Start creates and persists a pending run
func (s *RunServiceImpl) Start(name string, kind models.RunKind) (*models.Run, error) {
	run, err := models.NewRun(name, kind)
	if err != nil {
		return nil, fmt.Errorf("invalid run: %w", err)
	}

	if err := s.runRepo.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	metricRunsStarted.WithLabelValues(string(kind)).Inc()
	s.logger.Debug("run started", zap.String("id", run.ID), zap.String("name", name), zap.String("kind", string(kind)))
	return run, nil
}

// Finish moves the run to passed or failed depending on runErr and persists it
func (s *RunServiceImpl) Finish(run *models.Run, runErr error, duration time.Duration, videoPath string) error {
	run.VideoPath = videoPath
	if err := run.Complete(runErr, duration); err != nil {
		return err
	}

	if err := s.runRepo.UpdateRunStatus(run); err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}

	metricRunsFinished.WithLabelValues(string(run.Kind), string(run.Status)).Inc()
	metricRunDuration.WithLabelValues(string(run.Kind)).Observe(duration.Seconds())

	fields := []zap.Field{
		zap.String("id", run.ID),
		zap.String("name", run.Name),
		zap.String("status", string(run.Status)),
		zap.Duration("duration", duration),
	}
	if videoPath != "" {
		fields = append(fields, zap.String("video", videoPath))
	}
	if run.IsFailed() {
		fields = append(fields, zap.String("error_kind", string(run.ErrorKind)), zap.String("error", run.ErrorMessage))
		s.logger.Warn("run failed", fields...)
	} else {
		s.logger.Info("run passed", fields...)
	}
	return nil
}

// GetRun retrieves a run by its ID
func (s *RunServiceImpl) GetRun(id string) (*models.Run, error) {
	run, err := s.runRepo.GetRun(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (s *RunServiceImpl) ListRuns(limit int) ([]*models.Run, error) {
	runs, err := s.runRepo.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
