package services

import (
	"context"
	"fmt"
	"time"

	"github.com/themizzi/sitecheck/internal/apiclient"
	"github.com/themizzi/sitecheck/internal/check"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/models"
	"github.com/themizzi/sitecheck/internal/scenario"
	"github.com/themizzi/sitecheck/internal/session"
	"go.uber.org/zap"
)

// Summary totals the runs of one invocation
type Summary struct {
	Passed int
	Failed int
	Runs   []*models.Run
}

// OK reports whether nothing failed
func (s Summary) OK() bool {
	return s.Failed == 0
}

func (s *Summary) add(run *models.Run) {
	s.Runs = append(s.Runs, run)
	if run.IsPassed() {
		s.Passed++
	} else {
		s.Failed++
	}
}

// Runner executes scenarios and checks one at a time and records each as a run
type Runner struct {
	provider *session.Provider
	runs     RunService
	targets  config.TargetsConfig
	logger   *zap.Logger
}

// NewRunner creates a runner; provider may be nil when only API checks are run
func NewRunner(provider *session.Provider, runs RunService, targets config.TargetsConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		provider: provider,
		runs:     runs,
		targets:  targets,
		logger:   logger,
	}
}

// RunScenarios runs each scenario on its own page. A failing scenario is
// recorded and the next one still runs; only persistence errors abort.
func (r *Runner) RunScenarios(ctx context.Context, scenarios []scenario.Scenario) (Summary, error) {
	var summary Summary
	if r.provider == nil {
		return summary, fmt.Errorf("%w: no browser session provider", models.ErrResourceUnavailable)
	}

	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		run, err := r.runs.Start(s.Name, models.RunKindBrowser)
		if err != nil {
			return summary, err
		}

		start := time.Now()
		videoPath, runErr := r.runScenario(s)

		if err := r.runs.Finish(run, runErr, time.Since(start), videoPath); err != nil {
			return summary, err
		}
		summary.add(run)
	}
	return summary, nil
}

// runScenario owns the page for one scenario; the page is released on
// every exit path, panics included, before the video path is read.
func (r *Runner) runScenario(s scenario.Scenario) (videoPath string, err error) {
	page, err := r.provider.AcquirePage(r.provider.Config(s.Overrides...))
	if err != nil {
		return "", err
	}
	defer func() {
		page.Release()
		videoPath = page.VideoPath()
	}()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scenario %s panicked: %v", s.Name, p)
		}
	}()

	return "", s.Run(page, r.targets)
}

// RunChecks performs each API check against client
func (r *Runner) RunChecks(ctx context.Context, client apiclient.Client, specs []check.Spec) (Summary, error) {
	var summary Summary

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		run, err := r.runs.Start(spec.Name, models.RunKindAPI)
		if err != nil {
			return summary, err
		}

		start := time.Now()
		checkErr := spec.Run(ctx, client)

		if err := r.runs.Finish(run, checkErr, time.Since(start), ""); err != nil {
			return summary, err
		}
		summary.add(run)
	}
	return summary, nil
}
