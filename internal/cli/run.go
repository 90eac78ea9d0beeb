package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/themizzi/sitecheck/internal/apiclient"
	"github.com/themizzi/sitecheck/internal/check"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/models"
	"github.com/themizzi/sitecheck/internal/scenario"
	"github.com/themizzi/sitecheck/internal/services"
	"github.com/themizzi/sitecheck/internal/session"
	"go.uber.org/zap"
)

// ProbeOptions configures an API probe
type ProbeOptions struct {
	Targets config.TargetsConfig
	Checks  []check.Spec
	Timeout time.Duration
	Runs    services.RunService
	Logger  *zap.Logger
	Out     io.Writer
}

// RunProbe runs the API checks against the httpbin target and prints a summary
func RunProbe(ctx context.Context, opts ProbeOptions) (services.Summary, error) {
	checks := opts.Checks
	if len(checks) == 0 {
		checks = check.Defaults()
	}

	client := apiclient.NewClient(opts.Targets.HTTPBinURL, opts.Timeout, opts.Logger)
	runner := services.NewRunner(nil, opts.Runs, opts.Targets, opts.Logger)

	summary, err := runner.RunChecks(ctx, client, checks)
	if err != nil {
		return summary, err
	}
	PrintSummary(opts.Out, summary)
	return summary, nil
}

// SmokeOptions configures a browser smoke run
type SmokeOptions struct {
	Provider  *session.Provider
	Scenarios []scenario.Scenario
	Targets   config.TargetsConfig
	Runs      services.RunService
	Logger    *zap.Logger
	Out       io.Writer
}

// RunSmoke runs the browser scenarios one page at a time and prints a summary
func RunSmoke(ctx context.Context, opts SmokeOptions) (services.Summary, error) {
	runner := services.NewRunner(opts.Provider, opts.Runs, opts.Targets, opts.Logger)

	summary, err := runner.RunScenarios(ctx, opts.Scenarios)
	if err != nil {
		return summary, err
	}
	PrintSummary(opts.Out, summary)
	return summary, nil
}

// PrintSummary writes one line per run followed by the totals
func PrintSummary(w io.Writer, summary services.Summary) {
	PrintRuns(w, summary.Runs)
	fmt.Fprintf(w, "\n%d passed, %d failed\n", summary.Passed, summary.Failed)
}

// PrintRuns writes runs as an aligned table
func PrintRuns(w io.Writer, runs []*models.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSTATUS\tDURATION\tERROR")
	for _, run := range runs {
		errText := ""
		if run.IsFailed() {
			errText = fmt.Sprintf("%s: %s", run.ErrorKind, run.ErrorMessage)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", run.Name, run.Kind, run.Status, run.GetFormattedDuration(), errText)
	}
	tw.Flush()
}
