package scenario

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/models"
	"github.com/themizzi/sitecheck/internal/session"
)

// Load time budgets
const (
	PageLoadBudget         = 5 * time.Second
	MultipleRequestsBudget = 10 * time.Second
)

// PageLoadPerformance expects the httpbin landing page to load within PageLoadBudget
func PageLoadPerformance(page *session.Page, targets config.TargetsConfig) error {
	start := time.Now()
	if err := navigate(page, targets.HTTPBin("")); err != nil {
		return err
	}
	return withinBudget("page load", time.Since(start), PageLoadBudget)
}

// MultipleRequestsPerformance loads several endpoints in turn, waiting for
// network idle after each, within MultipleRequestsBudget.
func MultipleRequestsPerformance(page *session.Page, targets config.TargetsConfig) error {
	endpoints := []string{
		targets.HTTPBin("/status/200"),
		targets.HTTPBin("/get"),
		targets.HTTPBin("/headers"),
	}

	start := time.Now()
	for _, endpoint := range endpoints {
		if err := navigate(page, endpoint); err != nil {
			return err
		}
		if err := page.Raw().WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State: playwright.LoadStateNetworkidle,
		}); err != nil {
			return session.WrapError("wait for network idle", err)
		}
	}

	return withinBudget("total", time.Since(start), MultipleRequestsBudget)
}

func withinBudget(what string, elapsed, budget time.Duration) error {
	if elapsed >= budget {
		return fmt.Errorf("%w: %s took %.2fs, budget %.0fs", models.ErrAssertionFailed, what, elapsed.Seconds(), budget.Seconds())
	}
	return nil
}
