// Package sessiontest wires the session provider into go test.
package sessiontest

import (
	"fmt"
	"os"
	"testing"

	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/session"
	"go.uber.org/zap"
)

// Fixture is the session-scope state shared by every test in a package
type Fixture struct {
	Backend  *session.PlaywrightBackend
	Provider *session.Provider
	Targets  config.TargetsConfig
	Logger   *zap.Logger
}

// Launch loads configuration from the environment and starts the browser.
// Call it once from TestMain and Close it after m.Run.
func Launch() (*Fixture, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	sessionCfg, err := config.LoadSessionConfig(os.Getenv)
	if err != nil {
		return nil, err
	}
	browserCfg, err := config.LoadBrowserConfig(os.Getenv)
	if err != nil {
		return nil, err
	}

	backend, err := session.Launch(browserCfg, logger)
	if err != nil {
		return nil, err
	}

	return &Fixture{
		Backend:  backend,
		Provider: session.NewProvider(backend, sessionCfg, logger),
		Targets:  config.LoadTargetsConfig(os.Getenv),
		Logger:   logger,
	}, nil
}

// Page acquires a page for the calling test and releases it when the test ends
func (f *Fixture) Page(t testing.TB, overrides ...config.Override) *session.Page {
	t.Helper()

	page, err := f.Provider.AcquirePage(f.Provider.Config(overrides...))
	if err != nil {
		t.Fatalf("Failed to acquire page: %v", err)
	}
	t.Cleanup(page.Release)

	return page
}

// Close shuts the browser down and flushes the logger
func (f *Fixture) Close() {
	if err := f.Backend.Close(); err != nil {
		f.Logger.Warn("failed to close backend", zap.Error(err))
	}
	_ = f.Logger.Sync()
}
