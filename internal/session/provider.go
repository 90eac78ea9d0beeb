// Package session hands each check a browser page configured for its scope
// and guarantees the page is released on every exit path.
package session

import (
	"fmt"
	"os"

	"github.com/playwright-community/playwright-go"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/models"
	"go.uber.org/zap"
)

// Backend opens isolated browser contexts for the provider
type Backend interface {
	NewContext(cfg config.SessionConfig) (playwright.BrowserContext, error)
}

// Provider merges session defaults with per-test overrides and manages page lifetimes.
// It holds no mutable state, so one Provider may serve concurrent tests.
type Provider struct {
	backend  Backend
	defaults config.SessionConfig
	logger   *zap.Logger
}

// SessionDefaults returns the session-wide configuration
func SessionDefaults() config.SessionConfig {
	return config.SessionDefaults()
}

// NewProvider creates a provider backed by the given automation backend
func NewProvider(backend Backend, defaults config.SessionConfig, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		backend:  backend,
		defaults: defaults,
		logger:   logger,
	}
}

// Defaults returns the provider's session-scope configuration
func (p *Provider) Defaults() config.SessionConfig {
	return p.defaults
}

// Config returns the session defaults with test-scope overrides applied
func (p *Provider) Config(overrides ...config.Override) config.SessionConfig {
	return p.defaults.With(overrides...)
}

// AcquirePage opens one page configured by cfg. The caller owns the page and must Release it.
func (p *Provider) AcquirePage(cfg config.SessionConfig) (*Page, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	if cfg.RecordsVideo() {
		if err := os.MkdirAll(cfg.VideoDir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create video directory: %v", models.ErrResourceUnavailable, err)
		}
	}

	browserCtx, err := p.backend.NewContext(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open browser context: %v", models.ErrResourceUnavailable, err)
	}

	raw, err := browserCtx.NewPage()
	if err != nil {
		if closeErr := browserCtx.Close(); closeErr != nil {
			p.logger.Warn("failed to close browser context after page error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("%w: failed to open page: %v", models.ErrResourceUnavailable, err)
	}

	timeout := float64(cfg.DefaultTimeoutMs)
	raw.SetDefaultTimeout(timeout)
	raw.SetDefaultNavigationTimeout(timeout)

	p.logger.Debug("page acquired",
		zap.Int("viewport_width", cfg.ViewportWidth),
		zap.Int("viewport_height", cfg.ViewportHeight),
		zap.String("video_dir", cfg.VideoDir),
		zap.Int("default_timeout_ms", cfg.DefaultTimeoutMs),
	)

	return &Page{
		raw:        raw,
		browserCtx: browserCtx,
		config:     cfg,
		logger:     p.logger,
	}, nil
}

// ReleasePage releases a page; it is safe to call on nil or already released pages
func (p *Provider) ReleasePage(page *Page) {
	if page == nil {
		return
	}
	page.Release()
}

// WithPage acquires a page, runs fn and releases the page whether fn
// returns normally, returns an error or panics.
func (p *Provider) WithPage(cfg config.SessionConfig, fn func(*Page) error) error {
	page, err := p.AcquirePage(cfg)
	if err != nil {
		return err
	}
	defer page.Release()

	return fn(page)
}
