package session

import (
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/models"
	"go.uber.org/zap"
)

// PlaywrightBackend owns one playwright driver and one launched browser
type PlaywrightBackend struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	logger  *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// Install downloads the browser binaries for the given engines
func Install(engines ...string) error {
	if len(engines) == 0 {
		engines = []string{config.EngineChromium}
	}
	for _, engine := range engines {
		if !config.IsSupportedEngine(engine) {
			return fmt.Errorf("unsupported browser engine %q", engine)
		}
	}

	if err := playwright.Install(&playwright.RunOptions{Browsers: engines}); err != nil {
		return fmt.Errorf("failed to install browsers: %w", err)
	}
	return nil
}

// Launch starts playwright and launches the configured browser engine
func Launch(cfg config.BrowserConfig, logger *zap.Logger) (*PlaywrightBackend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to start playwright: %v", models.ErrResourceUnavailable, err)
	}

	browserType, err := browserTypeFor(pw, cfg.Engine)
	if err != nil {
		pw.Stop()
		return nil, err
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	if cfg.SlowMoMs > 0 {
		opts.SlowMo = playwright.Float(float64(cfg.SlowMoMs))
	}

	browser, err := browserType.Launch(opts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("%w: failed to launch %s (headless=%v): %v", models.ErrResourceUnavailable, cfg.Engine, cfg.Headless, err)
	}

	logger.Info("browser launched",
		zap.String("engine", cfg.Engine),
		zap.Bool("headless", cfg.Headless),
		zap.String("version", browser.Version()),
	)

	return &PlaywrightBackend{
		pw:      pw,
		browser: browser,
		logger:  logger,
	}, nil
}

func browserTypeFor(pw *playwright.Playwright, engine string) (playwright.BrowserType, error) {
	switch engine {
	case config.EngineChromium, "":
		return pw.Chromium, nil
	case config.EngineFirefox:
		return pw.Firefox, nil
	case config.EngineWebKit:
		return pw.WebKit, nil
	}
	return nil, fmt.Errorf("unsupported browser engine %q", engine)
}

// NewContext opens an isolated browser context with the session viewport and video settings
func (b *PlaywrightBackend) NewContext(cfg config.SessionConfig) (playwright.BrowserContext, error) {
	return b.browser.NewContext(ContextOptions(cfg))
}

// ContextOptions translates a session config into playwright context options
func ContextOptions(cfg config.SessionConfig) playwright.BrowserNewContextOptions {
	viewport := &playwright.Size{
		Width:  cfg.ViewportWidth,
		Height: cfg.ViewportHeight,
	}

	opts := playwright.BrowserNewContextOptions{
		Viewport: viewport,
	}
	if cfg.RecordsVideo() {
		opts.RecordVideo = &playwright.RecordVideo{
			Dir:  cfg.VideoDir,
			Size: viewport,
		}
	}
	return opts
}

// Close closes the browser and stops the driver; safe to call multiple times
func (b *PlaywrightBackend) Close() error {
	b.closeOnce.Do(func() {
		if err := b.browser.Close(); err != nil {
			b.closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		if err := b.pw.Stop(); err != nil && b.closeErr == nil {
			b.closeErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
	})
	return b.closeErr
}
