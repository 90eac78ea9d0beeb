package session

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/playwright-community/playwright-go"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/models"
	"go.uber.org/zap"
)

// Page is a single browser page owned by one test for its duration
type Page struct {
	raw        playwright.Page
	browserCtx playwright.BrowserContext
	config     config.SessionConfig
	logger     *zap.Logger

	releaseOnce sync.Once
	released    atomic.Bool
	videoPath   string
}

// Raw exposes the underlying playwright page for actions and assertions
func (p *Page) Raw() playwright.Page {
	return p.raw
}

// Config returns the configuration the page was built from
func (p *Page) Config() config.SessionConfig {
	return p.config
}

// DefaultTimeout returns the effective default operation timeout in milliseconds
func (p *Page) DefaultTimeout() int {
	return p.config.DefaultTimeoutMs
}

// VideoPath returns the recorded video file; it is known only after Release
func (p *Page) VideoPath() string {
	return p.videoPath
}

// Released reports whether Release has finished; VideoPath is settled once it does
func (p *Page) Released() bool {
	return p.released.Load()
}

// SetViewport resizes the page viewport
func (p *Page) SetViewport(width, height int) error {
	if err := p.raw.SetViewportSize(width, height); err != nil {
		return WrapError("set viewport", err)
	}
	return nil
}

// Viewport reads back the current viewport size
func (p *Page) Viewport() (width, height int) {
	size := p.raw.ViewportSize()
	if size == nil {
		return 0, 0
	}
	return size.Width, size.Height
}

// Screenshot writes a screenshot to path and returns once the file exists
func (p *Page) Screenshot(path string, fullPage bool) error {
	if _, err := p.raw.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
	}); err != nil {
		return WrapError("screenshot", err)
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: screenshot not written to %s: %v", models.ErrAssertionFailed, path, err)
	}
	return nil
}

// Release closes the page and its browser context. It runs at most once,
// tolerates a page the library already closed and never fails the caller;
// close errors are logged.
func (p *Page) Release() {
	p.releaseOnce.Do(func() {
		defer p.released.Store(true)

		var video playwright.Video
		if p.config.RecordsVideo() {
			video = p.raw.Video()
		}

		if !p.raw.IsClosed() {
			if err := p.raw.Close(); err != nil && !errors.Is(err, playwright.ErrTargetClosed) {
				p.logger.Warn("failed to close page", zap.Error(err))
			}
		}

		// Closing the context flushes the video file
		if err := p.browserCtx.Close(); err != nil && !errors.Is(err, playwright.ErrTargetClosed) {
			p.logger.Warn("failed to close browser context", zap.Error(err))
		}

		if video != nil {
			path, err := video.Path()
			if err != nil {
				p.logger.Warn("video path unavailable", zap.Error(err))
			} else {
				p.videoPath = path
			}
		}

		p.logger.Debug("page released", zap.String("video_path", p.videoPath))
	})
}

// WrapError maps a playwright error onto the failure taxonomy
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s: %w: %v", op, models.ErrNetworkTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
