package config

import (
	"fmt"
	"strconv"
)

// Session-wide defaults applied to every page unless a test overrides them
const (
	DefaultViewportWidth    = 1920
	DefaultViewportHeight   = 1080
	DefaultVideoDir         = "test-videos/"
	DefaultDefaultTimeoutMs = 30000
)

// SessionConfig holds the per-scope settings handed to each page.
// It is a value type: overrides produce a copy and never touch the receiver.
type SessionConfig struct {
	ViewportWidth    int
	ViewportHeight   int
	VideoDir         string
	DefaultTimeoutMs int
}

// Override adjusts a copy of a SessionConfig for a narrower scope
type Override func(*SessionConfig)

// SessionDefaults returns the session-wide defaults
func SessionDefaults() SessionConfig {
	return SessionConfig{
		ViewportWidth:    DefaultViewportWidth,
		ViewportHeight:   DefaultViewportHeight,
		VideoDir:         DefaultVideoDir,
		DefaultTimeoutMs: DefaultDefaultTimeoutMs,
	}
}

// With returns a copy of the config with the overrides applied in order
func (c SessionConfig) With(overrides ...Override) SessionConfig {
	out := c
	for _, o := range overrides {
		if o != nil {
			o(&out)
		}
	}
	return out
}

// RecordsVideo reports whether pages built from this config record video
func (c SessionConfig) RecordsVideo() bool {
	return c.VideoDir != ""
}

// Validate checks that the config can be handed to the automation backend
func (c SessionConfig) Validate() error {
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.DefaultTimeoutMs < 0 {
		return fmt.Errorf("default timeout must not be negative, got %d", c.DefaultTimeoutMs)
	}
	return nil
}

// WithViewport overrides the viewport dimensions
func WithViewport(width, height int) Override {
	return func(c *SessionConfig) {
		c.ViewportWidth = width
		c.ViewportHeight = height
	}
}

// WithVideoDir overrides the video recording directory
func WithVideoDir(dir string) Override {
	return func(c *SessionConfig) {
		c.VideoDir = dir
	}
}

// WithoutVideo disables video recording
func WithoutVideo() Override {
	return WithVideoDir("")
}

// WithDefaultTimeout overrides the default operation timeout in milliseconds
func WithDefaultTimeout(ms int) Override {
	return func(c *SessionConfig) {
		c.DefaultTimeoutMs = ms
	}
}

// LoadSessionConfig loads session defaults and applies environment overrides
func LoadSessionConfig(getenv func(string) string) (SessionConfig, error) {
	cfg := SessionDefaults()

	width, err := intFromEnv(getenv, "SITECHECK_VIEWPORT_WIDTH", cfg.ViewportWidth)
	if err != nil {
		return cfg, err
	}
	height, err := intFromEnv(getenv, "SITECHECK_VIEWPORT_HEIGHT", cfg.ViewportHeight)
	if err != nil {
		return cfg, err
	}
	timeout, err := intFromEnv(getenv, "SITECHECK_DEFAULT_TIMEOUT_MS", cfg.DefaultTimeoutMs)
	if err != nil {
		return cfg, err
	}

	cfg = cfg.With(WithViewport(width, height), WithDefaultTimeout(timeout))

	// "none" turns recording off since an empty variable means "use the default"
	switch dir := getenv("SITECHECK_VIDEO_DIR"); dir {
	case "":
	case "none":
		cfg = cfg.With(WithoutVideo())
	default:
		cfg = cfg.With(WithVideoDir(dir))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid session config: %w", err)
	}

	return cfg, nil
}

// intFromEnv parses an integer variable, falling back to def when unset
func intFromEnv(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
