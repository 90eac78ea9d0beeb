package config

import (
	"fmt"
	"strings"
)

// Supported browser engines
const (
	EngineChromium = "chromium"
	EngineFirefox  = "firefox"
	EngineWebKit   = "webkit"
)

// BrowserConfig holds settings for launching the automation backend
type BrowserConfig struct {
	Engine   string
	Headless bool
	SlowMoMs int
}

// LoadBrowserConfig loads browser launch settings from environment variables.
// Set HEADLESS=false to watch the browser while debugging.
func LoadBrowserConfig(getenv func(string) string) (BrowserConfig, error) {
	config := BrowserConfig{
		Engine:   strings.ToLower(getenv("SITECHECK_BROWSER")),
		Headless: getenv("HEADLESS") != "false",
	}

	if config.Engine == "" {
		config.Engine = EngineChromium
	}
	if !IsSupportedEngine(config.Engine) {
		return config, fmt.Errorf("unsupported browser engine %q", config.Engine)
	}

	slowMo, err := intFromEnv(getenv, "SITECHECK_SLOWMO_MS", 0)
	if err != nil {
		return config, err
	}
	config.SlowMoMs = slowMo

	return config, nil
}

// IsSupportedEngine reports whether the backend can launch the named engine
func IsSupportedEngine(engine string) bool {
	switch engine {
	case EngineChromium, EngineFirefox, EngineWebKit:
		return true
	}
	return false
}
