package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML suite file.
//
//	session:
//	  viewport: {width: 1280, height: 720}
//	  video_dir: test-videos/
//	  default_timeout_ms: 15000
//	browser:
//	  engine: firefox
//	  headless: false
//	targets:
//	  httpbin: http://localhost:8081
//	scenarios: [screenshot, mobile_viewport]
//	checks:
//	  - name: teapot
//	    path: /status/418
//	    expect_status: 418
type FileConfig struct {
	Session struct {
		Viewport struct {
			Width  int `yaml:"width"`
			Height int `yaml:"height"`
		} `yaml:"viewport"`
		VideoDir         string `yaml:"video_dir"`
		DefaultTimeoutMs int    `yaml:"default_timeout_ms"`
	} `yaml:"session"`
	Browser struct {
		Engine   string `yaml:"engine"`
		Headless *bool  `yaml:"headless"`
		SlowMoMs int    `yaml:"slow_mo_ms"`
	} `yaml:"browser"`
	Targets struct {
		HTTPBin string `yaml:"httpbin"`
		Example string `yaml:"example"`
		Google  string `yaml:"google"`
		GitHub  string `yaml:"github"`
	} `yaml:"targets"`
	Store struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"store"`
	Scenarios []string      `yaml:"scenarios"`
	Checks    []CheckConfig `yaml:"checks"`
}

// CheckConfig declares one HTTP check against the httpbin target
type CheckConfig struct {
	Name              string `yaml:"name"`
	Path              string `yaml:"path"`
	ExpectStatus      int    `yaml:"expect_status"`
	ExpectJSONKey     string `yaml:"expect_json_key"`
	ExpectContentType string `yaml:"expect_content_type"`
	ExpectSelector    string `yaml:"expect_selector"`
}

// LoadFile reads and parses a YAML suite file
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for i, c := range fc.Checks {
		if c.Name == "" {
			return nil, fmt.Errorf("check %d: name is required", i)
		}
		if c.Path == "" {
			return nil, fmt.Errorf("check %q: path is required", c.Name)
		}
	}

	return &fc, nil
}

// Env flattens the file into the environment variables the loaders read
func (fc *FileConfig) Env() map[string]string {
	env := map[string]string{}
	setInt := func(key string, v int) {
		if v != 0 {
			env[key] = strconv.Itoa(v)
		}
	}
	setString := func(key, v string) {
		if v != "" {
			env[key] = v
		}
	}

	setInt("SITECHECK_VIEWPORT_WIDTH", fc.Session.Viewport.Width)
	setInt("SITECHECK_VIEWPORT_HEIGHT", fc.Session.Viewport.Height)
	setString("SITECHECK_VIDEO_DIR", fc.Session.VideoDir)
	setInt("SITECHECK_DEFAULT_TIMEOUT_MS", fc.Session.DefaultTimeoutMs)

	setString("SITECHECK_BROWSER", fc.Browser.Engine)
	if fc.Browser.Headless != nil {
		env["HEADLESS"] = strconv.FormatBool(*fc.Browser.Headless)
	}
	setInt("SITECHECK_SLOWMO_MS", fc.Browser.SlowMoMs)

	setString("SITECHECK_HTTPBIN_URL", fc.Targets.HTTPBin)
	setString("SITECHECK_EXAMPLE_URL", fc.Targets.Example)
	setString("SITECHECK_GOOGLE_URL", fc.Targets.Google)
	setString("SITECHECK_GITHUB_URL", fc.Targets.GitHub)

	setString("SITECHECK_STORE_DRIVER", fc.Store.Driver)
	setString("SITECHECK_STORE_DSN", fc.Store.DSN)

	return env
}

// Layered returns a getenv that prefers the process environment and falls back to the file
func Layered(getenv func(string) string, fc *FileConfig) func(string) string {
	if fc == nil {
		return getenv
	}
	fileEnv := fc.Env()
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fileEnv[key]
	}
}
