package config

import "strings"

// TargetsConfig holds the base URLs of the sites under test
type TargetsConfig struct {
	HTTPBinURL string
	ExampleURL string
	GoogleURL  string
	GitHubURL  string
}

// LoadTargetsConfig loads target URLs from environment variables, defaulting to the public sites
func LoadTargetsConfig(getenv func(string) string) TargetsConfig {
	return TargetsConfig{
		HTTPBinURL: envOrDefault(getenv, "SITECHECK_HTTPBIN_URL", "https://httpbin.org"),
		ExampleURL: envOrDefault(getenv, "SITECHECK_EXAMPLE_URL", "https://example.com"),
		GoogleURL:  envOrDefault(getenv, "SITECHECK_GOOGLE_URL", "https://www.google.com"),
		GitHubURL:  envOrDefault(getenv, "SITECHECK_GITHUB_URL", "https://github.com"),
	}
}

// HTTPBin joins a path onto the httpbin base URL
func (t TargetsConfig) HTTPBin(path string) string {
	return joinURL(t.HTTPBinURL, path)
}

func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func envOrDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}
