package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadStoreConfig(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{
			name:       "sqlite default",
			env:        map[string]string{},
			wantDriver: StoreDriverSQLite,
			wantDSN:    "sitecheck.db",
		},
		{
			name: "postgres from POSTGRES_ variables",
			env: map[string]string{
				"SITECHECK_STORE_DRIVER": "postgres",
				"POSTGRES_USER":          "u",
				"POSTGRES_PASSWORD":      "p",
				"POSTGRES_DB":            "d",
				"POSTGRES_HOSTNAME":      "h",
			},
			wantDriver: StoreDriverPostgres,
			wantDSN:    "host=h user=u password=p dbname=d sslmode=disable",
		},
		{
			name: "postgres with explicit DSN",
			env: map[string]string{
				"SITECHECK_STORE_DRIVER": "postgres",
				"SITECHECK_STORE_DSN":    "postgres://x",
			},
			wantDriver: StoreDriverPostgres,
			wantDSN:    "postgres://x",
		},
		{
			name:    "postgres missing user",
			env:     map[string]string{"SITECHECK_STORE_DRIVER": "postgres"},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"SITECHECK_STORE_DRIVER": "mongo"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadStoreConfig(envMap(tt.env))
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadStoreConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Driver != tt.wantDriver {
				t.Errorf("expected driver %s, got %s", tt.wantDriver, got.Driver)
			}
			if got.DSN != tt.wantDSN {
				t.Errorf("expected DSN %s, got %s", tt.wantDSN, got.DSN)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "sitecheck.yaml")
	content := `
session:
  viewport: {width: 1280, height: 720}
  video_dir: none
browser:
  engine: webkit
  headless: false
targets:
  httpbin: http://localhost:8081
scenarios: [screenshot]
checks:
  - name: teapot
    path: /status/418
    expect_status: 418
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// WHEN
	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	getenv := Layered(envMap(map[string]string{"SITECHECK_VIEWPORT_WIDTH": "800"}), fc)

	// THEN
	session, err := LoadSessionConfig(getenv)
	if err != nil {
		t.Fatalf("LoadSessionConfig() error = %v", err)
	}
	if session.ViewportWidth != 800 {
		t.Errorf("expected environment to win over file, got width %d", session.ViewportWidth)
	}
	if session.ViewportHeight != 720 {
		t.Errorf("expected file height 720, got %d", session.ViewportHeight)
	}
	if session.RecordsVideo() {
		t.Error("expected video disabled by file")
	}

	browser, err := LoadBrowserConfig(getenv)
	if err != nil {
		t.Fatalf("LoadBrowserConfig() error = %v", err)
	}
	if browser.Engine != EngineWebKit || browser.Headless {
		t.Errorf("unexpected browser config %+v", browser)
	}

	if got := LoadTargetsConfig(getenv).HTTPBinURL; got != "http://localhost:8081" {
		t.Errorf("unexpected httpbin URL %s", got)
	}
	if len(fc.Checks) != 1 || fc.Checks[0].ExpectStatus != 418 {
		t.Errorf("unexpected checks %+v", fc.Checks)
	}
	if len(fc.Scenarios) != 1 || fc.Scenarios[0] != "screenshot" {
		t.Errorf("unexpected scenarios %v", fc.Scenarios)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"invalid yaml", "session: [", "failed to parse"},
		{"check without name", "checks:\n  - path: /get\n", "name is required"},
		{"check without path", "checks:\n  - name: get\n", "path is required"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, filepath.Base(t.Name())+string(rune('a'+i))+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			_, err := LoadFile(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %v", tt.wantMsg, err)
			}
		})
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadServerConfig(t *testing.T) {
	if got := LoadServerConfig(envMap(nil)); got.Port != "8080" || got.ShutdownTimeout != 30*time.Second {
		t.Errorf("unexpected defaults %+v", got)
	}
	if got := LoadServerConfig(envMap(map[string]string{"PORT": "9090"})); got.Port != "9090" {
		t.Errorf("expected port 9090, got %s", got.Port)
	}
}
