package scenario

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/themizzi/sitecheck/internal/browsertest"
	"github.com/themizzi/sitecheck/internal/config"
	"github.com/themizzi/sitecheck/internal/models"
	"github.com/themizzi/sitecheck/internal/session"
)

func testTargets() config.TargetsConfig {
	return config.LoadTargetsConfig(func(string) string { return "" })
}

func runOnFake(t *testing.T, backend *browsertest.Backend, s Scenario) error {
	t.Helper()
	defaults := session.SessionDefaults().With(config.WithoutVideo())
	provider := session.NewProvider(backend, defaults, nil)
	return provider.WithPage(provider.Config(s.Overrides...), func(page *session.Page) error {
		return s.Run(page, testTargets())
	})
}

func TestAll_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range All() {
		if seen[s.Name] {
			t.Errorf("duplicate scenario name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Run == nil {
			t.Errorf("scenario %q has no Run func", s.Name)
		}
		if !s.HasTag(TagSlow) {
			t.Errorf("scenario %q must be tagged %q", s.Name, TagSlow)
		}
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 scenarios, got %d", len(seen))
	}
}

func TestByName(t *testing.T) {
	s, err := ByName("mobile_viewport")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !s.HasTag(TagMobile) {
		t.Errorf("expected mobile_viewport to be tagged %q", TagMobile)
	}

	if _, err := ByName("nope"); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		tags    []string
		want    []string
		wantErr bool
	}{
		{
			name: "performance tag",
			tags: []string{TagPerformance},
			want: []string{"page_load_performance", "multiple_requests_performance"},
		},
		{
			name:  "names keep request order",
			names: []string{"screenshot", "google_search"},
			want:  []string{"screenshot", "google_search"},
		},
		{
			name:  "names filtered by tag",
			names: []string{"screenshot", "google_search"},
			tags:  []string{TagLocal},
			want:  []string{"screenshot"},
		},
		{
			name: "no match",
			tags: []string{TagMobile, TagPerformance},
			want: []string{},
		},
		{
			name:    "unknown name",
			names:   []string{"screenshot", "missing"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected, err := Select(tt.names, tt.tags)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			got := []string{}
			for _, s := range selected {
				got = append(got, s.Name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSelect_DoesNotMutateCatalogue(t *testing.T) {
	if _, err := Select([]string{"screenshot"}, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := All()[0].Name; got != "google_search" {
		t.Errorf("catalogue order changed, first is %q", got)
	}
}

func TestPerformanceScenariosSkipVideo(t *testing.T) {
	for _, s := range All() {
		cfg := session.SessionDefaults().With(s.Overrides...)
		if s.HasTag(TagPerformance) == cfg.RecordsVideo() {
			t.Errorf("scenario %q: performance=%v but records video=%v", s.Name, s.HasTag(TagPerformance), cfg.RecordsVideo())
		}
	}
}

func TestMobileViewport(t *testing.T) {
	backend := &browsertest.Backend{}

	if err := runOnFake(t, backend, mustScenario(t, "mobile_viewport")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	page := backend.LastPage()
	size := page.ViewportSize()
	if size.Width != 375 || size.Height != 667 {
		t.Errorf("expected 375x667, got %dx%d", size.Width, size.Height)
	}
	if visited := page.Visited(); len(visited) != 1 || visited[0] != testTargets().GoogleURL {
		t.Errorf("expected a single visit to %s, got %v", testTargets().GoogleURL, visited)
	}
}

func TestScreenshot(t *testing.T) {
	exampleURL := testTargets().ExampleURL

	tests := []struct {
		name    string
		html    string
		wantErr error
	}{
		{
			name: "rendered page",
			html: `<html><head><title>Example Domain</title></head>
<body><h1>Example Domain</h1><a href="https://www.iana.org/domains/example">More information...</a></body></html>`,
		},
		{
			name:    "blank page",
			html:    "",
			wantErr: models.ErrAssertionFailed,
		},
		{
			name:    "page without links",
			html:    "<html><head><title>Example Domain</title></head><body></body></html>",
			wantErr: models.ErrAssertionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			backend := &browsertest.Backend{HTML: map[string]string{exampleURL: tt.html}}

			// WHEN
			err := runOnFake(t, backend, mustScenario(t, "screenshot"))

			// THEN
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if _, err := os.Stat(ScreenshotFile); !os.IsNotExist(err) {
				os.Remove(ScreenshotFile)
				t.Errorf("expected %s to be removed, stat err: %v", ScreenshotFile, err)
			}
		})
	}
}

func TestNetworkInterception(t *testing.T) {
	backend := &browsertest.Backend{}

	if err := runOnFake(t, backend, mustScenario(t, "network_interception")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if n := backend.LastPage().RequestListeners(); n != 0 {
		t.Errorf("expected request listener to be detached, %d remain", n)
	}
}

func TestNetworkInterception_NavigationFails(t *testing.T) {
	backend := &browsertest.Backend{}
	provider := session.NewProvider(backend, session.SessionDefaults().With(config.WithoutVideo()), nil)

	err := provider.WithPage(provider.Config(), func(page *session.Page) error {
		backend.LastPage().GotoErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
		return NetworkInterception(page, testTargets())
	})

	if err == nil {
		t.Fatal("expected navigation error")
	}
	if n := backend.LastPage().RequestListeners(); n != 0 {
		t.Errorf("expected request listener to be detached, %d remain", n)
	}
}

func TestPerformanceScenarios(t *testing.T) {
	for _, name := range []string{"page_load_performance", "multiple_requests_performance"} {
		t.Run(name, func(t *testing.T) {
			backend := &browsertest.Backend{}

			if err := runOnFake(t, backend, mustScenario(t, name)); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(backend.Configs()) != 1 || backend.Configs()[0].RecordsVideo() {
				t.Errorf("expected a single context without video, got %+v", backend.Configs())
			}
		})
	}
}

func TestNavigationTimeoutIsClassified(t *testing.T) {
	backend := &browsertest.Backend{}
	provider := session.NewProvider(backend, session.SessionDefaults().With(config.WithoutVideo()), nil)

	err := provider.WithPage(provider.Config(), func(page *session.Page) error {
		backend.LastPage().GotoErr = fmt.Errorf("navigating: %w", playwright.ErrTimeout)
		return PageLoadPerformance(page, testTargets())
	})

	if !errors.Is(err, models.ErrNetworkTimeout) {
		t.Errorf("expected ErrNetworkTimeout, got %v", err)
	}
	if got := models.Classify(err); got != models.ErrorKindNetworkTimeout {
		t.Errorf("expected kind %q, got %q", models.ErrorKindNetworkTimeout, got)
	}
}

func TestWithinBudget(t *testing.T) {
	if err := withinBudget("load", PageLoadBudget/2, PageLoadBudget); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	err := withinBudget("load", PageLoadBudget, PageLoadBudget)
	if !errors.Is(err, models.ErrAssertionFailed) {
		t.Errorf("expected ErrAssertionFailed, got %v", err)
	}
}

func TestHostOf(t *testing.T) {
	tests := map[string]string{
		"https://httpbin.org":        "httpbin.org",
		"http://127.0.0.1:8080/base": "127.0.0.1:8080",
		"not a url":                  "not a url",
	}
	for in, want := range tests {
		if got := hostOf(in); got != want {
			t.Errorf("hostOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func mustScenario(t *testing.T, name string) Scenario {
	t.Helper()
	s, err := ByName(name)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return s
}
