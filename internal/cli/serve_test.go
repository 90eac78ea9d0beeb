package cli

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/themizzi/sitecheck/internal/config"
	"go.uber.org/zap/zaptest"
)

func stubHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

// reportDeps returns dependencies whose handlers echo the route they serve
func reportDeps(t *testing.T, port string) ServerDependencies {
	return ServerDependencies{
		ServerConfig:  config.ServerConfig{Port: port},
		ReportHandler: stubHandler("report"),
		ListRuns:      stubHandler("runs"),
		GetRun: func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("run " + chi.URLParam(r, "id")))
		},
		HealthHandler:  stubHandler("ok"),
		MetricsHandler: stubHandler("metrics"),
		Logger:         zaptest.NewLogger(t),
	}
}

func reportURL(listener net.Listener) string {
	return fmt.Sprintf("http://localhost:%d/", listener.Addr().(*net.TCPAddr).Port)
}

func TestNewRouter_Routes(t *testing.T) {
	router := NewRouter(reportDeps(t, "0"))

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, "report"},
		{"/api/runs", http.StatusOK, "runs"},
		{"/api/runs/4f1c2a", http.StatusOK, "run 4f1c2a"},
		{"/healthz", http.StatusOK, "ok"},
		{"/metrics", http.StatusOK, "metrics"},
		{"/api/scenarios", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("Expected body %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	router := NewRouter(reportDeps(t, "0"))

	req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestNewRouter_DefaultMetrics(t *testing.T) {
	deps := reportDeps(t, "0")
	deps.MetricsHandler = nil
	router := NewRouter(deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("Expected prometheus exposition from the default registry")
	}
}

func TestNewRouter_RecoversPanics(t *testing.T) {
	deps := reportDeps(t, "0")
	deps.ReportHandler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("template exploded")
	})
	router := NewRouter(deps)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestStartServer(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to reserve a port: %v", err)
	}
	defer busy.Close()
	busyPort := fmt.Sprintf("%d", busy.Addr().(*net.TCPAddr).Port)

	tests := []struct {
		name    string
		port    string
		wantErr bool
	}{
		{"ephemeral port serves the report", "0", false},
		{"port out of range", "99999", true},
		{"port already in use", busyPort, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			deps := reportDeps(t, tt.port)

			// WHEN
			listener, server, err := StartServer(deps)

			// THEN
			if tt.wantErr {
				if err == nil {
					server.Close()
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("StartServer() error = %v", err)
			}
			defer server.Close()

			resp, err := http.Get(reportURL(listener))
			if err != nil {
				t.Fatalf("Failed to fetch report: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if string(body) != "report" {
				t.Errorf("Expected 'report', got %q", body)
			}
		})
	}
}

func TestWaitForShutdown_DrainsInFlightReport(t *testing.T) {
	// GIVEN a report render that is still running when SIGTERM arrives
	started := make(chan struct{})
	var once sync.Once
	deps := reportDeps(t, "0")
	deps.ReportHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		time.Sleep(150 * time.Millisecond)
		w.Write([]byte("report"))
	})

	listener, server, err := StartServer(deps)
	if err != nil {
		t.Fatalf("StartServer() error = %v", err)
	}

	type result struct {
		body string
		err  error
	}
	resultCh := make(chan result, 1)
	go func() {
		resp, err := http.Get(reportURL(listener))
		if err != nil {
			resultCh <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		resultCh <- result{body: string(body), err: err}
	}()
	<-started

	// WHEN
	shutdown := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- WaitForShutdown(server, shutdown)
	}()
	shutdown <- syscall.SIGTERM

	// THEN the render completes and the server stops cleanly
	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("In-flight report failed: %v", res.err)
		}
		if res.body != "report" {
			t.Errorf("Expected 'report', got %q", res.body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("In-flight report did not complete")
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Expected nil error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForShutdown did not return")
	}

	if _, err := http.Get(reportURL(listener)); err == nil {
		t.Error("Expected the server to refuse requests after shutdown")
	}
}

func TestWaitForShutdownWithTimeout_ForceClosesStuckReport(t *testing.T) {
	// GIVEN a report render that never finishes on its own
	started := make(chan struct{})
	var once sync.Once
	unblock := make(chan struct{})
	defer close(unblock)

	deps := reportDeps(t, "0")
	deps.ReportHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		select {
		case <-unblock:
		case <-r.Context().Done():
		}
	})

	listener, server, err := StartServer(deps)
	if err != nil {
		t.Fatalf("StartServer() error = %v", err)
	}

	clientErr := make(chan error, 1)
	go func() {
		resp, err := http.Get(reportURL(listener))
		if err == nil {
			_, err = io.ReadAll(resp.Body)
			resp.Body.Close()
		}
		clientErr <- err
	}()
	<-started

	// WHEN the grace period runs out
	shutdown := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	start := time.Now()
	go func() {
		errCh <- WaitForShutdownWithTimeout(server, shutdown, 50*time.Millisecond)
	}()
	shutdown <- syscall.SIGINT

	// THEN the server is closed without waiting for the render
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Expected nil error after force close, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("Expected force close shortly after the grace period, took %v", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForShutdownWithTimeout did not return")
	}

	select {
	case err := <-clientErr:
		if err == nil {
			t.Error("Expected the stuck request to be cut off")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stuck request was not cut off")
	}
}

func TestRunServe_StartupFailure(t *testing.T) {
	err := RunServe(reportDeps(t, "99999"))

	if err == nil {
		t.Error("Expected error for invalid port, got nil")
	}
}
