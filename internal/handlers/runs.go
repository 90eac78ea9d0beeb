package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/themizzi/sitecheck/internal/models"
	"go.uber.org/zap"
)

// RunReader is the read side of the run service
type RunReader interface {
	GetRun(id string) (*models.Run, error)
	ListRuns(limit int) ([]*models.Run, error)
}

// RunResponse is the JSON shape of one run
type RunResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	VideoPath    string     `json:"video_path,omitempty"`
	DurationMs   int64      `json:"duration_ms"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// NewRunResponse converts a run for the API
func NewRunResponse(run *models.Run) RunResponse {
	resp := RunResponse{
		ID:           run.ID,
		Name:         run.Name,
		Kind:         string(run.Kind),
		Status:       string(run.Status),
		ErrorKind:    string(run.ErrorKind),
		ErrorMessage: run.ErrorMessage,
		VideoPath:    run.VideoPath,
		DurationMs:   run.DurationMs,
		StartedAt:    run.StartedAt,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		resp.FinishedAt = &finished
	}
	return resp
}

// RunsHandler serves the run history as JSON
type RunsHandler struct {
	runs   RunReader
	logger *zap.Logger
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(runs RunReader, logger *zap.Logger) *RunsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunsHandler{
		runs:   runs,
		logger: logger,
	}
}

// List handles GET /api/runs
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		sendErrorResponse(w, "limit must be a positive integer", http.StatusBadRequest)
		return
	}

	runs, err := h.runs.ListRuns(limit)
	if err != nil {
		h.logger.Error("failed to list runs", zap.Error(err))
		sendErrorResponse(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}

	resp := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, NewRunResponse(run))
	}
	writeJSON(w, h.logger, resp)
}

// Get handles GET /api/runs/{id}
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.runs.GetRun(id)
	if errors.Is(err, models.ErrRunNotFound) {
		sendErrorResponse(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get run", zap.String("id", id), zap.Error(err))
		sendErrorResponse(w, "Failed to get run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, NewRunResponse(run))
}

// parseLimit returns 0 for an empty value so the repository default applies
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("invalid limit")
	}
	return limit, nil
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}
