package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/themizzi/sitecheck/internal/models"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// ReportData is the data for the report template
type ReportData struct {
	Runs   []*models.Run
	Passed int
	Failed int
}

// ReportHandler renders the run history as an HTML page
type ReportHandler struct {
	template *template.Template
	runs     RunReader
	limit    int
	logger   *zap.Logger
}

// NewReportHandler creates a new report handler showing up to limit runs
func NewReportHandler(runs RunReader, limit int, logger *zap.Logger) (*ReportHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReportHandler{
		template: tmpl,
		runs:     runs,
		limit:    limit,
		logger:   logger,
	}, nil
}

// ServeHTTP handles the GET / request
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runs, err := h.runs.ListRuns(h.limit)
	if err != nil {
		h.logger.Error("failed to list runs", zap.Error(err))
		http.Error(w, "Failed to load runs", http.StatusInternalServerError)
		return
	}

	data := ReportData{Runs: runs}
	for _, run := range runs {
		switch {
		case run.IsPassed():
			data.Passed++
		case run.IsFailed():
			data.Failed++
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		h.logger.Error("failed to render report", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
