package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/service/export"
)

// Server serves burndown reports over HTTP
type Server struct {
	*http.Server
	router   chi.Router
	reportUC interfaces.Reporter
}

// NewServer creates the HTTP server over the report use case
func NewServer(ctx context.Context, addr string, reportUC interfaces.Reporter) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	s := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router:   router,
		reportUC: reportUC,
	}

	router.Get("/health", handleHealth)

	router.Route("/api", func(r chi.Router) {
		r.Get("/milestones", s.handleMilestones)
		r.Get("/burndown/{milestone}", s.handleBurndown)
	})

	router.Get("/charts", s.handleChartPage)
	router.Get("/charts/{milestone}", s.handleChart)

	router.Route("/export", func(r chi.Router) {
		r.Get("/issues.tsv", s.handleExportTSV)
		r.Get("/burndown.xlsx", s.handleExportXLSX)
	})

	return s
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "lignite",
	}); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
	}
}

// milestoneSummary is the list entry returned by /api/milestones
type milestoneSummary struct {
	Name   string `json:"name"`
	Issues int    `json:"issues"`
	Open   int    `json:"open"`
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	reports, err := s.reportUC.Generate(r.Context())
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	summaries := make([]milestoneSummary, len(reports))
	for i, report := range reports {
		summaries[i] = milestoneSummary{
			Name:   report.Name,
			Issues: len(report.Issues),
		}
		if open, ok := report.Days.At(report.Days.End()); ok {
			summaries[i].Open = open
		}
	}

	writeJSON(w, r, summaries)
}

func (s *Server) handleBurndown(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "milestone")

	report, err := s.reportUC.Find(r.Context(), name)
	if err != nil {
		if errors.Is(err, model.ErrMilestoneNotFound) {
			writeError(w, err, http.StatusNotFound)
		} else {
			writeError(w, err, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, r, report)
}

func (s *Server) handleChartPage(w http.ResponseWriter, r *http.Request) {
	reports, err := s.reportUC.Generate(r.Context())
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.WriteChartPage(w, reports); err != nil {
		ctxlog.From(r.Context()).Error("Failed to render chart page", "error", err)
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "milestone")

	report, err := s.reportUC.Find(r.Context(), name)
	if err != nil {
		if errors.Is(err, model.ErrMilestoneNotFound) {
			writeError(w, err, http.StatusNotFound)
		} else {
			writeError(w, err, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.WriteChart(w, report); err != nil {
		ctxlog.From(r.Context()).Error("Failed to render chart", "error", err)
	}
}

func (s *Server) handleExportTSV(w http.ResponseWriter, r *http.Request) {
	snap, err := s.reportUC.Snapshot(r.Context())
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/tab-separated-values")
	w.Header().Set("Content-Disposition", `attachment; filename="issues.tsv"`)
	if err := export.WriteTSV(w, snap); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write TSV export", "error", err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, err := s.reportUC.Snapshot(r.Context())
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	reports, err := s.reportUC.Generate(r.Context())
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="burndown.xlsx"`)
	if err := export.WriteXLSX(w, snap, reports); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write workbook export", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var message string
	if goErr := goerr.Unwrap(err); goErr != nil {
		message = goErr.Error()
	} else {
		message = err.Error()
	}

	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	}); err != nil {
		ctxlog.From(context.Background()).Error("Failed to encode error response", "error", err)
	}
}
