package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ejankowski/crawlmark"
	"github.com/ejankowski/crawlmark/crawl"
	"github.com/ejankowski/crawlmark/zip"
)

// Server exposes the crawl service over a JSON API.
type Server struct {
	router chi.Router

	JobService    crawlmark.JobService
	ResultService crawlmark.ResultService
	Engine        *crawl.Engine
	Logger        *slog.Logger
}

// NewServer constructs a Server and mounts its routes.
func NewServer(jobs crawlmark.JobService, results crawlmark.ResultService, engine *crawl.Engine, logger *slog.Logger) *Server {
	s := &Server{
		JobService:    jobs,
		ResultService: results,
		Engine:        engine,
		Logger:        logger,
	}

	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Route("/api", func(r chi.Router) {
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.handleCreateJob)
			r.Get("/", s.handleListJobs)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetJob)
				r.Get("/results", s.handleListResults)
				r.Get("/export", s.handleExport)
			})
		})
		r.Post("/patterns/validate", s.handleValidatePattern)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// logRequests records one log line per handled request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger().Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// handleCreateJob validates and persists a new job, then starts the crawl
// engine for it in the background. The response carries the pending job;
// progress is observed by polling.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var job crawlmark.CrawlJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		s.writeError(w, crawlmark.Errorf(crawlmark.EINVALID, "invalid JSON body: %v", err))
		return
	}

	if err := s.JobService.CreateJob(r.Context(), &job); err != nil {
		s.writeError(w, err)
		return
	}

	// The crawl outlives the request; its outcome lands in the job record.
	s.Engine.Start(context.Background(), job.ID)

	s.writeJSON(w, http.StatusCreated, &job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	var filter crawlmark.JobFilter

	if v := r.URL.Query().Get("status"); v != "" {
		status := crawlmark.JobStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, crawlmark.Errorf(crawlmark.EINVALID, "invalid limit: %v", err))
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, crawlmark.Errorf(crawlmark.EINVALID, "invalid offset: %v", err))
			return
		}
		filter.Offset = n
	}

	jobs, err := s.JobService.FindJobs(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*crawlmark.CrawlJob{}
	}

	s.writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.JobService.FindJobByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.JobService.FindJobByID(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	results, err := s.ResultService.FindResultsByJob(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if results == nil {
		results = []*crawlmark.CrawlResult{}
	}

	s.writeJSON(w, http.StatusOK, results)
}

// handleExport streams the job's successful results as a zip of Markdown
// files.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.JobService.FindJobByID(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	results, err := s.ResultService.FindResultsByJob(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "crawl-"+id+".zip"))
	if err := zip.WriteArchive(w, results); err != nil {
		// Headers are already sent, so the best we can do is log.
		s.logger().Error("zip export failed", "job", id, "err", err)
	}
}

func (s *Server) handleValidatePattern(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pattern string `json:"pattern"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, crawlmark.Errorf(crawlmark.EINVALID, "invalid JSON body: %v", err))
		return
	}

	valid, message := crawlmark.ValidatePattern(req.Pattern)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"valid":   valid,
		"message": message,
	})
}

// writeJSON writes v as a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Error("response encoding failed", "err", err)
	}
}

// writeError maps application error codes to HTTP status codes. Internal
// errors are logged and masked.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := crawlmark.ErrorCode(err)
	status := statusFromCode(code)
	message := crawlmark.ErrorMessage(err)

	if status == http.StatusInternalServerError {
		s.logger().Error("internal error", "err", err)
		message = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func statusFromCode(code string) int {
	switch code {
	case crawlmark.EINVALID:
		return http.StatusBadRequest
	case crawlmark.ENOTFOUND:
		return http.StatusNotFound
	case crawlmark.ECONFLICT:
		return http.StatusConflict
	case crawlmark.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
