// Package api exposes the scraper and the stored profiles over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"linkedin-leads/internal/models"
	"linkedin-leads/internal/orchestrator"
)

const maxScrapeBodySize = 1 << 20 // 1MB

// Scraper runs one scrape per request
type Scraper interface {
	Scrape(ctx context.Context, targetURL string) (orchestrator.Result, error)
	Runs() []models.ScrapeRun
}

// Searcher answers free-text queries over stored profiles
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.ProfileRecord, error)
}

// Profiles reads single stored profiles
type Profiles interface {
	GetByURL(ctx context.Context, profileURL string) (models.ProfileRecord, error)
	Ping(ctx context.Context) error
}

type Deps struct {
	Scraper  Scraper
	Searcher Searcher
	Profiles Profiles
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type scrapeRequest struct {
	SearchURL string `json:"searchUrl"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth(deps))
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/linkedin", func(r chi.Router) {
		r.Post("/scrape", handleScrape(deps))
		r.Get("/search", handleSearch(deps))
		r.Get("/profiles", handleGetProfile(deps))
		r.Get("/runs", handleListRuns(deps))
	})

	return r
}

func handleScrape(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxScrapeBodySize)
		defer r.Body.Close()

		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, deps.Logger, models.ErrValidation, "invalid request body: searchUrl must be a string")
			return
		}
		if strings.TrimSpace(req.SearchURL) == "" {
			writeError(w, deps.Logger, models.ErrValidation, "searchUrl is required")
			return
		}

		res, err := deps.Scraper.Scrape(r.Context(), req.SearchURL)
		if err != nil {
			writeError(w, deps.Logger, err, "")
			return
		}

		w.Header().Set("X-Scrape-Run-Id", res.RunID)
		w.Header().Set("X-Scrape-Warnings", strconv.Itoa(res.Warnings))
		writeJSON(w, http.StatusOK, nonNil(res.Profiles))
	}
}

func handleSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := deps.Searcher.Search(r.Context(), r.URL.Query().Get("query"))
		if err != nil {
			writeError(w, deps.Logger, err, "")
			return
		}
		writeJSON(w, http.StatusOK, nonNil(profiles))
	}
}

func handleGetProfile(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileURL := strings.TrimSpace(r.URL.Query().Get("url"))
		if profileURL == "" {
			writeError(w, deps.Logger, models.ErrValidation, "url is required")
			return
		}
		profile, err := deps.Profiles.GetByURL(r.Context(), profileURL)
		if err != nil {
			writeError(w, deps.Logger, err, "")
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func handleListRuns(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Scraper.Runs())
	}
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Profiles.Ping(r.Context()); err != nil {
			deps.Logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// StatusFor maps the error taxonomy onto HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrNoResults):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAuth):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrNavigationTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, models.ErrConfig), errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error, message string) {
	status := StatusFor(err)
	if message == "" {
		message = err.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func nonNil(profiles []models.ProfileRecord) []models.ProfileRecord {
	if profiles == nil {
		return []models.ProfileRecord{}
	}
	return profiles
}
