// Package api exposes the incident analytics HTTP surface: dataset
// ingestion, temporal analysis, forecasting and clustering.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lvonguyen/incidentscope/internal/api/gateway"
	"github.com/lvonguyen/incidentscope/internal/config"
	"github.com/lvonguyen/incidentscope/internal/dataset"
	"github.com/lvonguyen/incidentscope/internal/observability"
)

// Server wires the HTTP handlers to the dataset store and the analytics
// engines.
type Server struct {
	store   *dataset.Store
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewServer creates the API server around a dataset store.
func NewServer(store *dataset.Store, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) *Server {
	return &Server{
		store:   store,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Router builds the chi router with the standard middleware stack. limiter
// may be nil when rate limiting is not wanted (tests).
func (s *Server) Router(limiter *gateway.RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/incidents/upload", s.handleUpload)
		r.Post("/incidents/generate", s.handleGenerate)
		r.Post("/clustering/analyze", s.handleClustering)
		r.Post("/analysis/temporal", s.handleTemporal)
		r.Post("/analysis/predictions", s.handlePredictions)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
