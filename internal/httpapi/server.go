// Package httpapi serves the read-only analysis API plus the watchlist
// management endpoints.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/coinsight/coinsight/internal/config"
	"github.com/coinsight/coinsight/internal/domain"
	"github.com/coinsight/coinsight/internal/store"
	"github.com/coinsight/coinsight/internal/telemetry"
)

// Analyzer is the analysis surface the API exposes.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*domain.AnalysisResult, error)
}

// Server is the HTTP front of the analysis engine.
type Server struct {
	router    *mux.Router
	server    *http.Server
	analyzer  Analyzer
	watchlist store.WatchlistRepo
	metrics   *telemetry.MetricsRegistry
	log       zerolog.Logger
}

// NewServer wires the routes. watchlist and metrics may be nil; their
// endpoints degrade accordingly.
func NewServer(cfg config.ServerConfig, analyzer Analyzer, watchlist store.WatchlistRepo, metrics *telemetry.MetricsRegistry, log zerolog.Logger) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		analyzer:  analyzer,
		watchlist: watchlist,
		metrics:   metrics,
		log:       log.With().Str("component", "httpapi").Logger(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/analyze/{symbol}", s.handleAnalyze).Methods("GET")
	api.HandleFunc("/watchlist", s.handleWatchlistList).Methods("GET")
	api.HandleFunc("/watchlist/{symbol}", s.handleWatchlistAdd).Methods("POST")
	api.HandleFunc("/watchlist/{symbol}", s.handleWatchlistRemove).Methods("DELETE")

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
