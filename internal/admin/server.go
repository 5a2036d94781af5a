// Package admin exposes cadence's HTTP operator surface: health, status,
// Prometheus metrics, job control, run history, and a live job-event
// WebSocket stream.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flemzord/cadence/internal/config"
	"github.com/flemzord/cadence/internal/history"
	"github.com/flemzord/cadence/internal/schedule"
)

// RunSource serves recent run history for a job. Satisfied by
// *history.Store; nil when history is disabled.
type RunSource interface {
	Recent(ctx context.Context, job string, n int) ([]history.Run, error)
}

// Server is the admin HTTP server.
type Server struct {
	cfg       config.AdminConfig
	logger    *slog.Logger
	sched     *schedule.Scheduler
	runs      RunSource
	gatherer  prometheus.Gatherer
	hub       *Hub
	startedAt time.Time
	server    *http.Server
}

// New creates an admin server. runs and gatherer may be nil; the
// corresponding endpoints degrade gracefully.
func New(cfg config.AdminConfig, sched *schedule.Scheduler, runs RunSource, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		sched:    sched,
		runs:     runs,
		gatherer: gatherer,
		hub:      NewHub(logger),
	}
}

// Hub returns the event hub; wire its Publish to the scheduler's OnEvent.
func (s *Server) Hub() *Hub {
	return s.hub
}

// buildRouter constructs the chi mux with all routes wired.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public, no auth required.
	r.Get("/health", s.handleHealth())
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// Control endpoints require auth and are not mounted without it.
	if s.cfg.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.cfg.Auth))
			r.Get("/status", s.handleStatus())
			r.Get("/ws/events", s.hub.handleEvents())
			r.Route("/api", func(r chi.Router) {
				r.Get("/jobs", s.handleListJobs())
				r.Post("/jobs/start-all", s.handleStartAll())
				r.Post("/jobs/stop-all", s.handleStopAll())
				r.Post("/jobs/{name}/start", s.handleStartJob())
				r.Post("/jobs/{name}/stop", s.handleStopJob())
				r.Get("/jobs/{name}/runs", s.handleJobRuns())
			})
		})
	}

	return r
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.startedAt = time.Now()

	s.server = &http.Server{
		Addr:         s.cfg.Bind,
		Handler:      s.buildRouter(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", s.cfg.Bind)
	if err != nil {
		return fmt.Errorf("admin: listen: %w", err)
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("admin: server error", "error", err)
		}
	}()

	s.logger.Info("admin: server started",
		"bind", s.cfg.Bind,
		"auth", s.cfg.Auth.IsConfigured(),
		"metrics", s.gatherer != nil,
	)
	return nil
}

// Shutdown drains in-flight requests and closes event subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("admin: shutdown: %w", err)
	}
	s.logger.Info("admin: server stopped")
	return nil
}
