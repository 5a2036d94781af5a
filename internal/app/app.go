// Package app assembles a running cadence instance from configuration:
// logger, scheduler, job registration, run-history store, admin server,
// and telemetry, with one Run loop that blocks until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/cadence/internal/admin"
	"github.com/flemzord/cadence/internal/config"
	"github.com/flemzord/cadence/internal/history"
	"github.com/flemzord/cadence/internal/jobs"
	"github.com/flemzord/cadence/internal/schedule"
	"github.com/flemzord/cadence/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

// Collaborators are the external systems the built-in jobs talk to.
// A configured job whose collaborators are absent is skipped at
// registration with a warning instead of failing startup.
type Collaborators struct {
	Indexer      jobs.DocumentIndexer
	DigestSource jobs.DigestSource
	DigestSender jobs.DigestSender
	ContactQueue jobs.ContactQueue
	Messenger    jobs.Messenger
	FeedReader   jobs.FeedReader
	Curator      jobs.Curator
}

// Params configures New.
type Params struct {
	// ConfigPath is the YAML configuration file to load.
	ConfigPath string

	// Version is injected at build time via ldflags.
	Version string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// Jobs supplies the collaborators built-in jobs need.
	Jobs Collaborators
}

// App is an assembled but not yet running cadence instance.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	location *time.Location
	registry *prometheus.Registry

	sched *schedule.Scheduler
	store *history.Store
	srv   *admin.Server
	hub   *admin.Hub

	stopTracing func(context.Context) error
}

// New loads and validates the configuration at params.ConfigPath and wires
// every configured component. Nothing is started yet.
func New(params Params) (*App, error) {
	cfg, err := config.Load(params.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	location := schedule.DefaultLocation
	if cfg.Timezone != "" {
		location, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("app: load timezone: %w", err)
		}
	}

	a := &App{
		cfg:      cfg,
		logger:   logger,
		location: location,
		registry: prometheus.NewRegistry(),
	}

	if cfg.History != nil {
		path := cfg.History.Path
		if path == "" {
			path = filepath.Join(dataDir(params.DataDir), "history.db")
		}
		a.store, err = history.Open(path)
		if err != nil {
			return nil, err
		}
		logger.Info("run history enabled", "path", path)
	}

	var tracer trace.Tracer
	if cfg.Telemetry != nil {
		var stop func(context.Context) error
		tracer, stop, err = telemetry.Setup(context.Background(), *cfg.Telemetry, params.Version)
		if err != nil {
			a.closePartial()
			return nil, err
		}
		a.stopTracing = stop
	}

	schedCfg := schedule.Config{
		Logger:   logger,
		Location: location,
		Metrics:  schedule.NewMetrics(a.registry),
		Tracer:   tracer,
		// a.hub is assigned below once the admin server (when configured)
		// has built it; the closure reads it at event time.
		OnEvent: func(ev schedule.Event) {
			if a.hub != nil {
				a.hub.Publish(ev)
			}
		},
	}
	if a.store != nil {
		schedCfg.Recorder = a.store
	}
	a.sched = schedule.New(schedCfg)

	if cfg.Admin != nil {
		var runs admin.RunSource
		if a.store != nil {
			runs = a.store
		}
		a.srv = admin.New(*cfg.Admin, a.sched, runs, a.registry, logger)
		a.hub = a.srv.Hub()
	} else {
		a.hub = admin.NewHub(logger)
	}

	a.registerJobs(params.Jobs)

	return a, nil
}

// Run starts the admin server and every enabled job, then blocks until ctx
// is canceled. Shutdown stops jobs first so no new runs begin while the
// admin server drains.
func (a *App) Run(ctx context.Context) error {
	if a.srv != nil {
		if err := a.srv.Start(); err != nil {
			a.closePartial()
			return err
		}
	}

	a.sched.StartAll()
	a.logger.Info("cadence started", "jobs", len(a.sched.RegisteredJobs()))

	<-ctx.Done()
	a.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.Shutdown(shutdownCtx)

	a.logger.Info("shutdown complete")
	return err
}

// Shutdown stops every job, then releases resources in order: admin drain,
// telemetry flush, history close. Safe to call on an App whose components
// were never started, so alternative entry points (service manager, MCP
// stdio) share one teardown path with Run.
func (a *App) Shutdown(ctx context.Context) error {
	a.sched.StopAll()

	var errs []error
	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.stopTracing != nil {
		if err := a.stopTracing(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Scheduler exposes the scheduler for callers that register extra jobs
// before Run.
func (a *App) Scheduler() *schedule.Scheduler {
	return a.sched
}

// History returns the run-history store, or nil when history is disabled.
func (a *App) History() *history.Store {
	return a.store
}

func (a *App) closePartial() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.stopTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = a.stopTracing(ctx)
	}
}

func dataDir(override string) string {
	if override != "" {
		return override
	}
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "cadence")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cadence")
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
