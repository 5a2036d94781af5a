// Package schedule implements the recurring background-job scheduler that
// drives cadence's automation: typed registration of heterogeneous jobs,
// independent per-job cadences with optional startup staggering, a civil-time
// business-hours admission gate, and a uniform failure-isolation boundary so
// one job's panic-free error never affects another job or the process.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config holds scheduler construction options. The zero value is usable.
type Config struct {
	Logger *slog.Logger

	// Location is the civil timezone cron expressions fire in.
	// nil = DefaultLocation.
	Location *time.Location

	// Now is the clock the business-hours gate reads. Injectable for
	// testing; nil = time.Now.
	Now func() time.Time

	// Metrics, Recorder, Tracer, and OnEvent are optional observation
	// hooks; each may be nil.
	Metrics  *Metrics
	Recorder Recorder
	Tracer   trace.Tracer
	OnEvent  func(Event)
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Location == nil {
		c.Location = DefaultLocation
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Scheduler owns a registry of job configurations and a registry of
// running handles, both keyed by job name. All methods are safe for
// concurrent use; Start and Stop may be called from request-handling
// code while timers fire.
type Scheduler struct {
	cfg Config

	mu      sync.Mutex
	configs map[string]*entry
	running map[string]*handle
}

// handle is the runtime state of one started job: its pending one-shot
// initial timer and its recurring trigger. It exists exactly while the
// job is scheduled.
type handle struct {
	initial  *time.Timer  // pending first-run timer, nil for cron jobs
	ticker   *time.Ticker // recurring trigger, nil for cron jobs
	done     chan struct{}
	inFlight sync.Mutex // guards overlap only when skipWhileRunning is set
}

// New creates a Scheduler with no jobs registered.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:     cfg.withDefaults(),
		configs: make(map[string]*entry),
		running: make(map[string]*handle),
	}
}

// register inserts or replaces the registry entry for e.name. Replacing
// never touches a currently running handle; the new configuration takes
// effect on the next Start.
func (s *Scheduler) register(e *entry) {
	s.mu.Lock()
	_, exists := s.configs[e.name]
	s.configs[e.name] = e
	s.mu.Unlock()

	if exists {
		s.cfg.Logger.Warn("schedule: replacing existing job registration", "job", e.name)
	}
}

// Start arms timers for the named job. Starting an unknown job logs an
// error and returns; starting an already running job logs a warning and
// returns. Neither throws: scheduler misuse by one caller must not abort
// the rest of startup. The first attempt always happens after Start
// returns, never inline.
func (s *Scheduler) Start(name string) {
	s.mu.Lock()
	e, ok := s.configs[name]
	if !ok {
		s.mu.Unlock()
		s.cfg.Logger.Error("schedule: cannot start unregistered job", "job", name)
		return
	}
	if _, already := s.running[name]; already {
		s.mu.Unlock()
		s.cfg.Logger.Warn("schedule: job already started", "job", name)
		return
	}

	h := &handle{done: make(chan struct{})}

	if e.cronExpr != "" {
		sched, err := cron.ParseStandard(e.cronExpr)
		if err != nil {
			s.mu.Unlock()
			s.cfg.Logger.Error("schedule: invalid cron expression",
				"job", name, "cron", e.cronExpr, "error", err)
			return
		}
		go s.runCron(e, h, sched)
	} else {
		// Initial one-shot: a zero delay still fires asynchronously, so
		// starting many jobs at boot never serialises their first runs.
		var delay time.Duration
		if e.initialDelay != nil && e.initialDelay.Milliseconds() > 0 {
			delay = e.initialDelay.Duration()
		}
		h.initial = time.AfterFunc(delay, func() { s.attempt(e, h) })

		// Recurring trigger, measured from now, deliberately not chained
		// to the initial run's completion.
		h.ticker = time.NewTicker(e.interval.Duration())
		go s.runTicker(e, h)
	}

	s.running[name] = h
	s.mu.Unlock()

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.jobStarted()
	}
	s.cfg.Logger.Debug("schedule: job scheduled",
		"job", name,
		"interval", e.interval.String(),
		"cron", e.cronExpr,
		"initial_delay", e.initialDelay != nil,
		"business_hours", e.hours != nil,
	)
}

// StartAll starts every registered job.
func (s *Scheduler) StartAll() {
	for _, name := range s.RegisteredJobs() {
		s.Start(name)
	}

	s.mu.Lock()
	n := len(s.running)
	s.mu.Unlock()
	s.cfg.Logger.Info("schedule: all jobs started", "jobs", n)
}

// Stop cancels the named job's pending and recurring timers and drops its
// handle. Stopping a job that is not running is a silent no-op. An attempt
// already in flight runs to completion; its outcome is still logged, but
// no further attempts are scheduled.
func (s *Scheduler) Stop(name string) {
	s.mu.Lock()
	h, ok := s.running[name]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.running, name)
	s.mu.Unlock()

	if h.initial != nil {
		h.initial.Stop() // safe no-op if already fired
	}
	if h.ticker != nil {
		h.ticker.Stop()
	}
	close(h.done)

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.jobStopped()
	}
	s.cfg.Logger.Info("schedule: job stopped", "job", name)
}

// StopAll stops every currently running job. Safe to call with none running.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	names := make([]string, 0, len(s.running))
	for name := range s.running {
		names = append(names, name)
	}
	s.mu.Unlock()

	for _, name := range names {
		s.Stop(name)
	}
	s.cfg.Logger.Info("schedule: all jobs stopped", "jobs", len(names))
}

// IsRunning reports whether the named job currently has a live handle.
func (s *Scheduler) IsRunning(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[name]
	return ok
}

// RegisteredJobs returns the names of all registered (not necessarily
// running) jobs, in unspecified order.
func (s *Scheduler) RegisteredJobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.configs))
	for name := range s.configs {
		names = append(names, name)
	}
	return names
}

// runTicker dispatches one attempt per interval tick until the handle is
// stopped. Attempts run in their own goroutine so a slow runner delays
// only its own job, and overlapping runs of the same job stay possible
// (unless the job opted into skipWhileRunning).
func (s *Scheduler) runTicker(e *entry, h *handle) {
	for {
		select {
		case <-h.done:
			return
		case <-h.ticker.C:
			go s.attempt(e, h)
		}
	}
}

// runCron re-arms a one-shot timer for the next cron activation until the
// handle is stopped.
func (s *Scheduler) runCron(e *entry, h *handle, sched cron.Schedule) {
	for {
		now := s.cfg.Now().In(s.cfg.Location)
		t := time.NewTimer(sched.Next(now).Sub(now))
		select {
		case <-h.done:
			t.Stop()
			return
		case <-t.C:
			go s.attempt(e, h)
		}
	}
}

// attempt is the single boundary every timer fire funnels through: gate,
// run, observe. Nothing escapes it: a runner error is logged and
// swallowed so the job (and every other job) stays scheduled.
func (s *Scheduler) attempt(e *entry, h *handle) {
	if e.skipWhileRunning {
		// TryLock avoids a race between check and acquire.
		if !h.inFlight.TryLock() {
			s.cfg.Logger.Debug("schedule: previous run still in flight, skipping", "job", e.name)
			return
		}
		defer h.inFlight.Unlock()
	}

	started := s.cfg.Now()
	if e.hours != nil && !e.hours.Contains(started) {
		s.cfg.Logger.Debug("schedule: outside business hours, skipping run", "job", e.name)
		s.observe(Event{Job: e.name, Outcome: OutcomeSkipped, StartedAt: started})
		return
	}

	ctx := context.Background()
	var span trace.Span
	if s.cfg.Tracer != nil {
		ctx, span = s.cfg.Tracer.Start(ctx, "schedule.attempt",
			trace.WithAttributes(attribute.String("job.name", e.name)))
	}

	wall := time.Now()
	result, elevated, err := e.invoke(ctx)
	elapsed := time.Since(wall)

	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
		}
		s.cfg.Logger.Error("schedule: job run failed",
			"job", e.name,
			"description", e.description,
			"error", err,
		)
		s.observe(Event{Job: e.name, Outcome: OutcomeFailure, StartedAt: started, Duration: elapsed, Err: err.Error()})
		return
	}

	if span != nil {
		span.SetStatus(codes.Ok, "")
		span.End()
	}

	if elevated {
		s.cfg.Logger.Info("schedule: job run completed", "job", e.name, "result", result)
	} else {
		s.cfg.Logger.Debug("schedule: job run completed", "job", e.name, "result", result)
	}
	s.observe(Event{Job: e.name, Outcome: OutcomeSuccess, StartedAt: started, Duration: elapsed})
}

// observe fans an attempt outcome out to metrics, the recorder, and the
// event hook. Any recorder error is logged and dropped.
func (s *Scheduler) observe(ev Event) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.observe(ev)
	}
	if s.cfg.Recorder != nil {
		if err := s.cfg.Recorder.Record(context.Background(), ev); err != nil {
			s.cfg.Logger.Warn("schedule: recording run failed", "job", ev.Job, "error", err)
		}
	}
	if s.cfg.OnEvent != nil {
		s.cfg.OnEvent(ev)
	}
}
