package schedule

import "context"

// Runner is the caller-supplied asynchronous operation a job wraps.
// The scheduler never inspects the result beyond the job's LogResult
// predicate, and assumes nothing about idempotence or side effects.
type Runner[O, R any] func(ctx context.Context, opts O) (R, error)

// JobConfig describes one recurring job. Options and the result type are
// job-specific; registration erases them behind a uniform internal entry
// so heterogeneous jobs share one registry.
type JobConfig[O, R any] struct {
	// Name uniquely identifies the job in the registry. Registering the
	// same name again replaces the prior configuration (with a warning);
	// the replacement takes effect on the next Start.
	Name string

	// Description is a free-text label attached to log entries.
	Description string

	// Interval is the recurring cadence. Ignored when Cron is set.
	Interval Interval

	// Cron, when non-empty, schedules the job by a standard 5-field cron
	// expression (evaluated in the scheduler's civil location) instead of
	// a fixed interval.
	Cron string

	// InitialDelay postpones the first run after Start. When nil (or zero),
	// the first run happens asynchronously as soon as possible; Start
	// never executes the runner inline.
	InitialDelay *Interval

	// Runner executes one run. Errors are caught, logged, and swallowed;
	// the job stays scheduled.
	Runner Runner[O, R]

	// Options is passed unchanged to every Runner invocation.
	Options O

	// BusinessHours optionally gates every run on a civil-time window.
	BusinessHours *BusinessHours

	// LogResult decides whether a successful run's result is log-worthy
	// at info severity. Nil means every success logs at debug.
	LogResult func(R) bool

	// SkipWhileRunning skips a scheduled attempt while the previous
	// invocation of this job is still in flight. Off by default:
	// overlapping runs of the same job are permitted, and jobs that must
	// not overlap carry their own guard.
	SkipWhileRunning bool
}

// Register adds cfg to the scheduler's registry, erasing the option and
// result types. It performs no validation beyond uniqueness bookkeeping.
func Register[O, R any](s *Scheduler, cfg JobConfig[O, R]) {
	e := &entry{
		name:             cfg.Name,
		description:      cfg.Description,
		interval:         cfg.Interval,
		cronExpr:         cfg.Cron,
		initialDelay:     cfg.InitialDelay,
		hours:            cfg.BusinessHours,
		skipWhileRunning: cfg.SkipWhileRunning,
	}
	e.invoke = func(ctx context.Context) (any, bool, error) {
		result, err := cfg.Runner(ctx, cfg.Options)
		if err != nil {
			return nil, false, err
		}
		elevated := cfg.LogResult != nil && cfg.LogResult(result)
		return result, elevated, nil
	}
	s.register(e)
}

// entry is the type-erased form of a JobConfig held in the registry.
type entry struct {
	name             string
	description      string
	interval         Interval
	cronExpr         string
	initialDelay     *Interval
	hours            *BusinessHours
	skipWhileRunning bool

	// invoke runs the job once and reports the result, whether the
	// result is log-worthy at info severity, and any runner error.
	invoke func(ctx context.Context) (any, bool, error)
}
