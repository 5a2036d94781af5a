package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config: version, timezone,
// admin bind address, and every job's schedule declaration. All problems
// are reported at once via errors.Join.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("config: invalid timezone %q: %w", cfg.Timezone, err))
		}
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: invalid log_level %q (supported: debug, info, warn, error)", cfg.LogLevel))
	}

	if cfg.Admin != nil {
		if _, err := net.ResolveTCPAddr("tcp", cfg.Admin.Bind); err != nil {
			errs = append(errs, fmt.Errorf("config: admin: invalid bind address %q", cfg.Admin.Bind))
		}
		if cfg.Admin.Auth.BasicUser != "" && cfg.Admin.Auth.BasicPass == "" {
			errs = append(errs, errors.New("config: admin: basic_user set without basic_pass"))
		}
	}

	if cfg.History != nil && cfg.History.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("config: history: retention_days must not be negative, got %d", cfg.History.RetentionDays))
	}

	if cfg.Telemetry != nil && cfg.Telemetry.Endpoint == "" {
		errs = append(errs, errors.New("config: telemetry: endpoint is required"))
	}

	if len(cfg.Jobs) == 0 {
		errs = append(errs, errors.New("config: at least one job must be configured"))
	}
	for name, job := range cfg.Jobs {
		errs = append(errs, validateJob(name, job)...)
	}

	return errors.Join(errs...)
}

func validateJob(name string, job JobEntry) []error {
	var errs []error

	switch {
	case job.Interval == nil && job.Cron == "":
		errs = append(errs, fmt.Errorf("config: job %q: either interval or cron is required", name))
	case job.Interval != nil && job.Cron != "":
		errs = append(errs, fmt.Errorf("config: job %q: interval and cron are mutually exclusive", name))
	}

	if job.Interval != nil {
		errs = append(errs, validateInterval(name, "interval", *job.Interval, false)...)
	}
	if job.InitialDelay != nil {
		errs = append(errs, validateInterval(name, "initial_delay", *job.InitialDelay, true)...)
	}

	if job.Cron != "" {
		if _, err := cron.ParseStandard(job.Cron); err != nil {
			errs = append(errs, fmt.Errorf("config: job %q: invalid cron expression %q: %w", name, job.Cron, err))
		}
	}

	if bh := job.BusinessHours; bh != nil {
		if bh.StartHour < 0 || bh.StartHour > 23 {
			errs = append(errs, fmt.Errorf("config: job %q: business_hours.start_hour must be in [0,23], got %d", name, bh.StartHour))
		}
		if bh.EndHour < 0 || bh.EndHour > 23 {
			errs = append(errs, fmt.Errorf("config: job %q: business_hours.end_hour must be in [0,23], got %d", name, bh.EndHour))
		}
		// start_hour >= end_hour is deliberately not rejected: such a
		// window admits nothing, matching the scheduler's semantics.
	}

	return errs
}

func validateInterval(job, field string, c IntervalConfig, zeroOK bool) []error {
	var errs []error

	if c.Value < 0 || (!zeroOK && c.Value == 0) {
		errs = append(errs, fmt.Errorf("config: job %q: %s.value must be positive, got %d", job, field, c.Value))
	}
	if _, err := c.Interval(); err != nil {
		errs = append(errs, fmt.Errorf("config: job %q: %s: %w", job, field, err))
	}

	return errs
}
