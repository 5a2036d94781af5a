// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for cadence.
package config

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/cadence/internal/schedule"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Timezone is the civil timezone business hours and cron expressions
	// are evaluated in, regardless of the host's own timezone.
	// Default: America/New_York.
	Timezone string `yaml:"timezone,omitempty"`

	// LogLevel sets the slog level: debug, info, warn, or error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Admin configures the HTTP admin server. Omit to run headless.
	Admin *AdminConfig `yaml:"admin,omitempty"`

	// History configures the SQLite run-history store. Omit to disable
	// run recording.
	History *HistoryConfig `yaml:"history,omitempty"`

	// Telemetry configures the OTLP trace exporter. Omit to disable tracing.
	Telemetry *TelemetryConfig `yaml:"telemetry,omitempty"`

	// Jobs maps job names to their schedules. Job-specific options live
	// under each entry's "options" node and are decoded by the job itself.
	Jobs map[string]JobEntry `yaml:"jobs"`
}

// AdminConfig holds the admin HTTP server settings.
type AdminConfig struct {
	Bind         string        `yaml:"bind"`
	ReadTimeout  time.Duration `yaml:"read_timeout,omitempty"`
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty"`
	Auth         AuthConfig    `yaml:"auth,omitempty"`
}

// AuthConfig holds admin credentials. Control endpoints are not mounted
// unless at least one scheme is configured.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token,omitempty"`
	BasicUser   string `yaml:"basic_user,omitempty"`
	BasicPass   string `yaml:"basic_pass,omitempty"`
}

// IsConfigured reports whether any auth scheme is set.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != "" || (a.BasicUser != "" && a.BasicPass != "")
}

// HistoryConfig holds run-history store settings.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty = <data dir>/history.db.
	Path string `yaml:"path,omitempty"`

	// RetentionDays bounds how long run rows are kept; the built-in
	// history_prune job trims older rows. 0 = default (30).
	RetentionDays int `yaml:"retention_days,omitempty"`
}

// TelemetryConfig holds OTLP trace exporter settings.
type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure,omitempty"`
}

// JobEntry is one job's schedule declaration.
type JobEntry struct {
	// Enabled gates registration; nil means enabled.
	Enabled *bool `yaml:"enabled,omitempty"`

	Description string `yaml:"description,omitempty"`

	// Interval is the recurring cadence. Exactly one of Interval and Cron
	// must be set.
	Interval *IntervalConfig `yaml:"interval,omitempty"`

	// Cron is a standard 5-field cron expression evaluated in the civil
	// timezone.
	Cron string `yaml:"cron,omitempty"`

	// InitialDelay staggers the first run after start.
	InitialDelay *IntervalConfig `yaml:"initial_delay,omitempty"`

	// BusinessHours restricts runs to a civil-time window.
	BusinessHours *HoursConfig `yaml:"business_hours,omitempty"`

	// SkipWhileRunning suppresses a scheduled attempt while the previous
	// one is still in flight.
	SkipWhileRunning bool `yaml:"skip_while_running,omitempty"`

	// Options is the job-specific configuration, decoded by the job's
	// constructor at registration time.
	Options yaml.Node `yaml:"options,omitempty"`
}

// IsEnabled reports whether the job should be registered.
func (j JobEntry) IsEnabled() bool {
	return j.Enabled == nil || *j.Enabled
}

// IntervalConfig is the YAML shape of a schedule.Interval.
type IntervalConfig struct {
	Value int    `yaml:"value"`
	Unit  string `yaml:"unit"`
}

// Interval converts the YAML shape into a schedule.Interval.
func (c IntervalConfig) Interval() (schedule.Interval, error) {
	unit, err := schedule.ParseUnit(c.Unit)
	if err != nil {
		return schedule.Interval{}, err
	}
	return schedule.Interval{Value: c.Value, Unit: unit}, nil
}

// HoursConfig is the YAML shape of a schedule.BusinessHours.
type HoursConfig struct {
	StartHour       int  `yaml:"start_hour"`
	EndHour         int  `yaml:"end_hour"`
	IncludeWeekends bool `yaml:"include_weekends,omitempty"`
}

// Hours converts the YAML shape into a schedule.BusinessHours evaluated
// in loc.
func (c HoursConfig) Hours(loc *time.Location) *schedule.BusinessHours {
	return &schedule.BusinessHours{
		StartHour:       c.StartHour,
		EndHour:         c.EndHour,
		IncludeWeekends: c.IncludeWeekends,
		Location:        loc,
	}
}
