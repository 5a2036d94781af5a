package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
version: "1"
timezone: America/New_York
log_level: debug
admin:
  bind: 127.0.0.1:8600
  auth:
    bearer_token: ${CADENCE_TOKEN:-secret}
history:
  retention_days: 14
jobs:
  doc_indexing:
    description: index new documents
    interval: { value: 30, unit: minutes }
    initial_delay: { value: 2, unit: minutes }
    business_hours: { start_hour: 8, end_hour: 20 }
  daily_digest:
    cron: "0 9 * * 1-5"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cadence.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Timezone != "America/New_York" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if len(cfg.Jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(cfg.Jobs))
	}

	idx := cfg.Jobs["doc_indexing"]
	if !idx.IsEnabled() {
		t.Error("job without an enabled flag should default to enabled")
	}
	iv, err := idx.Interval.Interval()
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	if iv.Milliseconds() != 30*60*1000 {
		t.Errorf("interval = %dms, want 30 minutes", iv.Milliseconds())
	}
	if idx.BusinessHours == nil || idx.BusinessHours.StartHour != 8 {
		t.Errorf("business hours not decoded: %+v", idx.BusinessHours)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("CADENCE_TOKEN", "from-env")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admin.Auth.BearerToken != "from-env" {
		t.Errorf("bearer token = %q, want env value", cfg.Admin.Auth.BearerToken)
	}
}

func TestLoad_EnvDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admin.Auth.BearerToken != "secret" {
		t.Errorf("bearer token = %q, want default", cfg.Admin.Auth.BearerToken)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	_, err := Load(writeConfig(t, "version: ${CADENCE_NO_SUCH_VAR}\njobs: {}\n"))
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "CADENCE_NO_SUCH_VAR") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestLoad_AllUnresolvedVariablesReported(t *testing.T) {
	_, err := Load(writeConfig(t, "version: ${CADENCE_MISSING_A}\ntimezone: ${CADENCE_MISSING_B}\njobs: {}\n"))
	if err == nil {
		t.Fatal("expected error for unresolved variables")
	}
	for _, name := range []string{"CADENCE_MISSING_A", "CADENCE_MISSING_B"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s: %v", name, err)
		}
	}
}

func TestLoad_EmptyFallback(t *testing.T) {
	cfg, err := Load(writeConfig(t, "version: \"1\"\ntimezone: \"${CADENCE_MISSING_TZ:-}\"\njobs: {}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "" {
		t.Errorf("timezone = %q, want empty from empty fallback", cfg.Timezone)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "missing version",
			mutate:  func(c *Config) { c.Version = "" },
			wantSub: "version field is required",
		},
		{
			name:    "unsupported version",
			mutate:  func(c *Config) { c.Version = "2" },
			wantSub: "unsupported version",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantSub: "invalid timezone",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantSub: "invalid log_level",
		},
		{
			name:    "no jobs",
			mutate:  func(c *Config) { c.Jobs = nil },
			wantSub: "at least one job",
		},
		{
			name: "interval and cron both set",
			mutate: func(c *Config) {
				c.Jobs["both"] = JobEntry{
					Interval: &IntervalConfig{Value: 1, Unit: "hours"},
					Cron:     "* * * * *",
				}
			},
			wantSub: "mutually exclusive",
		},
		{
			name: "neither interval nor cron",
			mutate: func(c *Config) {
				c.Jobs["neither"] = JobEntry{}
			},
			wantSub: "either interval or cron",
		},
		{
			name: "zero interval value",
			mutate: func(c *Config) {
				c.Jobs["zero"] = JobEntry{Interval: &IntervalConfig{Value: 0, Unit: "seconds"}}
			},
			wantSub: "must be positive",
		},
		{
			name: "unknown unit",
			mutate: func(c *Config) {
				c.Jobs["fortnightly"] = JobEntry{Interval: &IntervalConfig{Value: 2, Unit: "weeks"}}
			},
			wantSub: "unknown interval unit",
		},
		{
			name: "bad cron expression",
			mutate: func(c *Config) {
				c.Jobs["badcron"] = JobEntry{Cron: "not a spec"}
			},
			wantSub: "invalid cron expression",
		},
		{
			name: "hour out of range",
			mutate: func(c *Config) {
				c.Jobs["late"] = JobEntry{
					Interval:      &IntervalConfig{Value: 1, Unit: "hours"},
					BusinessHours: &HoursConfig{StartHour: 9, EndHour: 24},
				}
			},
			wantSub: "end_hour must be in [0,23]",
		},
		{
			name: "bad admin bind",
			mutate: func(c *Config) {
				c.Admin = &AdminConfig{Bind: "not-an-address"}
			},
			wantSub: "invalid bind address",
		},
		{
			name: "negative retention",
			mutate: func(c *Config) {
				c.History = &HistoryConfig{RetentionDays: -1}
			},
			wantSub: "retention_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Config{
				Version: "1",
				Jobs: map[string]JobEntry{
					"ok": {Interval: &IntervalConfig{Value: 5, Unit: "minutes"}},
				},
			}
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %v, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_InvertedWindowAccepted(t *testing.T) {
	t.Parallel()

	// An inverted window admits nothing but is deliberately not a config
	// error.
	cfg := &Config{
		Version: "1",
		Jobs: map[string]JobEntry{
			"night": {
				Interval:      &IntervalConfig{Value: 1, Unit: "hours"},
				BusinessHours: &HoursConfig{StartHour: 18, EndHour: 9},
			},
		},
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("inverted window should validate: %v", err)
	}
}
