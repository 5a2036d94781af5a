package schedule

import (
	"context"
	"time"
)

// Outcome classifies a single attempt of a job's schedule.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeSkipped Outcome = "skipped" // business-hours gate rejected the run
)

// Event describes one completed attempt. Skipped attempts carry a zero
// Duration (the runner was never invoked).
type Event struct {
	Job       string        `json:"job"`
	Outcome   Outcome       `json:"outcome"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Err       string        `json:"error,omitempty"`
}

// Recorder receives every attempt outcome, e.g. to persist a run history.
// Record errors are logged and swallowed; they never affect the schedule.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}
