package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/flemzord/cadence/internal/schedule"
)

// Pruner deletes run-history rows older than a cutoff. Satisfied by
// *history.Store.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// PruneOptions configures the built-in history retention job.
type PruneOptions struct {
	// Retention is how far back run rows are kept.
	Retention time.Duration `yaml:"retention,omitempty"`
}

// PruneResult is the payload logged after a retention pass.
type PruneResult struct {
	Removed int64 `json:"removed"`
}

// PruneRunner builds the runner for the history retention job. now is
// injectable for testing; nil = time.Now.
func PruneRunner(pruner Pruner, now func() time.Time) schedule.Runner[PruneOptions, PruneResult] {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, opts PruneOptions) (PruneResult, error) {
		retention := opts.Retention
		if retention <= 0 {
			retention = 30 * 24 * time.Hour
		}

		removed, err := pruner.Prune(ctx, now().Add(-retention))
		if err != nil {
			return PruneResult{}, fmt.Errorf("jobs: prune history: %w", err)
		}

		return PruneResult{Removed: removed}, nil
	}
}

// PruneLogResult elevates passes that removed rows.
func PruneLogResult(r PruneResult) bool {
	return r.Removed > 0
}
