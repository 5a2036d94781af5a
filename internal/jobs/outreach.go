package jobs

import (
	"context"
	"fmt"

	"github.com/flemzord/cadence/internal/schedule"
)

// Contact is one pending outreach target.
type Contact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ContactQueue yields contacts due for a follow-up.
type ContactQueue interface {
	NextBatch(ctx context.Context, n int) ([]Contact, error)
}

// Messenger sends one follow-up message.
type Messenger interface {
	Send(ctx context.Context, c Contact) error
}

// OutreachOptions configures the outreach follow-up job.
type OutreachOptions struct {
	// BatchSize bounds one dispatch round; 0 = default 10.
	BatchSize int `yaml:"batch_size,omitempty"`

	// DryRun drains the queue without sending anything.
	DryRun bool `yaml:"dry_run,omitempty"`
}

// OutreachResult is the payload logged after a dispatch round.
type OutreachResult struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// OutreachRunner builds the runner for the outreach follow-up job.
// Per-contact send failures are counted, not fatal: the rest of the batch
// still goes out and the round succeeds with a nonzero Failed count.
func OutreachRunner(queue ContactQueue, messenger Messenger) schedule.Runner[OutreachOptions, OutreachResult] {
	return func(ctx context.Context, opts OutreachOptions) (OutreachResult, error) {
		limit := opts.BatchSize
		if limit <= 0 {
			limit = 10
		}

		contacts, err := queue.NextBatch(ctx, limit)
		if err != nil {
			return OutreachResult{}, fmt.Errorf("jobs: outreach batch: %w", err)
		}

		res := OutreachResult{Attempted: len(contacts)}
		if opts.DryRun {
			return res, nil
		}

		for _, c := range contacts {
			if err := messenger.Send(ctx, c); err != nil {
				res.Failed++
				continue
			}
			res.Sent++
		}

		return res, nil
	}
}

// OutreachLogResult elevates rounds that sent or failed anything; idle
// rounds with an empty queue stay at debug.
func OutreachLogResult(r OutreachResult) bool {
	return r.Sent > 0 || r.Failed > 0
}
