package jobs

import (
	"context"
	"fmt"

	"github.com/flemzord/cadence/internal/schedule"
)

// DigestItem is one entry collected for the daily digest.
type DigestItem struct {
	Section string `json:"section"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
}

// DigestSource collects items for the configured sections.
type DigestSource interface {
	Collect(ctx context.Context, sections []string) ([]DigestItem, error)
}

// DigestSender delivers the assembled digest.
type DigestSender interface {
	Send(ctx context.Context, recipients []string, items []DigestItem) error
}

// DigestOptions configures the daily digest job.
type DigestOptions struct {
	Recipients []string `yaml:"recipients"`
	Sections   []string `yaml:"sections"`
}

// DigestResult is the payload logged after a digest run.
type DigestResult struct {
	Items      int `json:"items"`
	Recipients int `json:"recipients"`
}

// DigestRunner builds the runner for the daily digest job. An empty
// collection is not an error; the digest is simply not sent.
func DigestRunner(source DigestSource, sender DigestSender) schedule.Runner[DigestOptions, DigestResult] {
	return func(ctx context.Context, opts DigestOptions) (DigestResult, error) {
		items, err := source.Collect(ctx, opts.Sections)
		if err != nil {
			return DigestResult{}, fmt.Errorf("jobs: collect digest: %w", err)
		}
		if len(items) == 0 {
			return DigestResult{}, nil
		}

		if err := sender.Send(ctx, opts.Recipients, items); err != nil {
			return DigestResult{}, fmt.Errorf("jobs: send digest: %w", err)
		}

		return DigestResult{Items: len(items), Recipients: len(opts.Recipients)}, nil
	}
}

// DigestLogResult elevates runs that actually delivered a digest.
func DigestLogResult(r DigestResult) bool {
	return r.Items > 0
}
