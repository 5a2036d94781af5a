// Package jobs contains cadence's built-in job bodies: document indexing,
// outreach follow-ups, content curation, the daily digest, and run-history
// pruning. Each job is a thin typed runner over a collaborator interface;
// the scheduler only sees the runner.
package jobs

import (
	"context"
	"fmt"

	"github.com/flemzord/cadence/internal/schedule"
)

// DocumentIndexer ingests pending documents from a source. Implementations
// live with the organization's storage/LLM glue, not here.
type DocumentIndexer interface {
	// IndexPending scans up to limit unindexed documents from source and
	// reports how many were scanned and how many actually indexed.
	IndexPending(ctx context.Context, source string, limit int) (scanned, indexed int, err error)
}

// IndexingOptions configures one indexing job instance.
type IndexingOptions struct {
	// Source names the document source to sweep.
	Source string `yaml:"source"`

	// BatchSize bounds one sweep; 0 = default 50.
	BatchSize int `yaml:"batch_size,omitempty"`
}

// IndexingResult is the payload logged after a sweep.
type IndexingResult struct {
	Source  string `json:"source"`
	Scanned int    `json:"scanned"`
	Indexed int    `json:"indexed"`
}

// IndexingRunner builds the runner for a document indexing job.
func IndexingRunner(indexer DocumentIndexer) schedule.Runner[IndexingOptions, IndexingResult] {
	return func(ctx context.Context, opts IndexingOptions) (IndexingResult, error) {
		limit := opts.BatchSize
		if limit <= 0 {
			limit = 50
		}

		scanned, indexed, err := indexer.IndexPending(ctx, opts.Source, limit)
		if err != nil {
			return IndexingResult{}, fmt.Errorf("jobs: indexing %s: %w", opts.Source, err)
		}

		return IndexingResult{Source: opts.Source, Scanned: scanned, Indexed: indexed}, nil
	}
}

// IndexingLogResult elevates runs that indexed something; routine empty
// sweeps stay at debug.
func IndexingLogResult(r IndexingResult) bool {
	return r.Indexed > 0
}
