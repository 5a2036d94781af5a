package jobs

import (
	"context"
	"fmt"

	"github.com/flemzord/cadence/internal/schedule"
)

// FeedItem is one candidate piece of content pulled from a feed.
type FeedItem struct {
	Feed  string `json:"feed"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FeedReader pulls recent items from one feed.
type FeedReader interface {
	Fetch(ctx context.Context, feed string, limit int) ([]FeedItem, error)
}

// Curator decides which fetched items are worth keeping and stores them.
type Curator interface {
	Curate(ctx context.Context, items []FeedItem) (kept int, err error)
}

// CurationOptions configures the content curation job.
type CurationOptions struct {
	Feeds []string `yaml:"feeds"`

	// PerFeedLimit bounds items pulled per feed; 0 = default 20.
	PerFeedLimit int `yaml:"per_feed_limit,omitempty"`
}

// CurationResult is the payload logged after a curation pull.
type CurationResult struct {
	Fetched int `json:"fetched"`
	Kept    int `json:"kept"`
}

// CurationRunner builds the runner for the content curation job. A feed
// that fails to fetch skips to the next; the run errors only when every
// configured feed failed.
func CurationRunner(reader FeedReader, curator Curator) schedule.Runner[CurationOptions, CurationResult] {
	return func(ctx context.Context, opts CurationOptions) (CurationResult, error) {
		limit := opts.PerFeedLimit
		if limit <= 0 {
			limit = 20
		}

		var (
			items  []FeedItem
			failed int
		)
		for _, feed := range opts.Feeds {
			batch, err := reader.Fetch(ctx, feed, limit)
			if err != nil {
				failed++
				continue
			}
			items = append(items, batch...)
		}
		if failed > 0 && failed == len(opts.Feeds) {
			return CurationResult{}, fmt.Errorf("jobs: curation: all %d feeds failed", failed)
		}

		kept := 0
		if len(items) > 0 {
			var err error
			kept, err = curator.Curate(ctx, items)
			if err != nil {
				return CurationResult{}, fmt.Errorf("jobs: curate items: %w", err)
			}
		}

		return CurationResult{Fetched: len(items), Kept: kept}, nil
	}
}

// CurationLogResult elevates pulls that kept something.
func CurationLogResult(r CurationResult) bool {
	return r.Kept > 0
}
