package app

import (
	"time"

	"github.com/flemzord/cadence/internal/config"
	"github.com/flemzord/cadence/internal/jobs"
	"github.com/flemzord/cadence/internal/schedule"
)

// Built-in job names recognized in the config's jobs map.
const (
	jobIndexing     = "indexing"
	jobOutreach     = "outreach"
	jobCuration     = "curation"
	jobDigest       = "digest"
	jobHistoryPrune = "history_prune"
)

// registerJobs walks the config's jobs map and registers every enabled
// entry whose collaborators are available. Unknown names and missing
// collaborators are logged and skipped; a bad jobs section never takes
// the whole process down.
func (a *App) registerJobs(c Collaborators) {
	for name, e := range a.cfg.Jobs {
		if !e.IsEnabled() {
			a.logger.Debug("job disabled", "job", name)
			continue
		}

		switch name {
		case jobIndexing:
			if c.Indexer == nil {
				a.logger.Warn("job skipped, no indexer wired", "job", name)
				continue
			}
			addJob(a, name, e, jobs.IndexingRunner(c.Indexer), jobs.IndexingLogResult)
		case jobOutreach:
			if c.ContactQueue == nil || c.Messenger == nil {
				a.logger.Warn("job skipped, no contact queue or messenger wired", "job", name)
				continue
			}
			addJob(a, name, e, jobs.OutreachRunner(c.ContactQueue, c.Messenger), jobs.OutreachLogResult)
		case jobCuration:
			if c.FeedReader == nil || c.Curator == nil {
				a.logger.Warn("job skipped, no feed reader or curator wired", "job", name)
				continue
			}
			addJob(a, name, e, jobs.CurationRunner(c.FeedReader, c.Curator), jobs.CurationLogResult)
		case jobDigest:
			if c.DigestSource == nil || c.DigestSender == nil {
				a.logger.Warn("job skipped, no digest source or sender wired", "job", name)
				continue
			}
			addJob(a, name, e, jobs.DigestRunner(c.DigestSource, c.DigestSender), jobs.DigestLogResult)
		case jobHistoryPrune:
			if a.store == nil {
				a.logger.Warn("job skipped, history disabled", "job", name)
				continue
			}
			addJob(a, name, e, jobs.PruneRunner(a.store, nil), jobs.PruneLogResult)
		default:
			a.logger.Warn("unknown job name in config", "job", name)
		}
	}

	// History retention runs even without an explicit jobs entry.
	if a.store != nil {
		if _, explicit := a.cfg.Jobs[jobHistoryPrune]; !explicit {
			a.registerDefaultPrune()
		}
	}
}

func (a *App) registerDefaultPrune() {
	retention := 30 * 24 * time.Hour
	if a.cfg.History.RetentionDays > 0 {
		retention = time.Duration(a.cfg.History.RetentionDays) * 24 * time.Hour
	}
	delay := schedule.Interval{Value: 5, Unit: schedule.Minutes}
	schedule.Register(a.sched, schedule.JobConfig[jobs.PruneOptions, jobs.PruneResult]{
		Name:         jobHistoryPrune,
		Description:  "trim run-history rows past retention",
		Interval:     schedule.Interval{Value: 24, Unit: schedule.Hours},
		InitialDelay: &delay,
		Runner:       jobs.PruneRunner(a.store, nil),
		Options:      jobs.PruneOptions{Retention: retention},
		LogResult:    jobs.PruneLogResult,
	})
}

// addJob converts one config entry into a typed registration. Schedule
// fields were already validated by config.Validate; options decode errors
// are per-job and skip only that job.
func addJob[O, R any](a *App, name string, e config.JobEntry, runner schedule.Runner[O, R], logResult func(R) bool) {
	var opts O
	if !e.Options.IsZero() {
		if err := e.Options.Decode(&opts); err != nil {
			a.logger.Error("job skipped, bad options", "job", name, "error", err)
			return
		}
	}

	cfg := schedule.JobConfig[O, R]{
		Name:             name,
		Description:      e.Description,
		Cron:             e.Cron,
		Runner:           runner,
		Options:          opts,
		LogResult:        logResult,
		SkipWhileRunning: e.SkipWhileRunning,
	}
	if e.Interval != nil {
		iv, err := e.Interval.Interval()
		if err != nil {
			a.logger.Error("job skipped, bad interval", "job", name, "error", err)
			return
		}
		cfg.Interval = iv
	}
	if e.InitialDelay != nil {
		iv, err := e.InitialDelay.Interval()
		if err != nil {
			a.logger.Error("job skipped, bad initial delay", "job", name, "error", err)
			return
		}
		cfg.InitialDelay = &iv
	}
	if e.BusinessHours != nil {
		cfg.BusinessHours = e.BusinessHours.Hours(a.location)
	}

	schedule.Register(a.sched, cfg)
}
