package schedule

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes scheduler counters to Prometheus. All methods are safe
// for concurrent use (the underlying collectors are).
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	running  prometheus.Gauge
}

// NewMetrics creates the scheduler collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cadence_job_runs_total",
			Help: "Job attempts by outcome (success, failure, skipped).",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cadence_job_run_duration_seconds",
			Help:    "Wall-clock duration of executed job runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cadence_jobs_running",
			Help: "Number of jobs with a live schedule handle.",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.running)
	return m
}

func (m *Metrics) observe(ev Event) {
	m.runs.WithLabelValues(ev.Job, string(ev.Outcome)).Inc()
	if ev.Outcome != OutcomeSkipped {
		m.duration.WithLabelValues(ev.Job).Observe(ev.Duration.Seconds())
	}
}

func (m *Metrics) jobStarted() { m.running.Inc() }
func (m *Metrics) jobStopped() { m.running.Dec() }
