package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cuongbtq/jobsched/internal/job"
)

// Collector bundles the scheduler's Prometheus metrics. Each instance
// owns its registry so multiple schedulers can coexist in one process
// (and in tests) without duplicate-registration panics.
type Collector struct {
	registry *prometheus.Registry

	jobsSubmitted prometheus.Counter
	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter
	jobsCancelled prometheus.Counter
	jobsInFlight  prometheus.Gauge
	jobDuration   prometheus.Histogram
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		jobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobsched_jobs_submitted_total",
			Help: "Total number of jobs submitted",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobsched_jobs_completed_total",
			Help: "Total number of jobs that finished successfully",
		}),
		jobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobsched_jobs_failed_total",
			Help: "Total number of jobs that finished with a failure outcome",
		}),
		jobsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobsched_jobs_cancelled_total",
			Help: "Total number of jobs cancelled before execution",
		}),
		jobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobsched_jobs_in_flight",
			Help: "Current number of jobs in RUNNING status",
		}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobsched_job_execution_seconds",
			Help:    "Simulated job execution time in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2, 2.5},
		}),
	}

	c.registry.MustRegister(
		c.jobsSubmitted,
		c.jobsCompleted,
		c.jobsFailed,
		c.jobsCancelled,
		c.jobsInFlight,
		c.jobDuration,
	)

	return c
}

// JobSubmitted records a successful submission.
func (c *Collector) JobSubmitted() {
	c.jobsSubmitted.Inc()
}

// JobStarted records a claim (PENDING → RUNNING).
func (c *Collector) JobStarted() {
	c.jobsInFlight.Inc()
}

// JobFinished records a RUNNING job reaching its terminal status.
func (c *Collector) JobFinished(status job.Status, executionTime time.Duration) {
	c.jobsInFlight.Dec()
	switch status {
	case job.StatusCompleted:
		c.jobsCompleted.Inc()
	case job.StatusFailed:
		c.jobsFailed.Inc()
	}
	c.jobDuration.Observe(executionTime.Seconds())
}

// JobCancelled records a cancellation.
func (c *Collector) JobCancelled() {
	c.jobsCancelled.Inc()
}

// JobAborted undoes the in-flight increment for a claim whose
// execution never produced a terminal snapshot.
func (c *Collector) JobAborted() {
	c.jobsInFlight.Dec()
}

// Handler exposes this collector's registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
