// Package metrics exposes engine counters and histograms through the
// default Prometheus registry. The server binary serves them at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategraph_runs_started_total",
		Help: "Number of graph runs started.",
	})
	runsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stategraph_runs_finished_total",
		Help: "Number of graph runs finished, by terminal status.",
	}, []string{"status"})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stategraph_run_duration_seconds",
		Help:    "Wall-clock duration of graph runs.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stategraph_steps_total",
		Help: "Number of node steps executed, by graph.",
	}, []string{"graph"})
	checkpointsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategraph_checkpoints_saved_total",
		Help: "Number of checkpoints written by the engine.",
	})
)

// RunStarted records the start of a run.
func RunStarted() { runsStarted.Inc() }

// RunFinished records a run reaching a terminal status.
func RunFinished(status string, d time.Duration) {
	runsFinished.WithLabelValues(status).Inc()
	runDuration.Observe(d.Seconds())
}

// StepExecuted records one completed node step.
func StepExecuted(graph string) { stepsTotal.WithLabelValues(graph).Inc() }

// CheckpointSaved records a checkpoint write.
func CheckpointSaved() { checkpointsSaved.Inc() }
