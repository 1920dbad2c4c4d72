// Package metrics exports run timings in the Prometheus text format so a
// node_exporter textfile collector can pick them up.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"studyguide.parallel/imgbench/pkg/stats"
)

const namespace = "imgbench"

// Recorder owns a private registry with the run gauges and counters.
type Recorder struct {
	registry  *prometheus.Registry
	seconds   *prometheus.GaugeVec
	processed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	speedup   *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	labels := []string{"runner", "context"}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		seconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_seconds",
			Help:      "Wall-clock time of an execution context.",
		}, labels),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Images transformed successfully.",
		}, labels),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_failed_total",
			Help:      "Images that failed to transform.",
		}, labels),
		speedup: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "speedup",
			Help:      "Baseline time divided by measured time.",
		}, labels),
	}
	r.registry.MustRegister(r.seconds, r.processed, r.failed, r.speedup)
	return r
}

// Observe records every timing in the report. A distributed report also
// yields a "total" context carrying the aggregate time and efficiency.
func (r *Recorder) Observe(rep *stats.Report) {
	for _, rec := range rep.Records {
		r.observeRecord(rep.Runner, rec)
	}
	if rep.Total > 0 {
		r.seconds.WithLabelValues(rep.Runner, "total").Set(rep.Total.Seconds())
		r.speedup.WithLabelValues(rep.Runner, "total").Set(rep.Efficiency)
	}
}

func (r *Recorder) observeRecord(runner string, rec stats.Record) {
	r.seconds.WithLabelValues(runner, rec.Context).Set(rec.Elapsed.Seconds())
	r.processed.WithLabelValues(runner, rec.Context).Add(float64(rec.Processed))
	r.failed.WithLabelValues(runner, rec.Context).Add(float64(rec.Failed))
	if rec.Speedup > 0 {
		r.speedup.WithLabelValues(runner, rec.Context).Set(rec.Speedup)
	}
}

// WriteTextfile atomically writes the registry to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
