// Package runner holds the execution strategies: sequential, a worker-pool
// sweep, the simulated node distribution, and all three back to back.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"studyguide.parallel/imgbench/pkg/common"
	"studyguide.parallel/imgbench/pkg/config"
	"studyguide.parallel/imgbench/pkg/metrics"
	"studyguide.parallel/imgbench/pkg/processor"
	"studyguide.parallel/imgbench/pkg/stats"
	"studyguide.parallel/imgbench/pkg/transform"
)

// Runner carries the configuration and collaborators one invocation needs.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	runID  string
	apply  processor.JobFunc

	// outputRoot is the top-level output directory. Derived runners write
	// below it and the scan skips all of it.
	outputRoot string
}

// New returns a Runner writing its report to out and logs to logger.
func New(cfg *config.Config, logger *slog.Logger, out io.Writer) *Runner {
	runID := uuid.NewString()
	opts := cfg.TransformOptions()
	return &Runner{
		cfg:        cfg,
		logger:     logger.With("run_id", runID),
		out:        out,
		runID:      runID,
		outputRoot: cfg.OutputDir,
		apply: func(_ context.Context, job common.Job) error {
			return transform.Apply(job.InputPath, job.OutputPath, opts)
		},
	}
}

// RunID identifies this invocation in logs, reports and Redis keys.
func (r *Runner) RunID() string {
	return r.runID
}

func (r *Runner) scan() ([]common.Job, error) {
	jobs, err := common.Scan(r.cfg.InputDir, r.cfg.OutputDir, r.outputRoot)
	if err != nil {
		return nil, err
	}
	r.logger.Info("found images", "count", len(jobs), "input", r.cfg.InputDir)
	return jobs, nil
}

func (r *Runner) newReport(name string, images int) *stats.Report {
	return &stats.Report{
		RunID:     r.runID,
		Runner:    name,
		Timestamp: time.Now(),
		InputDir:  r.cfg.InputDir,
		OutputDir: r.cfg.OutputDir,
		Images:    images,
	}
}

// finish persists the report to the optional text and metrics files.
func (r *Runner) finish(rep *stats.Report) error {
	if r.cfg.ReportFile != "" {
		if err := stats.AppendReport(r.cfg.ReportFile, rep); err != nil {
			return err
		}
		r.logger.Info("report appended", "path", r.cfg.ReportFile)
	}
	return r.writeMetrics(rep)
}

func (r *Runner) writeMetrics(reps ...*stats.Report) error {
	if r.cfg.MetricsFile == "" {
		return nil
	}
	rec := metrics.NewRecorder()
	for _, rep := range reps {
		rec.Observe(rep)
	}
	if err := rec.WriteTextfile(r.cfg.MetricsFile); err != nil {
		return err
	}
	r.logger.Info("metrics written", "path", r.cfg.MetricsFile)
	return nil
}

// logFailures reports jobs that failed without aborting the run.
func (r *Runner) logFailures(name string, pool *processor.WorkerPool, out *processor.Outcome) {
	if out.Failed() == 0 {
		return
	}
	r.logger.Warn("some images failed",
		"context", name,
		"failed", out.Failed(),
		"jobs", pool.JobsComplete(),
		"first_error", out.FirstError())
}

func recordFrom(name string, workers int, timing common.TimingResult) stats.Record {
	return stats.Record{
		Context:   name,
		Workers:   workers,
		Processed: timing.Processed,
		Failed:    timing.Failed,
		Elapsed:   timing.Elapsed,
	}
}

func errorf(runner string, err error) error {
	return fmt.Errorf("%s run failed: %w", runner, err)
}
