package runner

import (
	"context"
	"fmt"
	"runtime"

	"studyguide.parallel/imgbench/pkg/common"
	"studyguide.parallel/imgbench/pkg/processor"
	"studyguide.parallel/imgbench/pkg/stats"
)

const parallelName = "Parallel"

// Parallel runs one trial per configured worker count and prints the
// speedup table. The single-worker trial is the baseline when present,
// otherwise the first trial is.
func (r *Runner) Parallel(ctx context.Context) (*stats.Report, error) {
	r.logger.Info("starting parallel processing", "cpus", runtime.NumCPU(), "worker_counts", r.cfg.WorkerCounts)

	jobs, err := r.scan()
	if err != nil {
		return nil, err
	}

	records := make([]stats.Record, 0, len(r.cfg.WorkerCounts))
	for _, workers := range r.cfg.WorkerCounts {
		rec, err := r.runTrial(ctx, jobs, workers)
		if err != nil {
			return nil, errorf(parallelName, fmt.Errorf("trial with %d workers: %w", workers, err))
		}
		records = append(records, rec)
	}

	if err := applySpeedups(records); err != nil {
		return nil, errorf(parallelName, err)
	}

	stats.PrintSpeedupTable(r.out, records)

	rep := r.newReport(parallelName, len(jobs))
	rep.Records = records
	return rep, r.finish(rep)
}

func (r *Runner) runTrial(ctx context.Context, jobs []common.Job, workers int) (stats.Record, error) {
	r.logger.Info("running trial", "workers", workers)

	parts, err := processor.Split(jobs, workers)
	if err != nil {
		return stats.Record{}, err
	}

	pool := processor.NewWorkerPool(processor.PoolConfig{
		Workers:  workers,
		FailFast: r.cfg.FailFast,
		Logger:   r.logger.With("workers", workers),
	})
	out, err := pool.Run(ctx, parts, r.apply)
	if err != nil {
		return stats.Record{}, err
	}

	name := fmt.Sprintf("%d workers", workers)
	r.logFailures(name, pool, out)
	rec := stats.Record{
		Context:   name,
		Workers:   workers,
		Processed: out.Processed(),
		Failed:    out.Failed(),
		Elapsed:   out.Elapsed,
	}
	r.logger.Info("trial finished", "workers", workers, "elapsed", rec.Elapsed, "processed", rec.Processed)
	return rec, nil
}

// applySpeedups fills Speedup and Efficiency relative to the baseline trial.
func applySpeedups(records []stats.Record) error {
	if len(records) == 0 {
		return nil
	}
	baseline := records[0]
	for _, rec := range records {
		if rec.Workers == 1 {
			baseline = rec
			break
		}
	}

	for i := range records {
		speedup, err := stats.Ratio(baseline.Elapsed, records[i].Elapsed)
		if err != nil {
			return err
		}
		records[i].Speedup = speedup
		records[i].Efficiency = speedup / float64(records[i].Workers)
	}
	return nil
}
