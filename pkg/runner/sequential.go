package runner

import (
	"context"

	"studyguide.parallel/imgbench/pkg/common"
	"studyguide.parallel/imgbench/pkg/processor"
	"studyguide.parallel/imgbench/pkg/stats"
)

const sequentialName = "Sequential"

// Sequential transforms every image in list order on one execution
// context and prints the elapsed time.
func (r *Runner) Sequential(ctx context.Context) (*stats.Report, error) {
	r.logger.Info("starting sequential processing")

	jobs, err := r.scan()
	if err != nil {
		return nil, err
	}

	rec, err := r.runSequential(ctx, jobs)
	if err != nil {
		return nil, errorf(sequentialName, err)
	}

	stats.PrintSequential(r.out, rec, r.cfg.OutputDir)

	rep := r.newReport(sequentialName, len(jobs))
	rep.Records = []stats.Record{rec}
	return rep, r.finish(rep)
}

// runSequential is shared with the distributed runner, which uses it to
// measure its baseline.
func (r *Runner) runSequential(ctx context.Context, jobs []common.Job) (stats.Record, error) {
	pool := processor.NewWorkerPool(processor.PoolConfig{
		Workers:  1,
		FailFast: r.cfg.FailFast,
		Label:    sequentialName,
		Logger:   r.logger,
	})

	out, err := pool.Run(ctx, []common.Partition{{ID: 1, Jobs: jobs}}, r.apply)
	if err != nil {
		return stats.Record{}, err
	}

	r.logFailures(sequentialName, pool, out)
	rec := recordFrom(sequentialName, 1, out.Contexts[0])
	r.logger.Info("sequential processing finished",
		"processed", rec.Processed,
		"failed", rec.Failed,
		"elapsed", rec.Elapsed)
	return rec, nil
}
