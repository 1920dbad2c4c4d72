package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"studyguide.parallel/imgbench/pkg/common"
)

// JobFunc processes a single job.
type JobFunc func(ctx context.Context, job common.Job) error

// DoneFunc is called by an execution unit after it finishes its partition.
type DoneFunc func(ctx context.Context, part common.Partition, timing common.TimingResult) error

// PoolConfig configures a WorkerPool.
type PoolConfig struct {
	Workers int
	// FailFast aborts the whole run on the first job error. Otherwise
	// failures are recorded and the remaining jobs still run.
	FailFast bool
	// Label prefixes context names, e.g. "Worker 3" or "Node 1".
	Label  string
	Logger *slog.Logger
	Done   DoneFunc
}

// Outcome is everything a pool run produced. Contexts is in partition order.
type Outcome struct {
	Contexts []common.TimingResult
	Results  []common.JobResult
	Elapsed  time.Duration
}

// Processed returns the number of successful jobs across all contexts.
func (o *Outcome) Processed() int {
	n := 0
	for _, c := range o.Contexts {
		n += c.Processed
	}
	return n
}

// Failed returns the number of failed jobs across all contexts.
func (o *Outcome) Failed() int {
	n := 0
	for _, c := range o.Contexts {
		n += c.Failed
	}
	return n
}

// FirstError returns the first failed job's error in partition order.
func (o *Outcome) FirstError() error {
	for _, r := range o.Results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// WorkerPool runs partitions on a fixed number of goroutines. A pool may be
// reused across runs.
type WorkerPool struct {
	cfg          PoolConfig
	jobsComplete atomic.Int64
}

func NewWorkerPool(cfg PoolConfig) *WorkerPool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Label == "" {
		cfg.Label = "Worker"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &WorkerPool{cfg: cfg}
}

// JobsComplete returns the number of jobs finished, successfully or not,
// over the pool's lifetime.
func (wp *WorkerPool) JobsComplete() int64 {
	return wp.jobsComplete.Load()
}

// Run starts one execution unit per partition, at most Workers at a time,
// and blocks until all of them return. Under FailFast the first job error
// cancels the remaining units and is returned.
func (wp *WorkerPool) Run(ctx context.Context, parts []common.Partition, fn JobFunc) (*Outcome, error) {
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.cfg.Workers)

	contexts := make([]common.TimingResult, len(parts))
	results := make([][]common.JobResult, len(parts))

	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			timing, res, err := wp.runPartition(gctx, part, fn)
			contexts[i] = timing
			results[i] = res
			return err
		})
	}

	err := g.Wait()

	out := &Outcome{Contexts: contexts, Elapsed: time.Since(startTime)}
	for _, res := range results {
		out.Results = append(out.Results, res...)
	}
	return out, err
}

func (wp *WorkerPool) runPartition(ctx context.Context, part common.Partition, fn JobFunc) (timing common.TimingResult, results []common.JobResult, err error) {
	name := fmt.Sprintf("%s %d", wp.cfg.Label, part.ID)
	logger := wp.cfg.Logger.With("context", name)
	timing.Context = name
	results = make([]common.JobResult, 0, len(part.Jobs))

	logger.Debug("partition started", "jobs", len(part.Jobs))
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			timing.Elapsed = time.Since(startTime)
			err = fmt.Errorf("%s crashed: %v", name, r)
			logger.Error("execution unit crashed", "panic", r)
		}
	}()

	for _, job := range part.Jobs {
		if err := ctx.Err(); err != nil {
			timing.Elapsed = time.Since(startTime)
			return timing, results, err
		}

		jobStart := time.Now()
		jobErr := fn(ctx, job)
		results = append(results, common.JobResult{Job: job, Elapsed: time.Since(jobStart), Err: jobErr})
		wp.jobsComplete.Add(1)

		if jobErr != nil {
			timing.Failed++
			logger.Error("job failed", "input", job.InputPath, "err", jobErr)
			if wp.cfg.FailFast {
				timing.Elapsed = time.Since(startTime)
				return timing, results, fmt.Errorf("%s: %s: %w", name, job.RelPath, jobErr)
			}
			continue
		}
		timing.Processed++
	}

	timing.Elapsed = time.Since(startTime)
	logger.Info("partition finished",
		"processed", timing.Processed,
		"failed", timing.Failed,
		"elapsed", timing.Elapsed)

	if wp.cfg.Done != nil {
		if err := wp.cfg.Done(ctx, part, timing); err != nil {
			return timing, results, fmt.Errorf("%s: %w", name, err)
		}
	}
	return timing, results, nil
}
