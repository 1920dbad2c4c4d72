package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"studyguide.parallel/imgbench/pkg/common"
	"studyguide.parallel/imgbench/pkg/config"
	"studyguide.parallel/imgbench/pkg/processor"
	"studyguide.parallel/imgbench/pkg/queue"
	"studyguide.parallel/imgbench/pkg/stats"
)

const distributedName = "Distributed"

// CombineNodeTimes gives the total distributed time for a set of node
// times: the slowest node when nodes run concurrently, the sum when they
// run one after another.
func CombineNodeTimes(mode config.NodeMode, times []time.Duration) time.Duration {
	var total time.Duration
	for _, t := range times {
		if mode == config.NodeModeSerial {
			total += t
		} else {
			total = max(total, t)
		}
	}
	return total
}

func combineRule(mode config.NodeMode) string {
	if mode == config.NodeModeSerial {
		return "sum"
	}
	return "max"
}

// Distributed splits the images across simulated nodes, collects each
// node's report over the result queue and computes the efficiency
// against the sequential baseline.
func (r *Runner) Distributed(ctx context.Context) (*stats.Report, error) {
	r.logger.Info("starting simulated distributed processing",
		"nodes", r.cfg.NodeCount,
		"node_mode", r.cfg.NodeMode)

	jobs, err := r.scan()
	if err != nil {
		return nil, err
	}

	baseline, err := r.baseline(ctx, jobs)
	if err != nil {
		return nil, errorf(distributedName, err)
	}

	parts, err := processor.Split(jobs, r.cfg.NodeCount)
	if err != nil {
		return nil, errorf(distributedName, err)
	}
	for i := range parts {
		parts[i].Jobs = common.Retarget(parts[i].Jobs, r.nodeOutputDir(parts[i].ID))
		r.logger.Info("node assigned", "node", parts[i].ID, "images", len(parts[i].Jobs))
	}

	q, err := r.openQueue(ctx, len(parts))
	if err != nil {
		return nil, errorf(distributedName, err)
	}
	defer q.Close()

	workers := len(parts)
	if r.cfg.NodeMode == config.NodeModeSerial {
		workers = 1
	}
	pool := processor.NewWorkerPool(processor.PoolConfig{
		Workers:  workers,
		FailFast: r.cfg.FailFast,
		Label:    "Node",
		Logger:   r.logger,
		Done: func(ctx context.Context, part common.Partition, timing common.TimingResult) error {
			return q.Push(ctx, common.NodeResult{
				NodeID:    part.ID,
				Images:    timing.Processed,
				Failed:    timing.Failed,
				ElapsedNS: int64(timing.Elapsed),
			})
		},
	})

	out, err := pool.Run(ctx, parts, r.apply)
	if err != nil {
		return nil, errorf(distributedName, err)
	}
	r.logger.Info("all nodes finished", "wall_clock", out.Elapsed)
	r.logFailures(distributedName, pool, out)

	results, err := q.Drain(ctx, len(parts))
	if err != nil {
		return nil, errorf(distributedName, err)
	}

	rep := r.newReport(distributedName, len(jobs))
	times := make([]time.Duration, 0, len(results))
	for _, res := range results {
		rep.Records = append(rep.Records, stats.Record{
			Context:   fmt.Sprintf("Node %d", res.NodeID),
			Workers:   1,
			Processed: res.Images,
			Failed:    res.Failed,
			Elapsed:   res.Elapsed(),
		})
		times = append(times, res.Elapsed())
	}

	rep.Baseline = baseline
	rep.Total = CombineNodeTimes(r.cfg.NodeMode, times)
	rep.CombineRule = combineRule(r.cfg.NodeMode)
	rep.Efficiency, err = stats.Ratio(rep.Baseline, rep.Total)
	if err != nil {
		return nil, errorf(distributedName, err)
	}

	stats.PrintDistributed(r.out, rep)
	return rep, r.finish(rep)
}

// baseline returns the configured sequential time, or measures it by a
// full sequential pass into a separate output directory.
func (r *Runner) baseline(ctx context.Context, jobs []common.Job) (time.Duration, error) {
	if r.cfg.Baseline > 0 {
		r.logger.Info("using configured baseline", "baseline", r.cfg.Baseline)
		return r.cfg.Baseline, nil
	}

	r.logger.Info("measuring sequential baseline")
	rec, err := r.runSequential(ctx, common.Retarget(jobs, filepath.Join(r.cfg.OutputDir, "baseline")))
	if err != nil {
		return 0, fmt.Errorf("baseline: %w", err)
	}
	return rec.Elapsed, nil
}

func (r *Runner) nodeOutputDir(id int) string {
	return filepath.Join(r.cfg.OutputDir, fmt.Sprintf("node%d", id))
}

func (r *Runner) openQueue(ctx context.Context, nodes int) (queue.ResultQueue, error) {
	if r.cfg.RedisAddr == "" {
		return queue.NewMemoryQueue(nodes), nil
	}
	r.logger.Info("using Redis result queue", "addr", r.cfg.RedisAddr)
	return queue.NewRedisQueue(ctx, r.cfg.RedisAddr, r.runID)
}
