package runner

import (
	"context"
	"path/filepath"
	"slices"

	"studyguide.parallel/imgbench/pkg/stats"
)

const allName = "All"

// All runs the sequential, parallel and distributed strategies back to
// back, each into its own subdirectory of the output directory. The
// sequential time becomes the distributed baseline unless one is
// configured. The returned report merges the records of all three.
func (r *Runner) All(ctx context.Context) (*stats.Report, error) {
	seqRep, err := r.derive("sequential").Sequential(ctx)
	if err != nil {
		return nil, err
	}

	parRep, err := r.derive("parallel").Parallel(ctx)
	if err != nil {
		return nil, err
	}

	dist := r.derive("distributed")
	if dist.cfg.Baseline == 0 {
		dist.cfg.Baseline = seqRep.Records[0].Elapsed
	}
	distRep, err := dist.Distributed(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.writeMetrics(seqRep, parRep, distRep); err != nil {
		return nil, err
	}

	rep := r.newReport(allName, seqRep.Images)
	for _, sub := range []*stats.Report{seqRep, parRep, distRep} {
		rep.Records = append(rep.Records, sub.Records...)
	}
	rep.Baseline = distRep.Baseline
	rep.Total = distRep.Total
	rep.CombineRule = distRep.CombineRule
	rep.Efficiency = distRep.Efficiency
	return rep, nil
}

// derive returns a runner sharing r's run ID whose output goes to a
// subdirectory. Metrics are left to the caller so one file holds them all.
func (r *Runner) derive(sub string) *Runner {
	cfg := *r.cfg
	cfg.WorkerCounts = slices.Clone(r.cfg.WorkerCounts)
	cfg.OutputDir = filepath.Join(r.cfg.OutputDir, sub)
	cfg.MetricsFile = ""

	child := *r
	child.cfg = &cfg
	child.logger = r.logger.With("strategy", sub)
	return &child
}
