package common

import (
	"path/filepath"
	"time"
)

// Job is one input image and the place its transformed copy is written.
type Job struct {
	Index      int
	InputPath  string
	RelPath    string // path relative to the input directory
	OutputPath string
}

// WithOutputRoot returns a copy of the job that writes under root,
// keeping the relative layout of the input directory.
func (j Job) WithOutputRoot(root string) Job {
	j.OutputPath = filepath.Join(root, j.RelPath)
	return j
}

// Retarget rewrites every job in jobs to write under root.
func Retarget(jobs []Job, root string) []Job {
	out := make([]Job, len(jobs))
	for i, job := range jobs {
		out[i] = job.WithOutputRoot(root)
	}
	return out
}

// Partition is a contiguous run of jobs owned by one execution context.
type Partition struct {
	ID   int
	Jobs []Job
}

// JobResult records the outcome of a single job. Err is nil on success.
type JobResult struct {
	Job     Job
	Elapsed time.Duration
	Err     error
}

// TimingResult is what one execution context reports once it finishes
// its partition.
type TimingResult struct {
	Context   string
	Processed int
	Failed    int
	Elapsed   time.Duration
}

// Jobs returns the number of jobs the context touched.
func (t TimingResult) Jobs() int {
	return t.Processed + t.Failed
}

// NodeResult is the message a simulated node sends back to the master.
type NodeResult struct {
	NodeID    int   `json:"node_id"`
	Images    int   `json:"images"`
	Failed    int   `json:"failed"`
	ElapsedNS int64 `json:"elapsed_ns"`
}

func (n NodeResult) Elapsed() time.Duration {
	return time.Duration(n.ElapsedNS)
}
