package stats

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidRatio = errors.New("invalid ratio")

// Ratio returns baseline / measured in seconds. Both durations must be
// positive, so the result is always strictly positive and finite.
func Ratio(baseline, measured time.Duration) (float64, error) {
	if baseline <= 0 || measured <= 0 {
		return 0, fmt.Errorf("%w: baseline %v, measured %v", ErrInvalidRatio, baseline, measured)
	}
	r := baseline.Seconds() / measured.Seconds()
	if math.IsInf(r, 0) || math.IsNaN(r) || r <= 0 {
		return 0, fmt.Errorf("%w: %v / %v", ErrInvalidRatio, baseline, measured)
	}
	return r, nil
}

// Record holds timing for one execution context or one pool-size trial.
type Record struct {
	Context    string
	Workers    int
	Processed  int
	Failed     int
	Elapsed    time.Duration
	Speedup    float64 // zero when not computed
	Efficiency float64 // speedup / workers, zero when not computed
}

// Jobs returns the number of jobs the record covers.
func (r Record) Jobs() int {
	return r.Processed + r.Failed
}

// Report is the summary of one runner invocation.
type Report struct {
	RunID     string
	Runner    string
	Timestamp time.Time
	InputDir  string
	OutputDir string
	Images    int
	Records   []Record

	// Distributed simulation only.
	Baseline    time.Duration
	Total       time.Duration
	CombineRule string
	Efficiency  float64
}
