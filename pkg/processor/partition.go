package processor

import (
	"errors"
	"fmt"

	"studyguide.parallel/imgbench/pkg/common"
)

var ErrInvalidPartitions = errors.New("partition count must be at least 1")

// Split cuts jobs into at most n contiguous partitions whose sizes differ
// by at most one; the earlier partitions absorb the remainder. Partition
// IDs start at 1. No partition is ever empty.
func Split(jobs []common.Job, n int) ([]common.Partition, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidPartitions, n)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	n = min(n, len(jobs))

	size, rem := len(jobs)/n, len(jobs)%n
	parts := make([]common.Partition, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rem {
			end++
		}
		parts = append(parts, common.Partition{ID: i + 1, Jobs: jobs[start:end]})
		start = end
	}
	return parts, nil
}
