// Package queue carries node results back to the master of a distributed
// simulation run.
package queue

import (
	"context"
	"sort"

	"studyguide.parallel/imgbench/pkg/common"
)

// ResultQueue is the channel simulated nodes report on. Both ends live in
// the same process; the Redis implementation exists so the hand-off goes
// through a real broker when one is configured.
type ResultQueue interface {
	Push(ctx context.Context, res common.NodeResult) error
	// Drain blocks until n results arrived and returns them sorted by node.
	Drain(ctx context.Context, n int) ([]common.NodeResult, error)
	Close() error
}

// MemoryQueue is a buffered-channel ResultQueue.
type MemoryQueue struct {
	results chan common.NodeResult
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{results: make(chan common.NodeResult, capacity)}
}

func (q *MemoryQueue) Push(ctx context.Context, res common.NodeResult) error {
	select {
	case q.results <- res:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Drain(ctx context.Context, n int) ([]common.NodeResult, error) {
	out := make([]common.NodeResult, 0, n)
	for len(out) < n {
		select {
		case res := <-q.results:
			out = append(out, res)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	sortByNode(out)
	return out, nil
}

func (q *MemoryQueue) Close() error {
	return nil
}

func sortByNode(results []common.NodeResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].NodeID < results[j].NodeID
	})
}
