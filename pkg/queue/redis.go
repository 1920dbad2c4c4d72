package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"studyguide.parallel/imgbench/pkg/common"
)

const ResultQueueKeyPrefix = "imgbench:results:"

// RedisQueue is a ResultQueue backed by a Redis list, one list per run.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue connects to addr and scopes the queue to runID.
func NewRedisQueue(ctx context.Context, addr, runID string) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQueue{
		client: client,
		key:    ResultQueueKeyPrefix + runID,
	}, nil
}

// Key returns the Redis list the queue uses.
func (q *RedisQueue) Key() string {
	return q.key
}

// Push adds a node result to the queue
func (q *RedisQueue) Push(ctx context.Context, res common.NodeResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

// Drain pops n results, blocking on an empty list.
func (q *RedisQueue) Drain(ctx context.Context, n int) ([]common.NodeResult, error) {
	out := make([]common.NodeResult, 0, n)
	for len(out) < n {
		reply, err := q.client.BRPop(ctx, 0, q.key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to pop result: %w", err)
		}
		if len(reply) < 2 {
			return nil, fmt.Errorf("unexpected result format")
		}

		var res common.NodeResult
		if err := json.Unmarshal([]byte(reply[1]), &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		out = append(out, res)
	}
	sortByNode(out)
	return out, nil
}

// Close drops the run's list and closes the connection.
func (q *RedisQueue) Close() error {
	delErr := q.client.Del(context.Background(), q.key).Err()
	if err := q.client.Close(); err != nil {
		return err
	}
	return delErr
}
