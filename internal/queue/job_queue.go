package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/rando-engine/pkg/queue"
)

// JobsKey is the Redis list holding pending jobs.
const JobsKey = "rando:jobs"

// JobQueue is a FIFO of reachability jobs shared by the API and the workers.
type JobQueue struct {
	client *Client
}

func NewJobQueue(client *Client) *JobQueue {
	return &JobQueue{client: client}
}

// Enqueue adds a job to the end of the queue
func (q *JobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	data, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize job: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, JobsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue removes and returns the next job, or nil if the queue is empty
func (q *JobQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	result, err := q.client.rdb.LPop(ctx, JobsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}
	return parseJob(result)
}

// BlockingDequeue waits up to timeout for a job. It returns nil, nil when
// the wait times out.
func (q *JobQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, JobsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}
	return parseJob(result[1])
}

// Depth returns the number of pending jobs
func (q *JobQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, JobsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

func parseJob(data string) (*queue.Job, error) {
	job, err := queue.FromJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	return job, nil
}
