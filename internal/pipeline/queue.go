package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"adstudio/internal/domain"
)

const defaultQueueKey = "adstudio:batches"

// QueuedBatch is a batch request waiting for a worker.
type QueuedBatch struct {
	ID         string              `json:"id"`
	Request    domain.BatchRequest `json:"request"`
	EnqueuedAt time.Time           `json:"enqueuedAt"`
}

// Queue is a FIFO of batch requests on a Redis list.
type Queue struct {
	client redis.Cmdable
	key    string
	now    func() time.Time
}

func NewQueue(client redis.Cmdable) *Queue {
	return &Queue{client: client, key: defaultQueueKey, now: time.Now}
}

// Enqueue pushes req and returns the queued envelope.
func (q *Queue) Enqueue(ctx context.Context, req domain.BatchRequest) (QueuedBatch, error) {
	job := QueuedBatch{ID: uuid.NewString(), Request: req, EnqueuedAt: q.now().UTC()}
	raw, err := json.Marshal(job)
	if err != nil {
		return QueuedBatch{}, err
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return QueuedBatch{}, fmt.Errorf("enqueue batch: %w", err)
	}
	return job, nil
}

// Dequeue waits up to timeout for the oldest job. ok is false when the wait
// timed out.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (job QueuedBatch, ok bool, err error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return QueuedBatch{}, false, nil
	}
	if err != nil {
		return QueuedBatch{}, false, fmt.Errorf("dequeue batch: %w", err)
	}
	if len(res) != 2 {
		return QueuedBatch{}, false, fmt.Errorf("dequeue batch: unexpected reply of %d items", len(res))
	}
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return QueuedBatch{}, false, fmt.Errorf("decode queued batch: %w", err)
	}
	return job, true, nil
}
