package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	QueueName      = "audit"
	TaskTypeRecord = "audit:record"
)

func NewRecordTask(e Event) (*asynq.Task, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeRecord, data), nil
}

// Queue hands events to the worker instead of writing them inline.
type Queue struct {
	client *asynq.Client
}

func NewQueue(client *asynq.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Record(ctx context.Context, e Event) error {
	task, err := NewRecordTask(e)
	if err != nil {
		return fmt.Errorf("building audit task: %w", err)
	}

	if _, err := q.client.EnqueueContext(ctx, task, asynq.Queue(QueueName), asynq.TaskID(e.ID.String())); err != nil {
		return fmt.Errorf("enqueueing audit event: %w", err)
	}

	return nil
}

// HandleRecordTask returns the worker handler that drains queued events into sink.
func HandleRecordTask(sink Sink) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var e Event
		if err := json.Unmarshal(t.Payload(), &e); err != nil {
			return fmt.Errorf("decoding audit task: %w: %w", err, asynq.SkipRetry)
		}

		return sink.Record(ctx, e)
	}
}
