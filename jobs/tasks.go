package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskFlushViews drains the Redis view counters into Postgres.
	TaskFlushViews = "properties:flush_views"
)

// ViewFlusher drains accumulated listing view counters into storage.
type ViewFlusher interface {
	FlushViews(ctx context.Context) error
}

// NewFlushViewsTask constructs the periodic flush task. It carries no payload;
// the counters live in Redis.
func NewFlushViewsTask() *asynq.Task {
	return asynq.NewTask(TaskFlushViews, nil)
}

// NewFlushViewsHandler returns the Asynq handler for TaskFlushViews.
func NewFlushViewsHandler(flusher ViewFlusher, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := flusher.FlushViews(ctx); err != nil {
			if logger != nil {
				logger.Error("flush views", slog.Any("error", err))
			}
			return err
		}
		return nil
	}
}
