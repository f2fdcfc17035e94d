// Package queue implements a Postgres-backed named-job queue. Producers
// enqueue a payload under a job key; a background worker dispatches due jobs
// to the handler registered for that key, retrying failed attempts with
// backoff until the retry budget is exhausted.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"meetapp/internal/domain"
)

// Queue is the producer side. It satisfies domain.TaskQueue.
type Queue struct {
	repo   *Repository
	logger *slog.Logger
}

// New returns a Queue backed by the given repository.
func New(repo *Repository, logger *slog.Logger) *Queue {
	return &Queue{
		repo:   repo,
		logger: logger.With("component", "queue"),
	}
}

// Enqueue appends a job for the handler registered under key. The payload is
// stored as JSON and handed back to the handler verbatim. Enqueue only
// touches the local database; it never waits on the downstream transport.
func (q *Queue) Enqueue(ctx context.Context, key string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	now := time.Now()
	job := &Job{
		ID:          uuid.NewString(),
		Key:         key,
		Payload:     raw,
		MaxAttempts: DefaultMaxAttempts,
		RunAt:       now,
		CreatedAt:   now,
	}
	if err := q.repo.Insert(ctx, job); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	q.logger.Debug("job enqueued", "job_id", job.ID, "key", key)
	return nil
}

var _ domain.TaskQueue = (*Queue)(nil)
