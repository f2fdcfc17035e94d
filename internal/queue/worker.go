package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultBatchSize is the number of jobs to claim per poll.
	DefaultBatchSize = 20
	// DefaultPollInterval is the time between polls for due jobs.
	DefaultPollInterval = 5 * time.Second
	// DefaultHandlerTimeout bounds a single handler attempt. A timeout counts
	// as a retryable failure, not a crash.
	DefaultHandlerTimeout = 30 * time.Second
)

// Handler processes one job payload. A non-nil error schedules a retry until
// the job's attempt budget runs out.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Worker drains the queue independently of request handling. Handlers are
// registered per job key before Run is called.
type Worker struct {
	repo           *Repository
	logger         *slog.Logger
	handlers       map[string]Handler
	batchSize      int
	pollInterval   time.Duration
	handlerTimeout time.Duration
	started        bool
}

// NewWorker creates a worker with no handlers registered.
func NewWorker(repo *Repository, logger *slog.Logger) *Worker {
	return &Worker{
		repo:           repo,
		logger:         logger.With("component", "queue.worker"),
		handlers:       make(map[string]Handler),
		batchSize:      DefaultBatchSize,
		pollInterval:   DefaultPollInterval,
		handlerTimeout: DefaultHandlerTimeout,
	}
}

// Register binds a handler to a job key. Not safe to call after Run.
func (w *Worker) Register(key string, h Handler) {
	w.handlers[key] = h
}

// Run starts the worker loop. Blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w.started {
		return errors.New("worker already started")
	}
	w.started = true

	w.logger.Info("dispatch worker started", "poll_interval", w.pollInterval.String())

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("dispatch worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.processOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("process error", "error", err)
			}
		}
	}
}

// processOnce claims and processes a batch of due jobs.
func (w *Worker) processOnce(ctx context.Context) error {
	jobs, err := w.repo.ClaimDue(ctx, time.Now(), w.batchSize)
	if err != nil {
		return fmt.Errorf("claim due jobs: %w", err)
	}

	for _, job := range jobs {
		w.handle(ctx, job)
	}
	return nil
}

// handle runs one claimed job through its handler and records the outcome.
func (w *Worker) handle(ctx context.Context, job *Job) {
	handler, ok := w.handlers[job.Key]
	if !ok {
		// No handler will ever succeed for this key; bury the job immediately.
		w.logger.Error("no handler for job key", "job_id", job.ID, "key", job.Key)
		if err := w.repo.Fail(ctx, job.ID, "no handler registered for key "+job.Key, time.Time{}, true); err != nil {
			w.logger.Error("failed to bury job", "job_id", job.ID, "error", err)
		}
		return
	}

	attemptCtx, cancel := context.WithTimeout(ctx, w.handlerTimeout)
	err := w.runHandler(attemptCtx, handler, job.Payload)
	cancel()

	if err == nil {
		w.logger.Info("job handled",
			"job_id", job.ID,
			"key", job.Key,
			"attempt", job.Attempts,
		)
		if err := w.repo.Complete(ctx, job.ID); err != nil {
			w.logger.Error("failed to complete job", "job_id", job.ID, "error", err)
		}
		return
	}

	dead := IsExhausted(job.Attempts, job.MaxAttempts)
	w.logger.Warn("job attempt failed",
		"job_id", job.ID,
		"key", job.Key,
		"attempt", job.Attempts,
		"dead", dead,
		"error", err,
	)
	if failErr := w.repo.Fail(ctx, job.ID, err.Error(), NextRetryAt(job.Attempts), dead); failErr != nil {
		w.logger.Error("failed to record job failure", "job_id", job.ID, "error", failErr)
	}
}

// runHandler invokes the handler, converting a panic into a retryable error so
// a misbehaving handler cannot take down the worker loop.
func (w *Worker) runHandler(ctx context.Context, handler Handler, payload json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, payload)
}

// SetBatchSize overrides the default batch size.
func (w *Worker) SetBatchSize(size int) {
	if size > 0 {
		w.batchSize = size
	}
}

// SetPollInterval overrides the default poll interval.
func (w *Worker) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		w.pollInterval = interval
	}
}

// SetHandlerTimeout overrides the per-attempt handler timeout.
func (w *Worker) SetHandlerTimeout(timeout time.Duration) {
	if timeout > 0 {
		w.handlerTimeout = timeout
	}
}
