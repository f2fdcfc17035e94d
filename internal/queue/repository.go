package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Job statuses. Retrying jobs stay pending with a future run_at; dead jobs
// exhausted their budget and are kept for manual inspection.
const (
	StatusPending = "pending"
	StatusDead    = "dead"
)

// Job is one unit of queued work.
type Job struct {
	ID          string
	Key         string
	Payload     json.RawMessage
	Attempts    int
	MaxAttempts int
	RunAt       time.Time
	CreatedAt   time.Time
}

// Repository persists jobs in the dispatch_jobs table.
type Repository struct {
	DB *sql.DB
}

// NewRepository returns a Repository using the given database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Insert stores a new pending job.
func (r *Repository) Insert(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO dispatch_jobs (id, key, payload, attempts, max_attempts, status, run_at, created_at)
		VALUES ($1, $2, $3, 0, $4, 'pending', $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, job.ID, job.Key, []byte(job.Payload), job.MaxAttempts, job.RunAt, job.CreatedAt)
	return err
}

// ClaimDue atomically claims up to limit due jobs and increments their attempt
// counters. SKIP LOCKED lets multiple workers drain the queue without handing
// the same job to two of them; a claimed job that is neither completed nor
// failed (worker crash) stays claimable because its status is untouched.
func (r *Repository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Job, error) {
	query := `
		UPDATE dispatch_jobs
		SET attempts = attempts + 1
		WHERE id IN (
			SELECT id FROM dispatch_jobs
			WHERE status = 'pending' AND run_at <= $1
			ORDER BY run_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, key, payload, attempts, max_attempts, run_at, created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job := &Job{}
		var payload []byte
		if err := rows.Scan(&job.ID, &job.Key, &payload, &job.Attempts, &job.MaxAttempts, &job.RunAt, &job.CreatedAt); err != nil {
			return nil, err
		}
		job.Payload = payload
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Complete removes a successfully handled job.
func (r *Repository) Complete(ctx context.Context, jobID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM dispatch_jobs WHERE id = $1`, jobID)
	return err
}

// Fail records a failed attempt. Dead jobs keep their row and last error for
// inspection; retryable ones are rescheduled at nextRunAt.
func (r *Repository) Fail(ctx context.Context, jobID string, errMsg string, nextRunAt time.Time, dead bool) error {
	if dead {
		query := `UPDATE dispatch_jobs SET status = 'dead', last_error = $1 WHERE id = $2`
		_, err := r.DB.ExecContext(ctx, query, errMsg, jobID)
		return err
	}
	query := `UPDATE dispatch_jobs SET last_error = $1, run_at = $2 WHERE id = $3`
	_, err := r.DB.ExecContext(ctx, query, errMsg, nextRunAt, jobID)
	return err
}

// PendingCount returns the number of jobs waiting to run.
func (r *Repository) PendingCount(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatch_jobs WHERE status = 'pending'`).Scan(&count)
	return count, err
}
