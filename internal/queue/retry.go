package queue

import (
	"math/rand"
	"time"
)

// Retry delays between attempts. Email is the least-durable leg of a
// subscription, so the schedule stays short compared to webhook-style
// deliveries: a notification about an upcoming meetup loses value fast.
var retryDelays = []time.Duration{
	30 * time.Second,
	2 * time.Minute,
	10 * time.Minute,
	30 * time.Minute,
}

const (
	// DefaultMaxAttempts is the retry budget per job, first attempt included.
	DefaultMaxAttempts = 5

	// JitterFactor is the ±percentage of jitter applied to delays.
	JitterFactor = 0.2
)

// NextRetryDelay returns the delay before the next attempt, with jitter to
// avoid synchronized retries. attempts is the number of attempts already made.
func NextRetryDelay(attempts int) time.Duration {
	idx := attempts - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(retryDelays) {
		idx = len(retryDelays) - 1
	}

	base := retryDelays[idx]
	jitterRange := float64(base) * JitterFactor
	jitter := (rand.Float64()*2 - 1) * jitterRange

	return time.Duration(float64(base) + jitter)
}

// NextRetryAt returns the wall-clock time of the next attempt.
func NextRetryAt(attempts int) time.Time {
	return time.Now().Add(NextRetryDelay(attempts))
}

// IsExhausted reports whether the job has used up its attempt budget.
func IsExhausted(attempts, maxAttempts int) bool {
	return attempts >= maxAttempts
}
