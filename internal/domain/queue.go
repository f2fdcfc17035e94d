package domain

import "context"

// TaskQueue is the port through which services hand work to the background
// dispatcher. Enqueue appends a job for the handler registered under key and
// returns without waiting for the job to run; it must never block the request
// path on downstream transport errors.
type TaskQueue interface {
	Enqueue(ctx context.Context, key string, payload any) error
}

// JobKeySubscriptionMail identifies the job that emails an organizer about a
// new subscription.
const JobKeySubscriptionMail = "subscription_mail"

// SubscriptionMailPayload is the payload of a subscription_mail job. It
// carries the fully hydrated meetup (organizer included) and subscriber so the
// worker needs no further lookups.
type SubscriptionMailPayload struct {
	Meetup     *Meetup `json:"meetup"`
	Organizer  *User   `json:"organizer"`
	Subscriber *User   `json:"subscriber"`
}
