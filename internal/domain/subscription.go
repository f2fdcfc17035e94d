package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for subscription admission.
var (
	// ErrSelfSubscription is returned when a user tries to subscribe to a
	// meetup they organize.
	ErrSelfSubscription = errors.New("cannot subscribe to your own meetup")
	// ErrDuplicateSubscription is returned when the user already holds a
	// subscription to the meetup.
	ErrDuplicateSubscription = errors.New("already subscribed to this meetup")
	// ErrTimeConflict is returned when the user already holds a subscription
	// to another meetup scheduled at the same instant.
	ErrTimeConflict = errors.New("already subscribed to another meetup at this time")
)

// Subscription represents one user's intent to attend one meetup.
// swagger:model Subscription
type Subscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MeetupID  string    `json:"meetup_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSubscription returns a new Subscription. ID is typically set by the repository on create.
func NewSubscription(userID, meetupID string, createdAt time.Time) *Subscription {
	return &Subscription{
		UserID:    userID,
		MeetupID:  meetupID,
		CreatedAt: createdAt,
	}
}

// SubscriptionWithMeetup bundles a subscription with its meetup for listings.
type SubscriptionWithMeetup struct {
	Subscription *Subscription `json:"subscription"`
	Meetup       *Meetup       `json:"meetup"`
}

// SubscriptionRepository defines storage operations for subscriptions.
// Create must surface the (user_id, meetup_id) uniqueness constraint as
// ErrDuplicateSubscription; that constraint, not the service's read-then-act
// check, is the hard guarantee under concurrent subscribes.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
	GetByMeetupAndUser(ctx context.Context, meetupID, userID string) (*Subscription, error)
	// ExistsAtDate reports whether the user holds a subscription to any meetup
	// scheduled exactly at date.
	ExistsAtDate(ctx context.Context, userID string, date time.Time) (bool, error)
	// ListUpcomingByUserID returns the user's subscriptions to meetups with
	// date strictly after the given instant, ascending by meetup date.
	ListUpcomingByUserID(ctx context.Context, userID string, after time.Time) ([]*SubscriptionWithMeetup, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionService is the admission-control core for attending meetups.
type SubscriptionService interface {
	// Subscribe runs the ordered admission checks and, on acceptance, creates
	// the subscription, records a notification for the organizer, and enqueues
	// the notification mail job. Check order is part of the contract: exists,
	// not organizer, not past, no duplicate, no time conflict.
	Subscribe(ctx context.Context, userID, meetupID string) (*Subscription, error)
	// Unsubscribe deletes the subscription if it belongs to actorID. There is
	// no past-event guard: cancelling attendance to an already-occurred meetup
	// is allowed.
	Unsubscribe(ctx context.Context, subscriptionID, actorID string) error
	// ListForUser returns only subscriptions to future meetups, closest first.
	ListForUser(ctx context.Context, userID string) ([]*SubscriptionWithMeetup, error)
}
