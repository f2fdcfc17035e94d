package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for meetup operations.
var (
	// ErrPastMeetup is returned when an operation targets a meetup whose
	// scheduled time has already elapsed.
	ErrPastMeetup = errors.New("meetup has already happened")
	// ErrInvalidDate is returned on create when the meetup date is not
	// strictly in the future at hour granularity.
	ErrInvalidDate = errors.New("meetup date has already passed")
)

// Meetup represents an organizer-published, time-boxed event.
// swagger:model Meetup
type Meetup struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	OrganizerID string    `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewMeetup returns a new Meetup with the given fields. ID is typically set by the repository on create.
func NewMeetup(title, description, location string, date time.Time, organizerID string, createdAt, updatedAt time.Time) *Meetup {
	return &Meetup{
		Title:       title,
		Description: description,
		Location:    location,
		Date:        date,
		OrganizerID: organizerID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// IsPast reports whether the meetup's scheduled time has elapsed at now.
// Derived, never stored; callers must use a single now per request so that
// existence and mutation checks agree within one call.
func (m *Meetup) IsPast(now time.Time) bool {
	return !now.Before(m.Date)
}

// MeetupWithOrganizer bundles a meetup with its organizer, assembled by the
// caller from separate lookups.
type MeetupWithOrganizer struct {
	Meetup    *Meetup `json:"meetup"`
	Organizer *User   `json:"organizer"`
}

// MeetupUpdate holds the optional fields of a partial meetup update.
// Nil fields are left unchanged.
type MeetupUpdate struct {
	Title       *string
	Description *string
	Location    *string
	Date        *time.Time
}

// MeetupRepository defines the interface for meetup storage.
type MeetupRepository interface {
	Create(ctx context.Context, meetup *Meetup) error
	GetByID(ctx context.Context, id string) (*Meetup, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Meetup, error)
	// ListUpcoming returns meetups with date after the given instant, ascending
	// by date. When day is non-nil only meetups on that calendar day are
	// returned.
	ListUpcoming(ctx context.Context, after time.Time, day *time.Time, params PaginationParams) ([]*Meetup, int, error)
	Update(ctx context.Context, meetupID string, fields MeetupUpdate) (*Meetup, error)
	Delete(ctx context.Context, id string) error
}

// MeetupService defines the business logic for organizer-owned meetups.
type MeetupService interface {
	CreateMeetup(ctx context.Context, organizerID, title, description, location string, date time.Time) (*Meetup, error)
	GetMeetupByID(ctx context.Context, meetupID string) (*MeetupWithOrganizer, error)
	ListUpcomingMeetups(ctx context.Context, day *time.Time, params PaginationParams) ([]*MeetupWithOrganizer, int, error)
	ListMeetupsByOrganizer(ctx context.Context, organizerID string) ([]*Meetup, error)
	UpdateMeetup(ctx context.Context, meetupID, actorID string, fields MeetupUpdate) (*Meetup, error)
	DeleteMeetup(ctx context.Context, meetupID, actorID string) error
}
