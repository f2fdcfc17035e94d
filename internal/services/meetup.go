package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetapp/internal/domain"
)

type meetupService struct {
	meetupRepo domain.MeetupRepository
	userRepo   domain.UserRepository
}

// NewMeetupService creates a MeetupService with the given repositories.
func NewMeetupService(meetupRepo domain.MeetupRepository, userRepo domain.UserRepository) domain.MeetupService {
	return &meetupService{
		meetupRepo: meetupRepo,
		userRepo:   userRepo,
	}
}

// CreateMeetup rejects dates whose start of hour is not strictly in the
// future, so a meetup cannot be scheduled into the current or a past hour.
func (s *meetupService) CreateMeetup(ctx context.Context, organizerID, title, description, location string, date time.Time) (*domain.Meetup, error) {
	if organizerID == "" {
		return nil, fmt.Errorf("meetup organizer is required")
	}

	now := time.Now()
	if !date.Truncate(time.Hour).After(now) {
		return nil, domain.ErrInvalidDate
	}

	meetup := domain.NewMeetup(title, description, location, date, organizerID, now, now)
	if err := s.meetupRepo.Create(ctx, meetup); err != nil {
		return nil, fmt.Errorf("create meetup: %w", err)
	}
	return meetup, nil
}

func (s *meetupService) GetMeetupByID(ctx context.Context, meetupID string) (*domain.MeetupWithOrganizer, error) {
	meetup, err := s.meetupRepo.GetByID(ctx, meetupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	organizer, err := s.userRepo.GetByID(ctx, meetup.OrganizerID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("get organizer: %w", err)
		}
		// Organizer account deleted; return the meetup without it.
		organizer = nil
	}
	return &domain.MeetupWithOrganizer{Meetup: meetup, Organizer: organizer}, nil
}

func (s *meetupService) ListUpcomingMeetups(ctx context.Context, day *time.Time, params domain.PaginationParams) ([]*domain.MeetupWithOrganizer, int, error) {
	meetups, total, err := s.meetupRepo.ListUpcoming(ctx, time.Now(), day, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list meetups: %w", err)
	}

	// Fetch organizers one by one with a small memo. This keeps the
	// implementation simple; we can optimize later if needed.
	organizersByID := make(map[string]*domain.User)
	result := make([]*domain.MeetupWithOrganizer, 0, len(meetups))
	for _, m := range meetups {
		organizer, ok := organizersByID[m.OrganizerID]
		if !ok {
			organizer, err = s.userRepo.GetByID(ctx, m.OrganizerID)
			if err != nil {
				if !errors.Is(err, domain.ErrUserNotFound) {
					return nil, 0, fmt.Errorf("get organizer: %w", err)
				}
				organizer = nil
			}
			organizersByID[m.OrganizerID] = organizer
		}
		result = append(result, &domain.MeetupWithOrganizer{Meetup: m, Organizer: organizer})
	}
	return result, total, nil
}

func (s *meetupService) ListMeetupsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Meetup, error) {
	meetups, err := s.meetupRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list meetups by organizer: %w", err)
	}
	if meetups == nil {
		meetups = []*domain.Meetup{}
	}
	return meetups, nil
}

func (s *meetupService) UpdateMeetup(ctx context.Context, meetupID, actorID string, fields domain.MeetupUpdate) (*domain.Meetup, error) {
	now := time.Now()

	meetup, err := s.meetupRepo.GetByID(ctx, meetupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}
	if meetup.OrganizerID != actorID {
		return nil, domain.ErrForbidden
	}
	if meetup.IsPast(now) {
		return nil, domain.ErrPastMeetup
	}
	if fields.Date != nil && !fields.Date.After(now) {
		return nil, domain.ErrInvalidDate
	}

	updated, err := s.meetupRepo.Update(ctx, meetupID, fields)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update meetup: %w", err)
	}
	return updated, nil
}

func (s *meetupService) DeleteMeetup(ctx context.Context, meetupID, actorID string) error {
	now := time.Now()

	meetup, err := s.meetupRepo.GetByID(ctx, meetupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get meetup: %w", err)
	}
	if meetup.OrganizerID != actorID {
		return domain.ErrForbidden
	}
	if meetup.IsPast(now) {
		return domain.ErrPastMeetup
	}

	if err := s.meetupRepo.Delete(ctx, meetupID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete meetup: %w", err)
	}
	return nil
}
