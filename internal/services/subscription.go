package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meetapp/internal/domain"
)

type subscriptionService struct {
	meetupRepo       domain.MeetupRepository
	subscriptionRepo domain.SubscriptionRepository
	notificationRepo domain.NotificationRepository
	userRepo         domain.UserRepository
	taskQueue        domain.TaskQueue
	logger           *slog.Logger
}

// NewSubscriptionService creates the subscription admission service with the
// given repositories, task queue, and logger.
func NewSubscriptionService(
	meetupRepo domain.MeetupRepository,
	subscriptionRepo domain.SubscriptionRepository,
	notificationRepo domain.NotificationRepository,
	userRepo domain.UserRepository,
	taskQueue domain.TaskQueue,
	logger *slog.Logger,
) domain.SubscriptionService {
	return &subscriptionService{
		meetupRepo:       meetupRepo,
		subscriptionRepo: subscriptionRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		taskQueue:        taskQueue,
		logger:           logger,
	}
}

// Subscribe evaluates the admission checks in order; the first failing check
// decides the error the caller sees. All temporal checks use the same now.
func (s *subscriptionService) Subscribe(ctx context.Context, userID, meetupID string) (*domain.Subscription, error) {
	now := time.Now()

	meetup, err := s.meetupRepo.GetByID(ctx, meetupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get meetup: %w", err)
	}

	if meetup.OrganizerID == userID {
		return nil, domain.ErrSelfSubscription
	}

	if meetup.IsPast(now) {
		return nil, domain.ErrPastMeetup
	}

	if _, err := s.subscriptionRepo.GetByMeetupAndUser(ctx, meetupID, userID); err == nil {
		return nil, domain.ErrDuplicateSubscription
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	conflict, err := s.subscriptionRepo.ExistsAtDate(ctx, userID, meetup.Date)
	if err != nil {
		return nil, fmt.Errorf("check time conflict: %w", err)
	}
	if conflict {
		return nil, domain.ErrTimeConflict
	}

	sub := domain.NewSubscription(userID, meetupID, now)
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		// A concurrent subscribe for the same pair may win between the check
		// above and this insert; the unique constraint reports it here.
		if errors.Is(err, domain.ErrDuplicateSubscription) {
			return nil, domain.ErrDuplicateSubscription
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	// The subscription stands from here on. Notification and mail dispatch are
	// secondary effects: failures are logged, never surfaced to the caller.
	s.notifyOrganizer(ctx, meetup, userID, now)

	return sub, nil
}

// notifyOrganizer records the in-app notification and enqueues the mail job
// for an accepted subscription.
func (s *subscriptionService) notifyOrganizer(ctx context.Context, meetup *domain.Meetup, subscriberID string, now time.Time) {
	subscriber, err := s.userRepo.GetByID(ctx, subscriberID)
	if err != nil {
		s.logger.ErrorContext(ctx, "hydrate subscriber for notification",
			"meetup_id", meetup.ID, "user_id", subscriberID, "err", err)
	}

	content := fmt.Sprintf("New subscription to %s", meetup.Title)
	if subscriber != nil {
		content = fmt.Sprintf("%s subscribed to %s", subscriber.Name, meetup.Title)
	}
	notification := domain.NewNotification(content, meetup.OrganizerID, now)
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.ErrorContext(ctx, "create organizer notification",
			"meetup_id", meetup.ID, "organizer_id", meetup.OrganizerID, "err", err)
	}

	organizer, err := s.userRepo.GetByID(ctx, meetup.OrganizerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "hydrate organizer for mail job",
			"meetup_id", meetup.ID, "organizer_id", meetup.OrganizerID, "err", err)
		return
	}
	if subscriber == nil {
		return
	}

	payload := &domain.SubscriptionMailPayload{
		Meetup:     meetup,
		Organizer:  organizer,
		Subscriber: subscriber,
	}
	if err := s.taskQueue.Enqueue(ctx, domain.JobKeySubscriptionMail, payload); err != nil {
		s.logger.ErrorContext(ctx, "enqueue subscription mail",
			"meetup_id", meetup.ID, "user_id", subscriberID, "err", err)
	}
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, subscriptionID, actorID string) error {
	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get subscription: %w", err)
	}
	if sub.UserID != actorID {
		return domain.ErrForbidden
	}
	// No past-event guard: a user may cancel attendance retroactively.
	if err := s.subscriptionRepo.Delete(ctx, subscriptionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (s *subscriptionService) ListForUser(ctx context.Context, userID string) ([]*domain.SubscriptionWithMeetup, error) {
	subs, err := s.subscriptionRepo.ListUpcomingByUserID(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if subs == nil {
		subs = []*domain.SubscriptionWithMeetup{}
	}
	return subs, nil
}
