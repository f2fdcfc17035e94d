package services

import (
	"context"
	"errors"
	"fmt"

	"meetapp/internal/domain"
)

type notificationService struct {
	notificationRepo domain.NotificationRepository
}

// NewNotificationService creates a NotificationService with the given repository.
func NewNotificationService(notificationRepo domain.NotificationRepository) domain.NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) ListForUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByRecipientID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}

// MarkRead marks the notification read. Another user's notification reports
// ErrNotFound rather than ErrForbidden so existence is not leaked.
func (s *notificationService) MarkRead(ctx context.Context, notificationID, actorID string) (*domain.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	if notification.RecipientID != actorID {
		return nil, domain.ErrNotFound
	}
	updated, err := s.notificationRepo.MarkRead(ctx, notificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return updated, nil
}
