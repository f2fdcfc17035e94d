package domain

import (
	"context"
	"time"
)

// Notification is an in-app message for a user, stored independently of email
// delivery so it survives a failed or delayed send.
// swagger:model Notification
type Notification struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	RecipientID string    `json:"recipient_id"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewNotification returns a new unread Notification. ID is typically set by the repository on create.
func NewNotification(content, recipientID string, createdAt time.Time) *Notification {
	return &Notification{
		Content:     content,
		RecipientID: recipientID,
		CreatedAt:   createdAt,
	}
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID string) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
}

// NotificationService defines user-facing notification operations.
type NotificationService interface {
	ListForUser(ctx context.Context, userID string) ([]*Notification, error)
	// MarkRead marks the notification read; fails with ErrNotFound if it does
	// not exist or does not belong to actorID.
	MarkRead(ctx context.Context, notificationID, actorID string) (*Notification, error)
}
