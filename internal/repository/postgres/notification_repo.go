package postgres

import (
	"context"
	"database/sql"
	"errors"

	"meetapp/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (content, recipient_id, read, created_at)
		VALUES ($1, $2, FALSE, $3)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, n.Content, n.RecipientID, n.CreatedAt).Scan(&n.ID)
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `
		SELECT id, content, recipient_id, read, created_at
		FROM notifications
		WHERE id = $1
	`
	n := &domain.Notification{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.Content, &n.RecipientID, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *notificationRepository) ListByRecipientID(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, content, recipient_id, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.Content, &n.RecipientID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	query := `
		UPDATE notifications SET read = TRUE
		WHERE id = $1
		RETURNING id, content, recipient_id, read, created_at
	`
	n := &domain.Notification{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.Content, &n.RecipientID, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}
