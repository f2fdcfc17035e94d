package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"meetapp/internal/domain"
)

// uniqueViolation is the Postgres error code raised when an insert breaks a
// unique constraint.
const uniqueViolation = "23505"

type subscriptionRepository struct {
	DB *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) domain.SubscriptionRepository {
	return &subscriptionRepository{
		DB: db,
	}
}

// Create inserts the subscription. The subscriptions table carries
// UNIQUE (user_id, meetup_id); a violation means a concurrent subscribe for
// the same pair won the race and is reported as ErrDuplicateSubscription.
func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, meetup_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, sub.UserID, sub.MeetupID, sub.CreatedAt).Scan(&sub.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateSubscription
		}
		return err
	}
	return nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `
		SELECT id, user_id, meetup_id, created_at
		FROM subscriptions
		WHERE id = $1
	`
	sub := &domain.Subscription{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&sub.ID, &sub.UserID, &sub.MeetupID, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepository) GetByMeetupAndUser(ctx context.Context, meetupID, userID string) (*domain.Subscription, error) {
	query := `
		SELECT id, user_id, meetup_id, created_at
		FROM subscriptions
		WHERE meetup_id = $1 AND user_id = $2
	`
	sub := &domain.Subscription{}
	err := r.DB.QueryRowContext(ctx, query, meetupID, userID).Scan(&sub.ID, &sub.UserID, &sub.MeetupID, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepository) ExistsAtDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM subscriptions s
			JOIN meetups m ON m.id = s.meetup_id
			WHERE s.user_id = $1 AND m.date = $2
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID, date).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *subscriptionRepository) ListUpcomingByUserID(ctx context.Context, userID string, after time.Time) ([]*domain.SubscriptionWithMeetup, error) {
	query := `
		SELECT s.id, s.user_id, s.meetup_id, s.created_at,
		       m.id, m.title, m.description, m.location, m.date, m.organizer_id, m.created_at, m.updated_at
		FROM subscriptions s
		JOIN meetups m ON m.id = s.meetup_id
		WHERE s.user_id = $1 AND m.date > $2
		ORDER BY m.date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.SubscriptionWithMeetup, 0)
	for rows.Next() {
		sub := &domain.Subscription{}
		m := &domain.Meetup{}
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.MeetupID, &sub.CreatedAt,
			&m.ID, &m.Title, &m.Description, &m.Location, &m.Date, &m.OrganizerID, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &domain.SubscriptionWithMeetup{Subscription: sub, Meetup: m})
	}
	return result, rows.Err()
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM subscriptions WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
