package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"meetapp/internal/domain"
)

type meetupRepository struct {
	DB *sql.DB
}

func NewMeetupRepository(db *sql.DB) domain.MeetupRepository {
	return &meetupRepository{
		DB: db,
	}
}

func (r *meetupRepository) Create(ctx context.Context, m *domain.Meetup) error {
	query := `
		INSERT INTO meetups (title, description, location, date, organizer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, m.Title, m.Description, m.Location, m.Date, m.OrganizerID, m.CreatedAt, m.UpdatedAt).
		Scan(&m.ID)
}

func (r *meetupRepository) GetByID(ctx context.Context, id string) (*domain.Meetup, error) {
	query := `
		SELECT id, title, description, location, date, organizer_id, created_at, updated_at
		FROM meetups
		WHERE id = $1
	`
	m := &domain.Meetup{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Title, &m.Description, &m.Location, &m.Date, &m.OrganizerID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *meetupRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Meetup, error) {
	query := `
		SELECT id, title, description, location, date, organizer_id, created_at, updated_at
		FROM meetups
		WHERE organizer_id = $1
		ORDER BY date ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meetups := make([]*domain.Meetup, 0)
	for rows.Next() {
		m := &domain.Meetup{}
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Location, &m.Date, &m.OrganizerID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		meetups = append(meetups, m)
	}
	return meetups, rows.Err()
}

func (r *meetupRepository) ListUpcoming(ctx context.Context, after time.Time, day *time.Time, params domain.PaginationParams) ([]*domain.Meetup, int, error) {
	where := []string{"date > $1"}
	args := []interface{}{after}
	n := 2
	if day != nil {
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)
		where = append(where, fmt.Sprintf("date >= $%d AND date < $%d", n, n+1))
		args = append(args, dayStart, dayEnd)
		n += 2
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM meetups WHERE %s`, whereClause)
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, location, date, organizer_id, created_at, updated_at
		FROM meetups
		WHERE %s
		ORDER BY date ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, n, n+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	meetups := make([]*domain.Meetup, 0)
	for rows.Next() {
		m := &domain.Meetup{}
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Location, &m.Date, &m.OrganizerID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		meetups = append(meetups, m)
	}
	return meetups, total, rows.Err()
}

func (r *meetupRepository) Update(ctx context.Context, meetupID string, fields domain.MeetupUpdate) (*domain.Meetup, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if fields.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *fields.Title)
		n++
	}
	if fields.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *fields.Description)
		n++
	}
	if fields.Location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *fields.Location)
		n++
	}
	if fields.Date != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", n))
		args = append(args, *fields.Date)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, meetupID)
	}
	args = append(args, meetupID)
	query := fmt.Sprintf(`
		UPDATE meetups SET %s
		WHERE id = $%d
		RETURNING id, title, description, location, date, organizer_id, created_at, updated_at
	`, strings.Join(setClauses, ", "), n)
	m := &domain.Meetup{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&m.ID, &m.Title, &m.Description, &m.Location, &m.Date, &m.OrganizerID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *meetupRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM meetups WHERE id = $1`
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
