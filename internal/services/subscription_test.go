package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"meetapp/internal/domain"
)

type mockMeetupRepository struct {
	meetups   map[string]*domain.Meetup
	upcoming  []*domain.Meetup
	total     int
	err       error
	createErr error
	updated   *domain.Meetup
	deletedID string
}

func (m *mockMeetupRepository) Create(ctx context.Context, meetup *domain.Meetup) error {
	if m.createErr != nil {
		return m.createErr
	}
	meetup.ID = "m-new"
	return nil
}

func (m *mockMeetupRepository) GetByID(ctx context.Context, id string) (*domain.Meetup, error) {
	if m.err != nil {
		return nil, m.err
	}
	meetup, ok := m.meetups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return meetup, nil
}

func (m *mockMeetupRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Meetup, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Meetup
	for _, meetup := range m.meetups {
		if meetup.OrganizerID == organizerID {
			out = append(out, meetup)
		}
	}
	return out, nil
}

func (m *mockMeetupRepository) ListUpcoming(ctx context.Context, after time.Time, day *time.Time, params domain.PaginationParams) ([]*domain.Meetup, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.upcoming, m.total, nil
}

func (m *mockMeetupRepository) Update(ctx context.Context, meetupID string, fields domain.MeetupUpdate) (*domain.Meetup, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.updated != nil {
		return m.updated, nil
	}
	meetup, ok := m.meetups[meetupID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return meetup, nil
}

func (m *mockMeetupRepository) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

type mockSubscriptionRepository struct {
	subs            map[string]*domain.Subscription
	byMeetupAndUser map[string]*domain.Subscription
	conflictDates   map[int64]bool
	upcoming        []*domain.SubscriptionWithMeetup
	err             error
	createErr       error
	created         *domain.Subscription
	deletedID       string
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	if m.createErr != nil {
		return m.createErr
	}
	sub.ID = "sub-new"
	m.created = sub
	return nil
}

func (m *mockSubscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	if m.err != nil {
		return nil, m.err
	}
	sub, ok := m.subs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sub, nil
}

func (m *mockSubscriptionRepository) GetByMeetupAndUser(ctx context.Context, meetupID, userID string) (*domain.Subscription, error) {
	if sub, ok := m.byMeetupAndUser[meetupID+":"+userID]; ok {
		return sub, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockSubscriptionRepository) ExistsAtDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.conflictDates[date.UnixNano()], nil
}

func (m *mockSubscriptionRepository) ListUpcomingByUserID(ctx context.Context, userID string, after time.Time) ([]*domain.SubscriptionWithMeetup, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.upcoming, nil
}

func (m *mockSubscriptionRepository) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

type mockNotificationRepository struct {
	notifications map[string]*domain.Notification
	created       []*domain.Notification
	err           error
	createErr     error
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = "n-new"
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	n, ok := m.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return n, nil
}

func (m *mockNotificationRepository) ListByRecipientID(ctx context.Context, recipientID string) ([]*domain.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Notification
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	read := *n
	read.Read = true
	return &read, nil
}

type mockUserRepository struct {
	users        map[string]*domain.User
	usersByEmail map[string]*domain.User
	failIDs      map[string]bool
	createErr    error
	updateErr    error
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "u-new"
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.failIDs[id] {
		return nil, errors.New("db error")
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	return m.updateErr
}

type enqueuedJob struct {
	key     string
	payload any
}

type mockTaskQueue struct {
	jobs []enqueuedJob
	err  error
}

func (m *mockTaskQueue) Enqueue(ctx context.Context, key string, payload any) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, enqueuedJob{key: key, payload: payload})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	past := time.Now().Add(-48 * time.Hour)
	meetup := &domain.Meetup{ID: "m1", Title: "Go Night", Date: future, OrganizerID: "org1"}
	pastMeetup := &domain.Meetup{ID: "m2", Title: "Old Night", Date: past, OrganizerID: "org1"}
	organizer := &domain.User{ID: "org1", Name: "Olivia", Email: "olivia@example.com"}
	subscriber := &domain.User{ID: "u1", Name: "Sam", Email: "sam@example.com"}

	tests := []struct {
		name     string
		subRepo  *mockSubscriptionRepository
		meetupID string
		userID   string
		wantErr  error
	}{
		{
			name:     "success",
			subRepo:  &mockSubscriptionRepository{},
			meetupID: "m1",
			userID:   "u1",
		},
		{
			name:     "meetup not found",
			subRepo:  &mockSubscriptionRepository{},
			meetupID: "missing",
			userID:   "u1",
			wantErr:  domain.ErrNotFound,
		},
		{
			name:     "organizer cannot subscribe to own meetup",
			subRepo:  &mockSubscriptionRepository{},
			meetupID: "m1",
			userID:   "org1",
			wantErr:  domain.ErrSelfSubscription,
		},
		{
			name:     "past meetup rejected",
			subRepo:  &mockSubscriptionRepository{},
			meetupID: "m2",
			userID:   "u1",
			wantErr:  domain.ErrPastMeetup,
		},
		{
			name: "duplicate subscription rejected",
			subRepo: &mockSubscriptionRepository{
				byMeetupAndUser: map[string]*domain.Subscription{
					"m1:u1": {ID: "s1", UserID: "u1", MeetupID: "m1"},
				},
			},
			meetupID: "m1",
			userID:   "u1",
			wantErr:  domain.ErrDuplicateSubscription,
		},
		{
			name: "conflicting meetup at same instant rejected",
			subRepo: &mockSubscriptionRepository{
				conflictDates: map[int64]bool{future.UnixNano(): true},
			},
			meetupID: "m1",
			userID:   "u1",
			wantErr:  domain.ErrTimeConflict,
		},
		{
			name: "conflicting meetup at different instant allowed",
			subRepo: &mockSubscriptionRepository{
				conflictDates: map[int64]bool{future.Add(time.Hour).UnixNano(): true},
			},
			meetupID: "m1",
			userID:   "u1",
		},
		{
			name: "concurrent duplicate surfaces from insert",
			subRepo: &mockSubscriptionRepository{
				createErr: domain.ErrDuplicateSubscription,
			},
			meetupID: "m1",
			userID:   "u1",
			wantErr:  domain.ErrDuplicateSubscription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meetupRepo := &mockMeetupRepository{
				meetups: map[string]*domain.Meetup{"m1": meetup, "m2": pastMeetup},
			}
			userRepo := &mockUserRepository{
				users: map[string]*domain.User{"org1": organizer, "u1": subscriber},
			}
			notifRepo := &mockNotificationRepository{}
			queue := &mockTaskQueue{}

			svc := NewSubscriptionService(meetupRepo, tt.subRepo, notifRepo, userRepo, queue, testLogger())

			sub, err := svc.Subscribe(context.Background(), tt.userID, tt.meetupID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(notifRepo.created) != 0 {
					t.Errorf("rejected subscribe must not create notifications, got %d", len(notifRepo.created))
				}
				if len(queue.jobs) != 0 {
					t.Errorf("rejected subscribe must not enqueue jobs, got %d", len(queue.jobs))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sub == nil || sub.ID == "" {
				t.Fatal("expected created subscription with ID")
			}
			if sub.UserID != tt.userID || sub.MeetupID != tt.meetupID {
				t.Errorf("subscription has wrong identity: %+v", sub)
			}
			if len(notifRepo.created) != 1 {
				t.Fatalf("expected 1 notification, got %d", len(notifRepo.created))
			}
			if notifRepo.created[0].RecipientID != "org1" {
				t.Errorf("notification recipient = %s, want org1", notifRepo.created[0].RecipientID)
			}
			if len(queue.jobs) != 1 {
				t.Fatalf("expected 1 enqueued job, got %d", len(queue.jobs))
			}
			if queue.jobs[0].key != domain.JobKeySubscriptionMail {
				t.Errorf("job key = %s, want %s", queue.jobs[0].key, domain.JobKeySubscriptionMail)
			}
			payload, ok := queue.jobs[0].payload.(*domain.SubscriptionMailPayload)
			if !ok {
				t.Fatalf("unexpected payload type %T", queue.jobs[0].payload)
			}
			if payload.Organizer.ID != "org1" || payload.Subscriber.ID != "u1" || payload.Meetup.ID != "m1" {
				t.Errorf("payload not fully hydrated: %+v", payload)
			}
		})
	}
}

func TestSubscriptionService_Subscribe_SecondaryFailuresDoNotSurface(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	meetup := &domain.Meetup{ID: "m1", Title: "Go Night", Date: future, OrganizerID: "org1"}
	organizer := &domain.User{ID: "org1", Name: "Olivia", Email: "olivia@example.com"}
	subscriber := &domain.User{ID: "u1", Name: "Sam", Email: "sam@example.com"}

	t.Run("notification create failure", func(t *testing.T) {
		meetupRepo := &mockMeetupRepository{meetups: map[string]*domain.Meetup{"m1": meetup}}
		userRepo := &mockUserRepository{users: map[string]*domain.User{"org1": organizer, "u1": subscriber}}
		subRepo := &mockSubscriptionRepository{}
		notifRepo := &mockNotificationRepository{createErr: errors.New("db down")}
		queue := &mockTaskQueue{}

		svc := NewSubscriptionService(meetupRepo, subRepo, notifRepo, userRepo, queue, testLogger())
		sub, err := svc.Subscribe(context.Background(), "u1", "m1")
		if err != nil {
			t.Fatalf("subscribe must succeed despite notification failure, got %v", err)
		}
		if sub == nil {
			t.Fatal("expected subscription")
		}
		// The mail job is independent of the in-app notification.
		if len(queue.jobs) != 1 {
			t.Errorf("expected 1 enqueued job, got %d", len(queue.jobs))
		}
	})

	t.Run("enqueue failure", func(t *testing.T) {
		meetupRepo := &mockMeetupRepository{meetups: map[string]*domain.Meetup{"m1": meetup}}
		userRepo := &mockUserRepository{users: map[string]*domain.User{"org1": organizer, "u1": subscriber}}
		subRepo := &mockSubscriptionRepository{}
		notifRepo := &mockNotificationRepository{}
		queue := &mockTaskQueue{err: errors.New("queue down")}

		svc := NewSubscriptionService(meetupRepo, subRepo, notifRepo, userRepo, queue, testLogger())
		sub, err := svc.Subscribe(context.Background(), "u1", "m1")
		if err != nil {
			t.Fatalf("subscribe must succeed despite enqueue failure, got %v", err)
		}
		if sub == nil {
			t.Fatal("expected subscription")
		}
		if len(notifRepo.created) != 1 {
			t.Errorf("expected 1 notification, got %d", len(notifRepo.created))
		}
	})

	t.Run("subscriber lookup failure falls back and skips mail job", func(t *testing.T) {
		meetupRepo := &mockMeetupRepository{meetups: map[string]*domain.Meetup{"m1": meetup}}
		userRepo := &mockUserRepository{
			users:   map[string]*domain.User{"org1": organizer},
			failIDs: map[string]bool{"u1": true},
		}
		subRepo := &mockSubscriptionRepository{}
		notifRepo := &mockNotificationRepository{}
		queue := &mockTaskQueue{}

		svc := NewSubscriptionService(meetupRepo, subRepo, notifRepo, userRepo, queue, testLogger())
		sub, err := svc.Subscribe(context.Background(), "u1", "m1")
		if err != nil {
			t.Fatalf("subscribe must succeed despite subscriber lookup failure, got %v", err)
		}
		if sub == nil {
			t.Fatal("expected subscription")
		}
		if len(notifRepo.created) != 1 {
			t.Fatalf("expected fallback notification, got %d", len(notifRepo.created))
		}
		if notifRepo.created[0].Content != "New subscription to Go Night" {
			t.Errorf("unexpected fallback content %q", notifRepo.created[0].Content)
		}
		if len(queue.jobs) != 0 {
			t.Errorf("mail job needs the subscriber; expected 0 jobs, got %d", len(queue.jobs))
		}
	})
}

func TestSubscriptionService_Unsubscribe(t *testing.T) {
	tests := []struct {
		name           string
		subRepo        *mockSubscriptionRepository
		subscriptionID string
		actorID        string
		wantErr        error
		wantDeleted    string
	}{
		{
			name: "owner cancels",
			subRepo: &mockSubscriptionRepository{
				subs: map[string]*domain.Subscription{
					"s1": {ID: "s1", UserID: "u1", MeetupID: "m1"},
				},
			},
			subscriptionID: "s1",
			actorID:        "u1",
			wantDeleted:    "s1",
		},
		{
			name:           "unknown subscription",
			subRepo:        &mockSubscriptionRepository{subs: map[string]*domain.Subscription{}},
			subscriptionID: "missing",
			actorID:        "u1",
			wantErr:        domain.ErrNotFound,
		},
		{
			name: "someone else's subscription",
			subRepo: &mockSubscriptionRepository{
				subs: map[string]*domain.Subscription{
					"s1": {ID: "s1", UserID: "u1", MeetupID: "m1"},
				},
			},
			subscriptionID: "s1",
			actorID:        "u2",
			wantErr:        domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSubscriptionService(
				&mockMeetupRepository{},
				tt.subRepo,
				&mockNotificationRepository{},
				&mockUserRepository{},
				&mockTaskQueue{},
				testLogger(),
			)
			err := svc.Unsubscribe(context.Background(), tt.subscriptionID, tt.actorID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if tt.subRepo.deletedID != "" {
					t.Errorf("nothing should be deleted, got %s", tt.subRepo.deletedID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.subRepo.deletedID != tt.wantDeleted {
				t.Errorf("deleted %q, want %q", tt.subRepo.deletedID, tt.wantDeleted)
			}
		})
	}
}

func TestSubscriptionService_Unsubscribe_AllowsPastMeetups(t *testing.T) {
	// Cancellation has no temporal guard; the subscription's meetup being over
	// changes nothing.
	subRepo := &mockSubscriptionRepository{
		subs: map[string]*domain.Subscription{
			"s1": {ID: "s1", UserID: "u1", MeetupID: "m-past"},
		},
	}
	svc := NewSubscriptionService(
		&mockMeetupRepository{
			meetups: map[string]*domain.Meetup{
				"m-past": {ID: "m-past", Date: time.Now().Add(-time.Hour), OrganizerID: "org1"},
			},
		},
		subRepo,
		&mockNotificationRepository{},
		&mockUserRepository{},
		&mockTaskQueue{},
		testLogger(),
	)
	if err := svc.Unsubscribe(context.Background(), "s1", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subRepo.deletedID != "s1" {
		t.Errorf("deleted %q, want s1", subRepo.deletedID)
	}
}

func TestSubscriptionService_ListForUser(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	upcoming := []*domain.SubscriptionWithMeetup{
		{
			Subscription: &domain.Subscription{ID: "s1", UserID: "u1", MeetupID: "m1"},
			Meetup:       &domain.Meetup{ID: "m1", Date: future},
		},
	}

	t.Run("returns upcoming subscriptions", func(t *testing.T) {
		svc := NewSubscriptionService(
			&mockMeetupRepository{},
			&mockSubscriptionRepository{upcoming: upcoming},
			&mockNotificationRepository{},
			&mockUserRepository{},
			&mockTaskQueue{},
			testLogger(),
		)
		got, err := svc.ListForUser(context.Background(), "u1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Subscription.ID != "s1" {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("empty result is a non-nil slice", func(t *testing.T) {
		svc := NewSubscriptionService(
			&mockMeetupRepository{},
			&mockSubscriptionRepository{},
			&mockNotificationRepository{},
			&mockUserRepository{},
			&mockTaskQueue{},
			testLogger(),
		)
		got, err := svc.ListForUser(context.Background(), "u1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil {
			t.Fatal("expected non-nil slice")
		}
		if len(got) != 0 {
			t.Errorf("expected empty slice, got %d", len(got))
		}
	})

	t.Run("repo error", func(t *testing.T) {
		svc := NewSubscriptionService(
			&mockMeetupRepository{},
			&mockSubscriptionRepository{err: errors.New("db error")},
			&mockNotificationRepository{},
			&mockUserRepository{},
			&mockTaskQueue{},
			testLogger(),
		)
		if _, err := svc.ListForUser(context.Background(), "u1"); err == nil {
			t.Fatal("expected error")
		}
	})
}
