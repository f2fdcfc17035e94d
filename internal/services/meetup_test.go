package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"meetapp/internal/domain"
)

func TestMeetupService_CreateMeetup(t *testing.T) {
	tests := []struct {
		name        string
		organizerID string
		date        time.Time
		wantErr     error
		wantAnyErr  bool
	}{
		{
			name:        "future date accepted",
			organizerID: "org1",
			date:        time.Now().Add(48 * time.Hour),
		},
		{
			name:        "past date rejected",
			organizerID: "org1",
			date:        time.Now().Add(-time.Hour),
			wantErr:     domain.ErrInvalidDate,
		},
		{
			name:        "current hour rejected",
			organizerID: "org1",
			date:        time.Now(),
			wantErr:     domain.ErrInvalidDate,
		},
		{
			name:        "date within the current hour rejected even if in the future",
			organizerID: "org1",
			date:        time.Now().Truncate(time.Hour).Add(59 * time.Minute),
			wantErr:     domain.ErrInvalidDate,
		},
		{
			name:       "missing organizer rejected",
			date:       time.Now().Add(48 * time.Hour),
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMeetupService(&mockMeetupRepository{}, &mockUserRepository{})
			got, err := svc.CreateMeetup(context.Background(), tt.organizerID, "Go Night", "Talks", "Downtown", tt.date)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if tt.wantAnyErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID == "" {
				t.Error("expected repository-assigned ID")
			}
			if got.OrganizerID != tt.organizerID {
				t.Errorf("organizer = %s, want %s", got.OrganizerID, tt.organizerID)
			}
		})
	}
}

func TestMeetupService_GetMeetupByID(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	meetup := &domain.Meetup{ID: "m1", Title: "Go Night", Date: future, OrganizerID: "org1"}
	organizer := &domain.User{ID: "org1", Name: "Olivia"}

	t.Run("returns meetup with organizer", func(t *testing.T) {
		svc := NewMeetupService(
			&mockMeetupRepository{meetups: map[string]*domain.Meetup{"m1": meetup}},
			&mockUserRepository{users: map[string]*domain.User{"org1": organizer}},
		)
		got, err := svc.GetMeetupByID(context.Background(), "m1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Meetup.ID != "m1" {
			t.Errorf("meetup ID = %s, want m1", got.Meetup.ID)
		}
		if got.Organizer == nil || got.Organizer.ID != "org1" {
			t.Errorf("organizer = %+v, want org1", got.Organizer)
		}
	})

	t.Run("deleted organizer yields nil organizer", func(t *testing.T) {
		svc := NewMeetupService(
			&mockMeetupRepository{meetups: map[string]*domain.Meetup{"m1": meetup}},
			&mockUserRepository{users: map[string]*domain.User{}},
		)
		got, err := svc.GetMeetupByID(context.Background(), "m1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Organizer != nil {
			t.Errorf("expected nil organizer, got %+v", got.Organizer)
		}
	})

	t.Run("unknown meetup", func(t *testing.T) {
		svc := NewMeetupService(
			&mockMeetupRepository{meetups: map[string]*domain.Meetup{}},
			&mockUserRepository{},
		)
		if _, err := svc.GetMeetupByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestMeetupService_ListUpcomingMeetups(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	organizer := &domain.User{ID: "org1", Name: "Olivia"}
	meetups := []*domain.Meetup{
		{ID: "m1", Date: future, OrganizerID: "org1"},
		{ID: "m2", Date: future.Add(time.Hour), OrganizerID: "org1"},
	}

	svc := NewMeetupService(
		&mockMeetupRepository{upcoming: meetups, total: 7},
		&mockUserRepository{users: map[string]*domain.User{"org1": organizer}},
	)
	got, total, err := svc.ListUpcomingMeetups(context.Background(), nil, domain.PaginationParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 meetups, got %d", len(got))
	}
	for _, mw := range got {
		if mw.Organizer == nil || mw.Organizer.ID != "org1" {
			t.Errorf("meetup %s missing organizer", mw.Meetup.ID)
		}
	}
}

func TestMeetupService_UpdateMeetup(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	newTitle := "Renamed"
	pastDate := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		meetups  map[string]*domain.Meetup
		meetupID string
		actorID  string
		fields   domain.MeetupUpdate
		wantErr  error
	}{
		{
			name: "organizer updates upcoming meetup",
			meetups: map[string]*domain.Meetup{
				"m1": {ID: "m1", Date: future, OrganizerID: "org1"},
			},
			meetupID: "m1",
			actorID:  "org1",
			fields:   domain.MeetupUpdate{Title: &newTitle},
		},
		{
			name:     "unknown meetup",
			meetups:  map[string]*domain.Meetup{},
			meetupID: "missing",
			actorID:  "org1",
			wantErr:  domain.ErrNotFound,
		},
		{
			name: "non-organizer rejected",
			meetups: map[string]*domain.Meetup{
				"m1": {ID: "m1", Date: future, OrganizerID: "org1"},
			},
			meetupID: "m1",
			actorID:  "u2",
			wantErr:  domain.ErrForbidden,
		},
		{
			name: "past meetup immutable",
			meetups: map[string]*domain.Meetup{
				"m1": {ID: "m1", Date: time.Now().Add(-time.Hour), OrganizerID: "org1"},
			},
			meetupID: "m1",
			actorID:  "org1",
			fields:   domain.MeetupUpdate{Title: &newTitle},
			wantErr:  domain.ErrPastMeetup,
		},
		{
			name: "new date must be in the future",
			meetups: map[string]*domain.Meetup{
				"m1": {ID: "m1", Date: future, OrganizerID: "org1"},
			},
			meetupID: "m1",
			actorID:  "org1",
			fields:   domain.MeetupUpdate{Date: &pastDate},
			wantErr:  domain.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMeetupService(&mockMeetupRepository{meetups: tt.meetups}, &mockUserRepository{})
			got, err := svc.UpdateMeetup(context.Background(), tt.meetupID, tt.actorID, tt.fields)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil {
				t.Fatal("expected updated meetup")
			}
		})
	}
}

func TestMeetupService_DeleteMeetup(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name     string
		meetups  map[string]*domain.Meetup
		meetupID string
		actorID  string
		wantErr  error
	}{
		{
			name: "organizer cancels upcoming meetup",
			meetups: map[string]*domain.Meetup{
				"m1": {ID: "m1", Date: future, OrganizerID: "org1"},
			},
			meetupID: "m1",
			actorID:  "org1",
		},
		{
			name:     "unknown meetup",
			meetups:  map[string]*domain.Meetup{},
			meetupID: "missing",
			actorID:  "org1",
			wantErr:  domain.ErrNotFound,
		},
		{
			name: "non-organizer rejected",
			meetups: map[string]*domain.Meetup{
				"m1": {ID: "m1", Date: future, OrganizerID: "org1"},
			},
			meetupID: "m1",
			actorID:  "u2",
			wantErr:  domain.ErrForbidden,
		},
		{
			name: "past meetup cannot be cancelled",
			meetups: map[string]*domain.Meetup{
				"m1": {ID: "m1", Date: time.Now().Add(-time.Hour), OrganizerID: "org1"},
			},
			meetupID: "m1",
			actorID:  "org1",
			wantErr:  domain.ErrPastMeetup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockMeetupRepository{meetups: tt.meetups}
			svc := NewMeetupService(repo, &mockUserRepository{})
			err := svc.DeleteMeetup(context.Background(), tt.meetupID, tt.actorID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if repo.deletedID != "" {
					t.Errorf("nothing should be deleted, got %s", repo.deletedID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if repo.deletedID != tt.meetupID {
				t.Errorf("deleted %q, want %q", repo.deletedID, tt.meetupID)
			}
		})
	}
}

func TestMeetupService_ListMeetupsByOrganizer(t *testing.T) {
	svc := NewMeetupService(&mockMeetupRepository{meetups: map[string]*domain.Meetup{}}, &mockUserRepository{})
	got, err := svc.ListMeetupsByOrganizer(context.Background(), "org1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil slice")
	}
}
