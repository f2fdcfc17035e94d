package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meetapp/internal/domain"
	"meetapp/internal/queue"
)

// NewSubscriptionMailHandler returns the queue handler for subscription_mail
// jobs. It renders the organizer email from the hydrated job payload and hands
// it to the email service; any error is retryable from the queue's point of
// view.
func NewSubscriptionMailHandler(emailService domain.EmailService) queue.Handler {
	return func(ctx context.Context, payload json.RawMessage) error {
		var data domain.SubscriptionMailPayload
		if err := json.Unmarshal(payload, &data); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		if data.Meetup == nil || data.Organizer == nil || data.Subscriber == nil {
			return fmt.Errorf("incomplete payload: meetup, organizer, and subscriber are required")
		}
		return emailService.SendSubscriptionNotice(ctx, &domain.SubscriptionEmailData{
			OrganizerName:   data.Organizer.Name,
			OrganizerEmail:  data.Organizer.Email,
			MeetupTitle:     data.Meetup.Title,
			SubscriberName:  data.Subscriber.Name,
			SubscriberEmail: data.Subscriber.Email,
			Date:            FormatMeetupDate(data.Meetup.Date),
		})
	}
}

// FormatMeetupDate renders a meetup date for notification emails, e.g.
// "Day 09 of September, at 19:30h".
func FormatMeetupDate(t time.Time) string {
	return fmt.Sprintf("Day %02d of %s, at %d:%02dh", t.Day(), t.Month().String(), t.Hour(), t.Minute())
}
