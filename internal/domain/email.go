package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// SubscriptionEmailData holds data for the new-subscription email sent to the
// meetup organizer.
type SubscriptionEmailData struct {
	OrganizerName   string
	OrganizerEmail  string
	MeetupTitle     string
	SubscriberName  string
	SubscriberEmail string
	// Date is the meetup date already formatted for display
	// ("Day 02 of January, at 19:00h").
	Date string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendSubscriptionNotice(ctx context.Context, data *SubscriptionEmailData) error
}
