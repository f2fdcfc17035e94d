package services

import (
	"context"
	"fmt"
	"log"

	"meetapp/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendSubscriptionNotice sends the new-subscription email to the meetup
// organizer using the "subscription" template.
func (s *emailService) SendSubscriptionNotice(ctx context.Context, data *domain.SubscriptionEmailData) error {
	if data == nil {
		return fmt.Errorf("subscription notice data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("subscription", data)
	if err != nil {
		return fmt.Errorf("failed to render subscription template: %w", err)
	}
	to := data.OrganizerEmail
	if data.OrganizerName != "" {
		to = fmt.Sprintf("%s <%s>", data.OrganizerName, data.OrganizerEmail)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send subscription email: %w", err)
	}
	log.Printf("[EMAIL] Subscription notice sent to %s", data.OrganizerEmail)
	return nil
}
