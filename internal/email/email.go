package email

import (
	"context"
	"fmt"
	"time"

	"festarent/internal/config"
	"festarent/internal/logger"
	"festarent/internal/models"

	"github.com/mailgun/mailgun-go/v5"
)

// Service sends booking notifications through Mailgun. It stays disabled
// when Mailgun credentials are not configured; callers check IsEnabled.
type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	enabled     bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunDomain != "" && cfg.MailgunAPIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.MailgunDomain,
		senderEmail: cfg.MailgunSenderEmail,
		senderName:  cfg.MailgunSenderName,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendBookingConfirmation mails the client when their party is confirmed.
func (s *Service) SendBookingConfirmation(client *models.Client, party *models.Party) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	subject := fmt.Sprintf("Festa confirmada para %s!", party.PartyDate)
	htmlBody := s.generateConfirmationHTML(client, party)
	textBody := s.generateConfirmationText(client, party)

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		textBody,
		client.Email,
	)
	message.SetHTML(htmlBody)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send booking confirmation to %s: %w", client.Email, err)
	}

	logger.Info("Booking confirmation sent",
		"email", client.Email,
		"party_id", party.ID,
		"message_id", resp)
	return nil
}
