package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailService builds an SMTP-backed notifier. An empty host disables
// email entirely.
func NewEmailService(host string, port int, username, password, from string) EmailService {
	if host == "" {
		return noopEmailService{}
	}
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *emailService) SendRegistrationApproved(ctx context.Context, email, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour account request has been approved. You can now sign in to the Early Adopter portal.\n\nBest regards,\nThe AB-EAM Team", name)
	return s.send(email, "Your account request was approved", body)
}

func (s *emailService) SendRegistrationRejected(ctx context.Context, email, name, reason string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour account request has been rejected.\n\nReason: %s\n\nBest regards,\nThe AB-EAM Team", name, reason)
	return s.send(email, "Your account request was rejected", body)
}

// noopEmailService is used when SMTP is not configured.
type noopEmailService struct{}

func (noopEmailService) SendRegistrationApproved(ctx context.Context, email, name string) error {
	return nil
}

func (noopEmailService) SendRegistrationRejected(ctx context.Context, email, name, reason string) error {
	return nil
}
