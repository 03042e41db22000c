package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/medicenter/booking-api/internal/config"
)

// Sender delivers HTML mail over SMTP.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(creds config.EmailCredentials) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(creds.SMTPHost, creds.SMTPPort, creds.Address, creds.Password),
		from:   creds.Address,
	}
}

func (s *Sender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
