package mail

import (
	"errors"

	"github.com/google/uuid"
	gomail "gopkg.in/gomail.v2"
)

// ErrNotConfigured is returned when the SMTP relay settings are missing.
// It is a configuration error, not a delivery error.
var ErrNotConfigured = errors.New("mail transport is not configured")

// SMTPSender delivers through a plain SMTP relay over SSL.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s *SMTPSender) Send(m Message) (string, error) {
	if s.Host == "" || s.From == "" {
		return "", ErrNotConfigured
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	d.SSL = true
	if err := d.DialAndSend(msg); err != nil {
		return "", err
	}
	// gomail does not surface a provider id; synthesize one for audit logs.
	return uuid.NewString(), nil
}
