// Package mailer sends transactional email over SMTP. In development it
// pairs well with a capture service such as Mailtrap; production points the
// same configuration at a real relay.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer defines the interface for sending a single email.
type Mailer interface {
	Send(recipient, subject, body string) error
}

// Config contains the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// smtpMailer implements the Mailer interface over net/smtp.
type smtpMailer struct {
	cfg Config
}

// NewSMTPMailer validates the relay settings and returns a Mailer.
func NewSMTPMailer(cfg Config) (Mailer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("SMTP host and port must be provided")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("SMTP username and password must be provided")
	}
	if cfg.Sender == "" {
		return nil, fmt.Errorf("sender email address cannot be empty")
	}
	return &smtpMailer{cfg: cfg}, nil
}

// Send delivers one email. The body can be plain text or HTML; the
// Content-Type header is inferred from basic HTML tags (<html>, <p>).
func (m *smtpMailer) Send(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}

	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, m.cfg.Sender, subject, contentType, body))

	smtpAddr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(smtpAddr, auth, m.cfg.Sender, []string{recipient}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
