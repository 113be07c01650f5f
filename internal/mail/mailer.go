// Package mail abstracts outbound email delivery. The application only sends
// password reset links; everything else about delivery is a deployment
// concern.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer delivers transactional email.
type Mailer interface {
	SendPasswordResetEmail(ctx context.Context, to, resetLink string) error
}

// ConsoleMailer logs emails instead of sending them. Development only.
type ConsoleMailer struct{}

func (ConsoleMailer) SendPasswordResetEmail(_ context.Context, to, resetLink string) error {
	slog.Info("password reset email (console mailer)", "to", to, "link", resetLink)
	return nil
}

// SMTPMailer sends email through an SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer creates an SMTPMailer. from is the envelope sender, e.g.
// "EventLens Support <no-reply@eventlens.app>".
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (m *SMTPMailer) SendPasswordResetEmail(_ context.Context, to, resetLink string) error {
	body := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: Reset your EventLens password",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"We received a request to reset your password.",
		"",
		"Open the link below to set a new password (valid for 15 minutes):",
		resetLink,
		"",
		"If you didn't request this, you can safely ignore it.",
		"",
		"- The EventLens Team",
	}, "\r\n")

	if err := smtp.SendMail(m.addr, m.auth, envelopeAddress(m.from), []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// envelopeAddress strips a display name from "Name <addr>" forms.
func envelopeAddress(from string) string {
	if i := strings.IndexByte(from, '<'); i >= 0 {
		if j := strings.IndexByte(from[i:], '>'); j > 0 {
			return from[i+1 : i+j]
		}
	}
	return from
}
