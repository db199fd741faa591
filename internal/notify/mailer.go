// Package notify implements the best-effort mail notifier that tells the
// submitting user their evaluation finished.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/podiumlab/podium/internal/config"
	"github.com/podiumlab/podium/internal/ports"
)

// Mailer sends plain-text mail over authenticated SMTP.
type Mailer struct {
	host       string
	port       int
	sender     string
	senderName string
	password   string
	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ ports.Notifier = (*Mailer)(nil)

// NewMailer builds a mailer from configuration.
func NewMailer(cfg config.Notify, password string) *Mailer {
	return &Mailer{
		host:       cfg.Host,
		port:       cfg.Port,
		sender:     cfg.Sender,
		senderName: cfg.SenderName,
		password:   password,
		send:       smtp.SendMail,
	}
}

// Notify sends one message. Callers treat failures as log-only; nothing
// here retries.
func (m *Mailer) Notify(ctx context.Context, recipient, subject, body string) error {
	if m.host == "" || m.sender == "" {
		return fmt.Errorf("mail notifier misconfigured")
	}
	if recipient == "" {
		return fmt.Errorf("empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.sender, m.password, m.host)
	msg := m.buildMessage(recipient, subject, body)

	if err := m.send(addr, auth, m.sender, []string{recipient}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (m *Mailer) buildMessage(recipient, subject, body string) []byte {
	from := m.sender
	if m.senderName != "" {
		from = fmt.Sprintf("%s <%s>", m.senderName, m.sender)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
