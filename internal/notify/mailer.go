// Package notify is the delivery adapter for outbound notifications. The
// rest of the system only sees the Mailer interface; delivery failures are
// for the caller to log, never to propagate.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/taskpulse/internal/config"
)

// Message is a single outbound notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message to one recipient.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer selects the SMTP mailer when a host is configured and a
// log-only mailer otherwise.
func NewMailer(cfg config.NotificationConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		logger.Warn("SMTP_HOST not configured; notifications will be logged only")
		return &logMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.NotificationConfig
}

func (m *smtpMailer) Send(_ context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	headers := []string{
		fmt.Sprintf("From: %s <%s>", m.cfg.FromName, m.cfg.EmailFrom),
		fmt.Sprintf("To: %s", msg.To),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
	}
	payload := strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.Body

	return smtp.SendMail(addr, auth, m.cfg.EmailFrom, []string{msg.To}, []byte(payload))
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("notification (delivery disabled)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
