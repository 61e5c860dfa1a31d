package provider

import (
	"context"
	"log/slog"
)

// Message is one transactional email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends a transactional message. Variants are selected by which
// credential is configured at startup.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailConfig holds the settings used to pick and build a Mailer.
type MailConfig struct {
	From           string
	ResendAPIKey   string
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
}

// NewMailerFromConfig picks the first configured sender, preferring Resend,
// then SendGrid, then SMTP. Returns nil when no provider is configured.
func NewMailerFromConfig(cfg MailConfig, logger *slog.Logger) Mailer {
	switch {
	case cfg.ResendAPIKey != "":
		return NewResendMailer(cfg.ResendAPIKey, cfg.From, logger)
	case cfg.SendGridAPIKey != "":
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.From, logger)
	case cfg.SMTPHost != "":
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.From)
	default:
		return nil
	}
}
