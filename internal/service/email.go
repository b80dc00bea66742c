package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/ports"
)

const smtpTimeout = 10 * time.Second

// EmailService sends mail over SMTP / Envoie les emails via SMTP
type EmailService struct {
	cfg config.SMTPConfig
}

// NewEmailService creates email service with config validation / Crée le service email avec validation de la config
func NewEmailService(cfg config.SMTPConfig) (*EmailService, error) {
	if err := validateSMTPConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &EmailService{cfg: cfg}, nil
}

// validateSMTPConfig validates SMTP settings / Valide les paramètres SMTP
func validateSMTPConfig(smtp config.SMTPConfig) error {
	if smtp.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if smtp.Port <= 0 || smtp.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if smtp.From == "" {
		return fmt.Errorf("SMTP from address is required")
	}
	// Username/Password can be empty for unauthenticated relays
	return nil
}

func (e *EmailService) message(msg ports.Email) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", e.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	// multipart/alternative when both bodies are present
	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}
	return m
}

// Send delivers msg, giving up when ctx is done / Envoie msg, abandonne quand ctx se termine
func (e *EmailService) Send(ctx context.Context, msg ports.Email) error {
	d := mail.NewDialer(e.cfg.Host, e.cfg.Port, e.cfg.Username, e.cfg.Password)
	d.Timeout = smtpTimeout
	d.TLSConfig = &tls.Config{ServerName: e.cfg.Host, MinVersion: tls.VersionTLS12}

	ch := make(chan error, 1)
	go func() {
		ch <- d.DialAndSend(e.message(msg))
	}()

	select {
	case err := <-ch:
		if err != nil {
			slog.ErrorContext(ctx, "smtp send failed", "to", msg.To, "err", err)
			return fmt.Errorf("smtp send: %w", err)
		}
		slog.DebugContext(ctx, "smtp send ok", "to", msg.To)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
