package config

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

// Mailer sends HTML mail through an SMTP relay.
type Mailer struct {
	cfg MailConfig
}

// NewMailer returns a mailer for cfg. Call Enabled on cfg first to skip unconfigured setups.
func NewMailer(cfg MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendMail delivers one HTML message to the given recipients.
func (m *Mailer) SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	if !m.cfg.Enabled() {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)

	// STARTTLS is mandatory; port 587 relays (Gmail, Office365) expect it.
	d.StartTLSPolicy = mail.MandatoryStartTLS

	// ServerName must match the relay hostname unless verification is skipped (dev only).
	d.TLSConfig = &tls.Config{
		ServerName:         m.cfg.Host,
		InsecureSkipVerify: m.cfg.SkipTLSVerify,
	}

	return d.DialAndSend(msg)
}
