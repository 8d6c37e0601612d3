// internal/app/system/mailer/mailer.go
//
// Package mailer sends transactional email over SMTP. The transcript
// pipeline uses it to notify users when a recording has been processed
// or skipped.
package mailer

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Email is one outbound message. TextBody and HTMLBody are both sent
// as a multipart/alternative pair when both are present.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email. Handlers and the pipeline take this interface
// so tests can capture messages instead of hitting a relay.
type Sender interface {
	Send(email Email) error
}

// SMTPConfig holds relay settings, normally loaded from app config.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is the bare envelope address. FromName, when set, becomes the
	// display name on the From header.
	From     string
	FromName string
}

// SMTPSender delivers email through a single SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
	log *zap.Logger
}

func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: logger}
}

func (s *SMTPSender) Send(email Email) error {
	if email.To == "" {
		return fmt.Errorf("send email: missing recipient")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	fromHeader := s.cfg.From
	if s.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.cfg.FromName), s.cfg.From)
	}

	msg := buildMessage(fromHeader, email)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{email.To}, msg); err != nil {
		return fmt.Errorf("send email to %s: %w", email.To, err)
	}

	s.log.Info("email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}

const boundary = "scribehub-alt-boundary"

func buildMessage(from string, email Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	fmt.Fprintf(&b, "Message-ID: <%s@scribehub>\r\n", uuid.NewString())
	b.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case email.HTMLBody != "" && email.TextBody != "":
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(email.TextBody)
		fmt.Fprintf(&b, "\r\n--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(email.HTMLBody)
		fmt.Fprintf(&b, "\r\n--%s--\r\n", boundary)
	case email.HTMLBody != "":
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(email.HTMLBody)
	default:
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(email.TextBody)
	}
	return []byte(b.String())
}

// CaptureSender records messages instead of delivering them. Used in
// tests and when no relay is configured.
type CaptureSender struct {
	Sent []Email
}

func (c *CaptureSender) Send(email Email) error {
	c.Sent = append(c.Sent, email)
	return nil
}
