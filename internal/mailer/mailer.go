// Package mailer delivers notification email over SMTP. Delivery is a best
// effort collaborator: callers queue messages through the worker and treat
// failures as soft.
package mailer

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/flc-events/backend/config"
)

// Message is one outbound email. AttachmentCSV, when non-empty, is attached
// as AttachmentName with a text/csv content type.
type Message struct {
	To             string
	Subject        string
	BodyHTML       string
	AttachmentName string
	AttachmentCSV  string
}

// Sender delivers messages. Implemented by SMTPSender and NopSender.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender sends mail through an SMTP relay using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates an SMTP sender from config.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   from,
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.BodyHTML)
	if msg.AttachmentCSV != "" {
		name := msg.AttachmentName
		if name == "" {
			name = "attachment.csv"
		}
		m.Attach(name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write([]byte(msg.AttachmentCSV))
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {"text/csv; charset=utf-8"}}),
		)
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// NopSender logs instead of sending; used when SMTP is unconfigured (dev).
type NopSender struct {
	logger *zap.Logger
}

// NewNopSender creates a logging-only sender.
func NewNopSender(logger *zap.Logger) *NopSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NopSender{logger: logger}
}

// Send implements Sender.
func (s *NopSender) Send(msg Message) error {
	s.logger.Info("email delivery disabled, dropping message",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// FromConfig returns an SMTP sender when a host is configured, else a nop
// sender.
func FromConfig(cfg config.EmailConfig, logger *zap.Logger) Sender {
	if cfg.SMTPHost == "" {
		return NewNopSender(logger)
	}
	return NewSMTPSender(cfg)
}
