package mailer

import (
	"context"

	"bookreview-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

func NewSMTPSender(host string, port int, username, password, senderEmail, senderName string, log logger.ILogger) Sender {
	return &smtpSender{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
		logger:      log,
	}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send email", map[string]interface{}{"to": msg.To, "subject": msg.Subject, "error": err.Error()})
		return err
	}

	s.logger.Info("MAILER", "Email sent", map[string]interface{}{"to": msg.To, "subject": msg.Subject})
	return nil
}

// logSender is used when no SMTP host is configured.
type logSender struct {
	logger logger.ILogger
}

func NewLogSender(log logger.ILogger) Sender {
	return &logSender{logger: log}
}

func (s *logSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("MAILER", "SMTP disabled, email not delivered", map[string]interface{}{"to": msg.To, "subject": msg.Subject})
	return nil
}
