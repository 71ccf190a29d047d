package mail

import (
	"context"
	"crypto/tls"
	"fmt"

	"community-platform-backend/internal/logger"

	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   Sender
}

func NewSMTPMailer(host string, port int, username, password string, from Sender) *SMTPMailer {
	d := gomail.NewDialer(host, port, username, password)
	d.TLSConfig = &tls.Config{ServerName: host}
	return &SMTPMailer{dialer: d, from: from}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	logger.ExternalServiceCall("SMTP", "Send", "to", msg.To, "subject", msg.Subject)
	err := m.dialer.DialAndSend(m.build(msg))
	logger.ExternalServiceResult("SMTP", "Send", err)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (m *SMTPMailer) build(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.from.Address, m.from.Name)
	gm.SetHeader("To", msg.To...)
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}
	return gm
}
