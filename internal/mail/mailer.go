package mail

import (
	"context"
	"fmt"

	"community-platform-backend/internal/config"
)

// Message is a rendered mail ready for delivery
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender is the From identity used by every driver
type Sender struct {
	Address string
	Name    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the driver selected in cfg
func New(ctx context.Context, cfg config.MailConfig) (Mailer, error) {
	from := Sender{Address: cfg.From, Name: cfg.FromName}
	switch cfg.Driver {
	case "smtp":
		return NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, from), nil
	case "sendgrid":
		return NewSendGridMailer(cfg.SendGridAPIKey, from), nil
	case "ses":
		return NewSESMailer(ctx, cfg.SES.Region, cfg.SES.AccessKey, cfg.SES.SecretKey, from)
	case "log", "":
		return NewLogMailer(from), nil
	default:
		return nil, fmt.Errorf("unsupported mail driver: %s", cfg.Driver)
	}
}
