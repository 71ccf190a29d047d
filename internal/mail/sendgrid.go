package mail

import (
	"context"
	"fmt"

	"community-platform-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridMailer struct {
	client *sendgrid.Client
	from   Sender
}

func NewSendGridMailer(apiKey string, from Sender) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: from}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	logger.ExternalServiceCall("SendGrid", "Send", "to", msg.To, "subject", msg.Subject)
	response, err := m.client.SendWithContext(ctx, m.build(msg))
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("SendGrid", "Send", err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *SendGridMailer) build(msg Message) *sgmail.SGMailV3 {
	message := sgmail.NewV3Mail()
	message.SetFrom(sgmail.NewEmail(m.from.Name, m.from.Address))
	message.Subject = msg.Subject

	personalization := sgmail.NewPersonalization()
	for _, to := range msg.To {
		personalization.AddTos(sgmail.NewEmail("", to))
	}
	message.AddPersonalizations(personalization)

	if msg.ReplyTo != "" {
		message.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}
	message.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		message.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return message
}
