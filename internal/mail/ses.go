package mail

import (
	"context"
	"fmt"
	"net/mail"

	"community-platform-backend/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type SESMailer struct {
	client *sesv2.Client
	from   Sender
}

// NewSESMailer uses static credentials when both keys are set and the
// default AWS chain otherwise.
func NewSESMailer(ctx context.Context, region, accessKey, secretKey string, from Sender) (*SESMailer, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		cred := credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(cred))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &SESMailer{client: sesv2.NewFromConfig(cfg), from: from}, nil
}

func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	logger.ExternalServiceCall("SES", "SendEmail", "to", msg.To, "subject", msg.Subject)
	output, err := m.client.SendEmail(ctx, m.build(msg))
	if err == nil && output == nil {
		err = fmt.Errorf("output is nil")
	}
	logger.ExternalServiceResult("SES", "SendEmail", err)
	if err != nil {
		return fmt.Errorf("failed to send email via ses: %w", err)
	}
	return nil
}

func (m *SESMailer) build(msg Message) *sesv2.SendEmailInput {
	body := &types.Body{
		Text: &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")},
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	from := (&mail.Address{Name: m.from.Name, Address: m.from.Address}).String()
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}
	return input
}
