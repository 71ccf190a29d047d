package mail

import (
	"context"

	"community-platform-backend/internal/logger"
)

// LogMailer writes mails to the log instead of delivering them
type LogMailer struct {
	from Sender
}

func NewLogMailer(from Sender) *LogMailer {
	return &LogMailer{from: from}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	logger.InfoContext(ctx, "Mail not delivered (log driver)",
		"from", m.from.Address,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
