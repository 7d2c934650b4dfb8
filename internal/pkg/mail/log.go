package mail

import (
	"context"
	"log/slog"
)

// Log is a Mail implementation that writes messages to the structured logger
// instead of delivering them. It is meant for local runs.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log sender writing to logger, or slog.Default when nil.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To)+len(msg.Cc)+len(msg.Bcc) == 0 {
		return ErrSMTPNoRecipients
	}

	l.logger.InfoContext(ctx, "mail: message captured",
		"message_id", msg.ID,
		"to", msg.To,
		"subject", msg.Subject,
		"text_body", msg.TextBody,
	)
	return nil
}

func (l *Log) Close() error { return nil }
