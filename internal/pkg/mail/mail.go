package mail

import (
	"context"
	"io"
)

// Message is a provider-agnostic email payload.
type Message struct {
	// ID becomes the Message-ID header when set.
	ID       string
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

const (
	// DriverSMTP selects the SMTP sender.
	DriverSMTP = "smtp"
	// DriverLog selects the Log sender.
	DriverLog = "log"
)
