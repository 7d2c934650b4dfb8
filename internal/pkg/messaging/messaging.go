package messaging

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrTopicRequired is returned when publish or consume is called without a topic.
	ErrTopicRequired = errors.New("messaging: topic is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrGroupRequired is returned when the broker needs a consumer group and none was given.
	ErrGroupRequired = errors.New("messaging: consumer group is required")
	// ErrClosed is returned after Close has been called.
	ErrClosed = io.ErrClosedPipe
)

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	// Publish sends msg to topic.
	Publish(ctx context.Context, topic string, msg OutgoingMessage) error
	// Consume blocks, delivering messages from topic to handler until ctx is done.
	Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message. Unless the handler acked or nacked
// the message itself, a nil error acks it and a non-nil error nacks it.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	// Key is used for partitioning where the broker supports it.
	Key []byte
	// Body is the payload.
	Body []byte
	// Headers travel with the message (NSQ carries them in an envelope).
	Headers map[string]string
}

// Message is a received message.
type Message interface {
	Body() []byte
	Headers() map[string]string
	Ack(ctx context.Context) error
	Nack(ctx context.Context) error
}
