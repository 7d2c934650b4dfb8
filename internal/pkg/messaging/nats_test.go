package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestNATSDelivery(t *testing.T) {
	tests := []struct {
		name       string
		handlerErr error
	}{
		{name: "ack on success"},
		{name: "nack on handler error", handlerErr: errors.New("smtp down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := nats.NewMsg("owner_verified")
			m.Data = []byte(`{"email":"ana@example.com"}`)
			m.Header.Set("cID", "cid-1")

			var gotBody string
			var gotCID string
			handler := func(_ context.Context, msg Message) error {
				gotBody = string(msg.Body())
				gotCID = msg.Headers()["cID"]
				return tt.handlerErr
			}

			// Act
			err := dispatch(context.Background(), "nats", handler, natsDelivery(m))

			// Assert
			if err != nil {
				t.Fatalf("dispatch() error = %v, want nil for a core subject message", err)
			}
			if gotBody != `{"email":"ana@example.com"}` {
				t.Fatalf("body = %q", gotBody)
			}
			if gotCID != "cid-1" {
				t.Fatalf("cID header = %q, want cid-1", gotCID)
			}
		})
	}
}

func TestNATS_ConsumeValidation(t *testing.T) {
	n := &NATS{}
	h := func(context.Context, Message) error { return nil }

	if err := n.Consume(context.Background(), "", h); !errors.Is(err, ErrTopicRequired) {
		t.Fatalf("Consume(empty topic) error = %v, want ErrTopicRequired", err)
	}
	if err := n.Consume(context.Background(), "owner_verified", nil); !errors.Is(err, ErrHandlerRequired) {
		t.Fatalf("Consume(nil handler) error = %v, want ErrHandlerRequired", err)
	}
}

func TestNewNATS_RequiresURL(t *testing.T) {
	if _, err := NewNATS(NATSConfig{}); !errors.Is(err, ErrNATSURLRequired) {
		t.Fatalf("NewNATS() error = %v, want ErrNATSURLRequired", err)
	}
}
