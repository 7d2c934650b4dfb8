package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/messaging"
	"github.com/shandysiswandi/skillport/internal/shared/event"
	"github.com/shandysiswandi/skillport/internal/verification/usecase"
)

func TestMessaging_PublishOwnerVerified(t *testing.T) {
	// Arrange
	client := messaging.NewMemory()
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan messaging.Message, 1)
	go func() {
		_ = client.Consume(ctx, event.OwnerVerifiedDestination, func(_ context.Context, msg messaging.Message) error {
			got <- msg
			return nil
		})
	}()

	verifiedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	pubCtx := instrument.SetCorrelationID(ctx, "cid-1")

	// Act
	err := NewMessaging(client, instrument.NewNoop()).PublishOwnerVerified(pubCtx, usecase.OwnerVerifiedEvent{
		Email:      "ana@example.com",
		FirstName:  "Ana",
		LastName:   "Lima",
		VerifiedAt: verifiedAt,
	})

	// Assert
	if err != nil {
		t.Fatalf("PublishOwnerVerified() error = %v", err)
	}

	select {
	case msg := <-got:
		var body event.OwnerVerifiedMessage
		if err := json.Unmarshal(msg.Body(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body.Email != "ana@example.com" || body.FirstName != "Ana" || !body.VerifiedAt.Equal(verifiedAt) {
			t.Fatalf("body = %+v", body)
		}
		if cid := msg.Headers()[event.HeaderCorrelationID]; cid != "cid-1" {
			t.Fatalf("correlation id = %q", cid)
		}
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}
}
