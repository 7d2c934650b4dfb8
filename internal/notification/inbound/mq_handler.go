package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/skillport/internal/notification/usecase"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/messaging"
	"github.com/shandysiswandi/skillport/internal/pkg/uid"
	"github.com/shandysiswandi/skillport/internal/shared/event"
)

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers map[string]string) context.Context {
	if cID := headers[event.HeaderCorrelationID]; cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OwnerVerifiedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OwnerVerifiedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: owner verified notification", "msg_body", string(body))

	var payload event.OwnerVerifiedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of owner verified notification", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeOwnerVerified(ctx, usecase.ConsumeOwnerVerifiedInput{
		Email:      payload.Email,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		VerifiedAt: payload.VerifiedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume owner verified", "msg_body", string(body), "error", err)
		return err
	}

	return nil
}
