package email

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/mail"
	"github.com/shandysiswandi/skillport/internal/pkg/uid"
)

// Email renders a template kind and hands the message to the mail provider.
type Email struct {
	client    mail.Mail
	templates *mail.Templates
	uuid      uid.StringID
	ins       instrument.Instrumentation
}

func New(client mail.Mail, templates *mail.Templates, uuid uid.StringID, ins instrument.Instrumentation) *Email {
	return &Email{client: client, templates: templates, uuid: uuid, ins: ins}
}

// Send returns the generated message id.
func (e *Email) Send(ctx context.Context, to string, kind mail.Kind, vars map[string]any) (string, error) {
	ctx, span := e.ins.Tracer("verification.outbound.email").Start(ctx, "Send")
	defer span.End()

	span.SetAttributes(attribute.String("mail.kind", string(kind)))

	msg, err := e.templates.Render(kind, to, vars)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	msg.ID = fmt.Sprintf("<%s@skillport>", e.uuid.Generate())
	if err := e.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return msg.ID, nil
}
