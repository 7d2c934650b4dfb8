package email

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/mail"
	"github.com/shandysiswandi/skillport/internal/pkg/uid"
)

type Mail struct {
	client    mail.Mail
	templates *mail.Templates
	uuid      uid.StringID
	ins       instrument.Instrumentation
}

func New(client mail.Mail, templates *mail.Templates, uuid uid.StringID, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, templates: templates, uuid: uuid, ins: ins}
}

func (m *Mail) Send(ctx context.Context, to string, kind mail.Kind, vars map[string]any) (string, error) {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "Send")
	defer span.End()

	msg, err := m.templates.Render(kind, to, vars)
	if err == nil {
		msg.ID = fmt.Sprintf("<%s@skillport>", m.uuid.Generate())
		err = m.client.Send(ctx, msg)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return msg.ID, nil
}
