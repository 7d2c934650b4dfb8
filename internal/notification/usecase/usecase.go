package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/mail"
	"github.com/shandysiswandi/skillport/internal/pkg/validator"
)

type repoMail interface {
	Send(ctx context.Context, to string, kind mail.Kind, vars map[string]any) (string, error)
}

type Usecase struct {
	clock     clock.Clocker
	validator validator.Validator
	repoMail  repoMail
	ins       instrument.Instrumentation
}

type Dependency struct {
	Clock      clock.Clocker
	Validator  validator.Validator
	RepoMail   repoMail
	Instrument instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	return &Usecase{
		clock:     dep.Clock,
		validator: dep.Validator,
		repoMail:  dep.RepoMail,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
