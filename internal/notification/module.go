package notification

import (
	"context"

	"github.com/shandysiswandi/skillport/internal/notification/inbound"
	"github.com/shandysiswandi/skillport/internal/notification/outbound/email"
	"github.com/shandysiswandi/skillport/internal/notification/usecase"
	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/config"
	"github.com/shandysiswandi/skillport/internal/pkg/goroutine"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/mail"
	"github.com/shandysiswandi/skillport/internal/pkg/messaging"
	"github.com/shandysiswandi/skillport/internal/pkg/uid"
	"github.com/shandysiswandi/skillport/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context
	Messaging  messaging.Messaging
	Config     config.Config
	Instrument instrument.Instrumentation
	UUID       uid.StringID
	Clock      clock.Clocker
	Goroutine  *goroutine.Manager
	Validator  validator.Validator
	Mail       mail.Mail
	Templates  *mail.Templates
}

func New(dep Dependency) error {
	repoMail := email.New(dep.Mail, dep.Templates, dep.UUID, dep.Instrument)

	uc := usecase.NewNotification(usecase.Dependency{
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		RepoMail:   repoMail,
		Instrument: dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
