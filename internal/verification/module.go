package verification

import (
	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/config"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/jwt"
	"github.com/shandysiswandi/skillport/internal/pkg/mail"
	"github.com/shandysiswandi/skillport/internal/pkg/messaging"
	"github.com/shandysiswandi/skillport/internal/pkg/otp"
	"github.com/shandysiswandi/skillport/internal/pkg/ratelimit"
	"github.com/shandysiswandi/skillport/internal/pkg/router"
	"github.com/shandysiswandi/skillport/internal/pkg/uid"
	"github.com/shandysiswandi/skillport/internal/pkg/validator"
	"github.com/shandysiswandi/skillport/internal/verification/inbound"
	"github.com/shandysiswandi/skillport/internal/verification/outbound/email"
	"github.com/shandysiswandi/skillport/internal/verification/outbound/mq"
	"github.com/shandysiswandi/skillport/internal/verification/outbound/store"
	"github.com/shandysiswandi/skillport/internal/verification/usecase"
)

type Dependency struct {
	Store      store.Store                `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Templates  *mail.Templates            `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Code       otp.Generator              `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`

	// Cooldown is optional; nil disables it.
	Cooldown ratelimit.Cooldown
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoEmail := email.New(dep.Mail, dep.Templates, dep.UUID, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoStore:     dep.Store,
		RepoEmail:     repoEmail,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Code:          dep.Code,
		Cooldown:      dep.Cooldown,
		UID:           dep.UID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
