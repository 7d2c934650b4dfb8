package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/config"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/pkg/jwt"
	"github.com/shandysiswandi/skillport/internal/pkg/mail"
	"github.com/shandysiswandi/skillport/internal/pkg/otp"
	"github.com/shandysiswandi/skillport/internal/pkg/ratelimit"
	"github.com/shandysiswandi/skillport/internal/pkg/uid"
	"github.com/shandysiswandi/skillport/internal/pkg/validator"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

const (
	casMaxRetries = 5
	casBackoff    = 10 * time.Millisecond
)

type OwnerVerifiedEvent struct {
	Email      string
	FirstName  string
	LastName   string
	VerifiedAt time.Time
}

type repoMessaging interface {
	PublishOwnerVerified(ctx context.Context, msg OwnerVerifiedEvent) error
}

// repoStore reports a missing record with goerror.ErrNotFound and a lost
// compare-and-swap with goerror.ErrConflict.
type repoStore interface {
	Get(ctx context.Context, email string) (*entity.OTPRecord, error)
	Set(ctx context.Context, rec entity.OTPRecord) error
	CompareAndSwap(ctx context.Context, email string, expectedVersion int64, next *entity.OTPRecord) error
	Ping(ctx context.Context) error
}

type repoEmail interface {
	Send(ctx context.Context, to string, kind mail.Kind, vars map[string]any) (string, error)
}

type Usecase struct {
	repoStore     repoStore
	repoEmail     repoEmail
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	code          otp.Generator
	cooldown      ratelimit.Cooldown
	uid           uid.NumberID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	outcomes      metric.Int64Counter
}

type Dependency struct {
	RepoStore     repoStore
	RepoEmail     repoEmail
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Code          otp.Generator
	Cooldown      ratelimit.Cooldown
	UID           uid.NumberID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	outcomes, err := dep.Instrument.Meter("verification.usecase").Int64Counter(
		"verification.otp.outcomes",
		metric.WithDescription("OTP operations by outcome"),
	)
	if err != nil {
		slog.Error("failed to create otp outcome counter", "error", err)
	}

	cooldown := dep.Cooldown
	if cooldown == nil {
		cooldown = ratelimit.Disabled{}
	}

	return &Usecase{
		repoStore:     dep.RepoStore,
		repoEmail:     dep.RepoEmail,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		code:          dep.Code,
		cooldown:      cooldown,
		uid:           dep.UID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		outcomes:      outcomes,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}

func (s *Usecase) record(ctx context.Context, op string, o entity.Outcome) {
	if s.outcomes == nil {
		return
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", string(o)),
	))
}

func (s *Usecase) ttl() time.Duration {
	return s.cfg.GetSecond("modules.verification.otp.ttl_seconds")
}

func (s *Usecase) maxAttempts() int {
	return s.cfg.GetInt("modules.verification.otp.max_attempts")
}

func (s *Usecase) cooldownWindow() time.Duration {
	return s.cfg.GetSecond("modules.verification.otp.cooldown_seconds")
}

// casRetry bounds the read, decide and compare-and-swap loop of verify and resend.
func casRetry() retry.Backoff {
	return retry.WithMaxRetries(casMaxRetries, retry.NewConstant(casBackoff))
}
