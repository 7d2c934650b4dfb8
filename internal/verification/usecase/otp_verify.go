package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/sethvargo/go-retry"

	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/pkg/jwt"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

type VerifyInput struct {
	Email string `validate:"required,email"`
	OTP   string `validate:"required,otpcode"`
}

type VerifyOutput struct {
	Email             string
	FirstName         string
	LastName          string
	VerificationToken string
}

func errNotFound() error {
	return goerror.NewBusinessCause(entity.ErrOTPNotFound, "No OTP found for this email. Please request a new one.", goerror.CodeNotFound)
}

func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInputMsg(err, "Email and OTP are required")
	}

	var out *VerifyOutput
	err := retry.Do(ctx, casRetry(), func(ctx context.Context) error {
		res, err := s.verifyOnce(ctx, in)
		if errors.Is(err, goerror.ErrConflict) {
			return retry.RetryableError(err)
		}
		out = res
		return err
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.ErrorContext(ctx, "otp verify lost every compare and swap", "email", in.Email)
		return nil, goerror.NewServer(err)
	}
	if err != nil {
		return nil, err
	}

	s.publishVerified(ctx, out)

	return out, nil
}

// verifyOnce reads the record and applies one decision to it. A lost
// compare-and-swap is returned as goerror.ErrConflict for the caller to retry.
func (s *Usecase) verifyOnce(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	rec, err := s.repoStore.Get(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		s.record(ctx, "verify", entity.OutcomeNotFound)
		return nil, errNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp record", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	maxAttempts := s.maxAttempts()

	if rec.IsExpired(s.clock.Now()) {
		if err := s.swap(ctx, rec, nil); err != nil {
			return nil, err
		}
		s.record(ctx, "verify", entity.OutcomeExpired)
		return nil, goerror.NewBusinessCause(entity.ErrOTPExpired, "OTP has expired. Please request a new one.", goerror.CodeGone)
	}

	if rec.IsExhausted(maxAttempts) {
		if err := s.swap(ctx, rec, nil); err != nil {
			return nil, err
		}
		s.record(ctx, "verify", entity.OutcomeAttemptsExhausted)
		return nil, goerror.NewBusinessCause(entity.ErrOTPAttemptsExhausted, "Too many failed attempts. Please request a new OTP.", goerror.CodeTooManyRequest)
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(in.OTP)) != 1 {
		next := *rec
		next.Attempts++
		next.Version = s.uid.Generate()
		if err := s.swap(ctx, rec, &next); err != nil {
			return nil, err
		}

		left := max(maxAttempts-next.Attempts, 0)
		msg := "Invalid OTP"
		if left == 0 {
			msg = "Too many failed attempts. Please request a new OTP."
		}
		s.record(ctx, "verify", entity.OutcomeInvalidCode)
		slog.WarnContext(ctx, "otp code mismatch", "email", in.Email, "attempts", next.Attempts)
		return nil, goerror.NewBusinessCause(entity.ErrOTPInvalidCode, msg, goerror.CodeUnauthorized).
			WithMeta("attemptsLeft", left)
	}

	token, err := s.jwt.Generate(jwt.Subject{Email: rec.Email, FirstName: rec.FirstName, LastName: rec.LastName})
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign verification token", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.swap(ctx, rec, nil); err != nil {
		return nil, err
	}
	s.record(ctx, "verify", entity.OutcomeVerified)

	return &VerifyOutput{
		Email:             rec.Email,
		FirstName:         rec.FirstName,
		LastName:          rec.LastName,
		VerificationToken: token,
	}, nil
}

// swap replaces cur with next (nil deletes) if cur is still the stored version.
func (s *Usecase) swap(ctx context.Context, cur *entity.OTPRecord, next *entity.OTPRecord) error {
	err := s.repoStore.CompareAndSwap(ctx, cur.Email, cur.Version, next)
	if err == nil || errors.Is(err, goerror.ErrConflict) {
		return err
	}

	slog.ErrorContext(ctx, "failed to repo swap otp record", "email", cur.Email, "error", err)
	return goerror.NewServer(err)
}

func (s *Usecase) publishVerified(ctx context.Context, out *VerifyOutput) {
	if err := s.repoMessaging.PublishOwnerVerified(ctx, OwnerVerifiedEvent{
		Email:      out.Email,
		FirstName:  out.FirstName,
		LastName:   out.LastName,
		VerifiedAt: s.clock.Now(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish owner verified", "email", out.Email, "error", err)
	}
}
