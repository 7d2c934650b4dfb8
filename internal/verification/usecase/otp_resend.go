package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sethvargo/go-retry"

	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

type ResendInput struct {
	Email string `validate:"required,email"`
}

type ResendOutput struct {
	ExpiresIn int
}

func (s *Usecase) Resend(ctx context.Context, in ResendInput) (*ResendOutput, error) {
	ctx, span := s.startSpan(ctx, "Resend")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInputMsg(err, "Email is required")
	}

	if err := s.checkCooldown(ctx, "resend", in.Email); err != nil {
		return nil, err
	}

	var rec entity.OTPRecord
	err := retry.Do(ctx, casRetry(), func(ctx context.Context) error {
		next, err := s.reissue(ctx, in.Email)
		if errors.Is(err, goerror.ErrConflict) {
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		rec = *next
		return nil
	})
	if errors.Is(err, goerror.ErrConflict) {
		slog.ErrorContext(ctx, "otp resend lost every compare and swap", "email", in.Email)
		return nil, goerror.NewServer(err)
	}
	if err != nil {
		return nil, err
	}

	if err := s.sendOTP(ctx, "resend", rec); err != nil {
		return nil, err
	}

	s.record(ctx, "resend", entity.OutcomeResent)

	return &ResendOutput{ExpiresIn: int(rec.ExpiresAt.Sub(rec.IssuedAt).Seconds())}, nil
}

// reissue replaces the code of an existing record, keeping the owner names.
func (s *Usecase) reissue(ctx context.Context, email string) (*entity.OTPRecord, error) {
	cur, err := s.repoStore.Get(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		s.record(ctx, "resend", entity.OutcomeNotFound)
		return nil, errNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp record", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	next := *cur
	next.Code = code
	next.Attempts = 0
	next.IssuedAt = now
	next.ExpiresAt = now.Add(s.ttl())
	next.Version = s.uid.Generate()

	if err := s.repoStore.CompareAndSwap(ctx, email, cur.Version, &next); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to repo swap otp record", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &next, nil
}
