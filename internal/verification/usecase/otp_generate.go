package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

type GenerateInput struct {
	Email     string `validate:"required,email"`
	FirstName string `validate:"required,personname"`
	LastName  string `validate:"omitempty,personname"`
}

type GenerateOutput struct {
	ExpiresIn int
}

func (s *Usecase) Generate(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "Generate")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInputMsg(err, "Email and first name are required")
	}

	if err := s.checkCooldown(ctx, "generate", in.Email); err != nil {
		return nil, err
	}

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	ttl := s.ttl()
	rec := entity.OTPRecord{
		Email:     in.Email,
		Code:      code,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Attempts:  0,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		Version:   s.uid.Generate(),
	}

	if err := s.repoStore.Set(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo set otp record", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.sendOTP(ctx, "generate", rec); err != nil {
		return nil, err
	}

	s.record(ctx, "generate", entity.OutcomeIssued)

	return &GenerateOutput{ExpiresIn: int(ttl.Seconds())}, nil
}
