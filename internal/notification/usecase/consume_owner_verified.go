package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/skillport/internal/pkg/mail"
)

type ConsumeOwnerVerifiedInput struct {
	Email      string `validate:"required,email"`
	FirstName  string `validate:"required"`
	LastName   string
	VerifiedAt time.Time
}

// ConsumeOwnerVerified greets a freshly verified owner. Invalid input is
// dropped; a delivery error is returned so the broker redelivers.
func (s *Usecase) ConsumeOwnerVerified(ctx context.Context, in ConsumeOwnerVerifiedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOwnerVerified")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	verifiedAt := in.VerifiedAt
	if verifiedAt.IsZero() {
		verifiedAt = s.clock.Now()
	}

	msgID, err := s.repoMail.Send(ctx, in.Email, mail.KindWelcome, map[string]any{
		"first_name":  in.FirstName,
		"last_name":   in.LastName,
		"verified_at": verifiedAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send welcome email", "email", in.Email, "error", err)
		return err
	}

	slog.InfoContext(ctx, "welcome email sent", "email", in.Email, "message_id", msgID)
	return nil
}
