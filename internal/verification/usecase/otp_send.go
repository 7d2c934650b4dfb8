package usecase

import (
	"context"
	"log/slog"
	"math"

	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/pkg/mail"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

// checkCooldown lets the request through when the limiter itself fails.
func (s *Usecase) checkCooldown(ctx context.Context, op, email string) error {
	window := s.cooldownWindow()
	if window <= 0 {
		return nil
	}

	ok, retryAfter, err := s.cooldown.Acquire(ctx, email, window)
	if err != nil {
		slog.WarnContext(ctx, "failed to check otp cooldown", "email", email, "error", err)
		return nil
	}
	if ok {
		return nil
	}

	s.record(ctx, op, entity.OutcomeCooldown)
	return goerror.NewBusinessCause(entity.ErrOTPCooldown, "Please wait before requesting another OTP.", goerror.CodeTooManyRequest).
		WithMeta("retryAfter", int(math.Ceil(retryAfter.Seconds())))
}

// sendOTP mails the code. The stored record is kept when delivery fails.
func (s *Usecase) sendOTP(ctx context.Context, op string, rec entity.OTPRecord) error {
	msgID, err := s.repoEmail.Send(ctx, rec.Email, mail.KindOTP, map[string]any{
		"first_name":         rec.FirstName,
		"last_name":          rec.LastName,
		"code":               rec.Code,
		"expires_in_minutes": int(rec.ExpiresAt.Sub(rec.IssuedAt).Minutes()),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "email", rec.Email, "error", err)
		s.record(ctx, op, entity.OutcomeDeliveryFailed)
		return goerror.NewBusinessCause(entity.ErrEmailDeliveryFailed, "Failed to send OTP email", goerror.CodeUpstream)
	}

	slog.InfoContext(ctx, "otp email sent", "email", rec.Email, "message_id", msgID)
	return nil
}
