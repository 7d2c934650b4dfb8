package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
)

type HealthOutput struct {
	Timestamp time.Time
}

func (s *Usecase) Health(ctx context.Context) (*HealthOutput, error) {
	now := s.clock.Now()
	if err := s.repoStore.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "otp store ping failed", "error", err)
		return nil, goerror.NewBusinessCause(err, "Service unavailable", goerror.CodeUnavailable).
			WithMeta("timestamp", now.UTC().Format(time.RFC3339))
	}

	return &HealthOutput{Timestamp: now}, nil
}
