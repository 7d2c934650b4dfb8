package inbound

import (
	"context"

	"github.com/shandysiswandi/skillport/internal/pkg/router"
	"github.com/shandysiswandi/skillport/internal/verification/usecase"
)

type uc interface {
	Generate(ctx context.Context, in usecase.GenerateInput) (*usecase.GenerateOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Resend(ctx context.Context, in usecase.ResendInput) (*usecase.ResendOutput, error)

	Health(ctx context.Context) (*usecase.HealthOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/otp/generate", end.Generate)
	r.POST("/api/otp/verify", end.Verify)
	r.POST("/api/otp/resend", end.Resend)

	r.GET("/health", end.Health)
}
