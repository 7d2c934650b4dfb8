package inbound

import (
	"context"

	"github.com/shandysiswandi/skillport/internal/notification/usecase"
)

type uc interface {
	ConsumeOwnerVerified(ctx context.Context, in usecase.ConsumeOwnerVerifiedInput) error
}
