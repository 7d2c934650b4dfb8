// Package store keeps OTP records in memory, Redis, PostgreSQL or MongoDB.
//
// Every backend reports a missing record with goerror.ErrNotFound and a
// compare-and-swap against a stale version with goerror.ErrConflict. Records
// stay readable for a grace period after ExpiresAt so callers can tell an
// expired code from a missing one.
package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

// Store is the OTP record repository.
type Store interface {
	io.Closer

	Get(ctx context.Context, email string) (*entity.OTPRecord, error)
	Set(ctx context.Context, rec entity.OTPRecord) error
	Delete(ctx context.Context, email string) error
	// CompareAndSwap replaces the record stored at email with next, or
	// deletes it when next is nil, only if its version is expectedVersion.
	CompareAndSwap(ctx context.Context, email string, expectedVersion int64, next *entity.OTPRecord) error
	Ping(ctx context.Context) error
}

// Sweeper is implemented by stores without native expiry.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, s Sweeper, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				slog.WarnContext(ctx, "failed to sweep expired otp records", "error", err)
				continue
			}
			if n > 0 {
				slog.DebugContext(ctx, "swept expired otp records", "count", n)
			}
		}
	}
}

type spanner struct {
	ins  instrument.Instrumentation
	name string
}

func (s spanner) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return s.ins.Tracer(s.name).Start(ctx, op)
}

func (s spanner) end(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
