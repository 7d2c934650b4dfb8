package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/skillport/internal/pkg/stacktrace"
)

// delivery adapts a broker message to Message. ack and nack run at most once
// between them.
type delivery struct {
	body    []byte
	headers map[string]string
	ack     func(ctx context.Context) error
	nack    func(ctx context.Context) error

	responded atomic.Bool
}

func (d *delivery) Body() []byte               { return d.body }
func (d *delivery) Headers() map[string]string { return d.headers }

func (d *delivery) Ack(ctx context.Context) error {
	if d.responded.Swap(true) || d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}

func (d *delivery) Nack(ctx context.Context) error {
	if d.responded.Swap(true) || d.nack == nil {
		return nil
	}
	return d.nack(ctx)
}

// dispatch runs handler for d and settles the message from its result.
func dispatch(ctx context.Context, driver string, handler Handler, d *delivery) error {
	herr := callWithRecover(ctx, driver, func() error { return handler(ctx, d) })
	if herr != nil {
		return d.Nack(ctx)
	}
	return d.Ack(ctx)
}

func callWithRecover(ctx context.Context, driver string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	return fn()
}
