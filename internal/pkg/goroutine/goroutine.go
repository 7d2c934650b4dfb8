// Package goroutine runs background jobs (broker consumers, store sweepers)
// under a bounded, panic-safe manager that shutdown can wait on.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/skillport/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrManagerClosed is returned by Go after Wait has been called.
var ErrManagerClosed = errors.New("goroutine: manager is closed")

// ErrLimitReached is returned by Go when every slot is taken.
var ErrLimitReached = errors.New("goroutine: maximum goroutine limit reached")

// Manager runs functions in goroutines with a concurrency limit and collects
// their errors.
type Manager struct {
	wg     sync.WaitGroup
	sema   chan struct{}
	closed atomic.Bool

	mu   sync.Mutex
	errs []error
}

// NewManager creates a Manager allowing up to maxGoroutine concurrent jobs.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules f under name. The job is skipped (and an error returned) when
// the manager is closed or full.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) error {
	if g.closed.Load() {
		slog.WarnContext(ctx, "goroutine manager is closed, skipping job", "job", name)
		return ErrManagerClosed
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "goroutine limit reached, skipping job", "job", name)
		return ErrLimitReached
	}

	g.wg.Go(func() {
		defer func() { <-g.sema }()
		defer g.recover(ctx, name)

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "goroutine canceled before start", "job", name, "because", err)
			return
		}

		if err := f(ctx); err != nil && !errors.Is(err, context.Canceled) {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	})

	return nil
}

func (g *Manager) recover(ctx context.Context, name string) {
	rvr := recover()
	if rvr == nil {
		return
	}

	stack := debug.Stack()
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "job", name, "because", rvr, "stack", paths)
		return
	}
	slog.ErrorContext(ctx, "panic occurred in goroutine", "job", name, "because", rvr, "stack", string(stack))
}

// Wait closes the manager, blocks until every job returns and reports their
// errors (context cancellation excluded).
func (g *Manager) Wait() error {
	g.closed.Store(true)
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
