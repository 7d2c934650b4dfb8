package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
)

func TestMemory_Contract(t *testing.T) {
	runContract(t, NewMemory(clock.New(), time.Minute))
}

func TestMemory_GraceAndSweep(t *testing.T) {
	// Arrange
	ctx := context.Background()
	clk := clock.NewFixed(time.Now().UTC())
	s := NewMemory(clk, time.Minute)
	rec := sampleRecord("grace@example.com", 1)
	rec.IssuedAt = clk.Now()
	rec.ExpiresAt = clk.Now().Add(10 * time.Minute)
	_ = s.Set(ctx, rec)

	// Act & Assert: expired but within grace stays readable
	clk.Advance(10*time.Minute + 30*time.Second)
	if _, err := s.Get(ctx, rec.Email); err != nil {
		t.Fatalf("Get() within grace error = %v", err)
	}
	if n, _ := s.Sweep(ctx); n != 0 {
		t.Fatalf("Sweep() within grace removed %d", n)
	}

	clk.Advance(time.Minute)
	if _, err := s.Get(ctx, rec.Email); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("Get() after grace error = %v", err)
	}
	if err := s.CompareAndSwap(ctx, rec.Email, 1, nil); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("CompareAndSwap() after grace error = %v", err)
	}
	if n, _ := s.Sweep(ctx); n != 1 {
		t.Fatalf("Sweep() removed %d, want 1", n)
	}
}

func TestRunSweeper_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- RunSweeper(ctx, NewMemory(clock.New(), 0), time.Millisecond) }()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("RunSweeper() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunSweeper() did not stop")
	}
}

func TestNew_Drivers(t *testing.T) {
	ctx := context.Background()
	base := Options{Clock: clock.New(), Grace: time.Minute, Instrument: instrument.NewNoop()}

	s, err := New(ctx, base)
	if err != nil {
		t.Fatalf("New(default) error = %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("New(default) = %T, want *Memory", s)
	}

	for _, driver := range []string{DriverRedis, DriverPostgres, DriverMongo} {
		opts := base
		opts.Driver = driver
		if _, err := New(ctx, opts); !errors.Is(err, ErrClientRequired) {
			t.Fatalf("New(%s) error = %v, want ErrClientRequired", driver, err)
		}
	}

	opts := base
	opts.Driver = "etcd"
	if _, err := New(ctx, opts); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("New(etcd) error = %v", err)
	}
}
