package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

func sampleRecord(email string, version int64) entity.OTPRecord {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return entity.OTPRecord{
		Email:     email,
		Code:      "123456",
		FirstName: "Ana",
		LastName:  "Lima",
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
		Version:   version,
	}
}

// runContract checks the behavior every backend shares.
func runContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		if _, err := s.Get(ctx, "missing@example.com"); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		rec := sampleRecord("set@example.com", 1)
		if err := s.Set(ctx, rec); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := s.Get(ctx, rec.Email)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Code != rec.Code || got.FirstName != "Ana" || got.LastName != "Lima" || got.Version != 1 {
			t.Fatalf("Get() = %+v", got)
		}
		if !got.ExpiresAt.Equal(rec.ExpiresAt) || !got.IssuedAt.Equal(rec.IssuedAt) {
			t.Fatalf("times = %v/%v, want %v/%v", got.IssuedAt, got.ExpiresAt, rec.IssuedAt, rec.ExpiresAt)
		}
	})

	t.Run("set replaces", func(t *testing.T) {
		first := sampleRecord("replace@example.com", 1)
		first.Attempts = 2
		second := sampleRecord("replace@example.com", 2)
		second.Code = "654321"

		_ = s.Set(ctx, first)
		if err := s.Set(ctx, second); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := s.Get(ctx, second.Email)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Code != "654321" || got.Attempts != 0 || got.Version != 2 {
			t.Fatalf("Get() = %+v", got)
		}
	})

	t.Run("compare and swap", func(t *testing.T) {
		rec := sampleRecord("cas@example.com", 10)
		_ = s.Set(ctx, rec)

		next := rec
		next.Attempts = 1
		next.Version = 11

		if err := s.CompareAndSwap(ctx, rec.Email, 9, &next); !errors.Is(err, goerror.ErrConflict) {
			t.Fatalf("stale CompareAndSwap() error = %v, want ErrConflict", err)
		}
		if err := s.CompareAndSwap(ctx, rec.Email, 10, &next); err != nil {
			t.Fatalf("CompareAndSwap() error = %v", err)
		}

		got, _ := s.Get(ctx, rec.Email)
		if got == nil || got.Attempts != 1 || got.Version != 11 {
			t.Fatalf("Get() = %+v", got)
		}

		if err := s.CompareAndSwap(ctx, rec.Email, 10, nil); !errors.Is(err, goerror.ErrConflict) {
			t.Fatalf("stale delete error = %v, want ErrConflict", err)
		}
		if err := s.CompareAndSwap(ctx, rec.Email, 11, nil); err != nil {
			t.Fatalf("delete error = %v", err)
		}
		if _, err := s.Get(ctx, rec.Email); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("Get() after delete error = %v", err)
		}
		if err := s.CompareAndSwap(ctx, rec.Email, 11, nil); !errors.Is(err, goerror.ErrConflict) {
			t.Fatalf("delete of missing record error = %v, want ErrConflict", err)
		}
	})

	t.Run("concurrent swaps have one winner", func(t *testing.T) {
		rec := sampleRecord("race@example.com", 100)
		_ = s.Set(ctx, rec)

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := range 8 {
			wg.Go(func() {
				next := rec
				next.Version = int64(200 + i)
				if err := s.CompareAndSwap(ctx, rec.Email, 100, &next); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			})
		}
		wg.Wait()

		if wins != 1 {
			t.Fatalf("wins = %d, want 1", wins)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := sampleRecord("delete@example.com", 1)
		_ = s.Set(ctx, rec)

		if err := s.Delete(ctx, rec.Email); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, rec.Email); !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("Get() after Delete() error = %v", err)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := s.Ping(ctx); err != nil {
			t.Fatalf("Ping() error = %v", err)
		}
	})
}
