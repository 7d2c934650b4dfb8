package store

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

type Memory struct {
	clock clock.Clocker
	grace time.Duration

	mu      sync.RWMutex
	records map[string]entity.OTPRecord
}

func NewMemory(c clock.Clocker, grace time.Duration) *Memory {
	return &Memory{clock: c, grace: grace, records: map[string]entity.OTPRecord{}}
}

// live returns the record at email unless it is past its eviction time.
// Callers hold mu.
func (m *Memory) live(email string) (entity.OTPRecord, bool) {
	rec, ok := m.records[email]
	if !ok || m.clock.Now().After(rec.ExpiresAt.Add(m.grace)) {
		return entity.OTPRecord{}, false
	}
	return rec, true
}

func (m *Memory) Get(_ context.Context, email string) (*entity.OTPRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.live(email)
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) Set(_ context.Context, rec entity.OTPRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.Email] = rec
	return nil
}

func (m *Memory) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, email)
	return nil
}

func (m *Memory) CompareAndSwap(_ context.Context, email string, expectedVersion int64, next *entity.OTPRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.live(email)
	if !ok || cur.Version != expectedVersion {
		return goerror.ErrConflict
	}

	if next == nil {
		delete(m.records, email)
		return nil
	}
	m.records[email] = *next
	return nil
}

func (m *Memory) Sweep(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for email := range m.records {
		if _, ok := m.live(email); !ok {
			delete(m.records, email)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
