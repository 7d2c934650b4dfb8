package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
)

// Memory keeps windows in process. Expired keys are pruned on access.
type Memory struct {
	clock clock.Clocker

	mu      sync.Mutex
	windows map[string]time.Time
}

func NewMemory(c clock.Clocker) *Memory {
	return &Memory{clock: c, windows: map[string]time.Time{}}
}

func (m *Memory) Acquire(_ context.Context, key string, window time.Duration) (bool, time.Duration, error) {
	if window <= 0 {
		return true, 0, nil
	}

	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, until := range m.windows {
		if !now.Before(until) {
			delete(m.windows, k)
		}
	}

	if until, ok := m.windows[key]; ok {
		return false, until.Sub(now), nil
	}

	m.windows[key] = now.Add(window)
	return true, 0, nil
}
