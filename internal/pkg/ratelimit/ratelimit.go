// Package ratelimit enforces a minimum interval between actions on the same key.
package ratelimit

import (
	"context"
	"time"
)

// Cooldown admits one action per key per window.
type Cooldown interface {
	// Acquire reports whether the action may proceed. When it may not,
	// retryAfter is the time left until the window closes.
	Acquire(ctx context.Context, key string, window time.Duration) (ok bool, retryAfter time.Duration, err error)
}

// Disabled admits every action.
type Disabled struct{}

func (Disabled) Acquire(context.Context, string, time.Duration) (bool, time.Duration, error) {
	return true, 0, nil
}
