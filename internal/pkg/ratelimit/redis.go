package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares windows across replicas with SET NX PX.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis stores windows under prefix+key.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Acquire(ctx context.Context, key string, window time.Duration) (bool, time.Duration, error) {
	if window <= 0 {
		return true, 0, nil
	}

	k := r.prefix + key
	ok, err := r.client.SetNX(ctx, k, 1, window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: set window: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	ttl, err := r.client.PTTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: read window: %w", err)
	}
	if ttl < 0 {
		// key vanished or has no expiry; report the whole window
		ttl = window
	}
	return false, ttl, nil
}
