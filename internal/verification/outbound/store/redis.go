package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

const redisKeyPrefix = "otp:"

// casScript swaps the hash at KEYS[1] when its version field equals ARGV[1].
// ARGV[2] is "del" or "set"; for "set" the remaining args are the fields and
// the eviction time in unix milliseconds.
var casScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], 'version')
if not v or v ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1])
if ARGV[2] == 'set' then
	redis.call('HSET', KEYS[1],
		'email', ARGV[3], 'code', ARGV[4], 'first_name', ARGV[5], 'last_name', ARGV[6],
		'attempts', ARGV[7], 'issued_at', ARGV[8], 'expires_at', ARGV[9], 'version', ARGV[10])
	redis.call('PEXPIREAT', KEYS[1], ARGV[11])
end
return 1
`)

type redisRecord struct {
	Email     string `redis:"email"`
	Code      string `redis:"code"`
	FirstName string `redis:"first_name"`
	LastName  string `redis:"last_name"`
	Attempts  int    `redis:"attempts"`
	IssuedAt  int64  `redis:"issued_at"`
	ExpiresAt int64  `redis:"expires_at"`
	Version   int64  `redis:"version"`
}

func toRedisRecord(rec entity.OTPRecord) redisRecord {
	return redisRecord{
		Email:     rec.Email,
		Code:      rec.Code,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Attempts:  rec.Attempts,
		IssuedAt:  rec.IssuedAt.UnixMilli(),
		ExpiresAt: rec.ExpiresAt.UnixMilli(),
		Version:   rec.Version,
	}
}

func (r redisRecord) entity() *entity.OTPRecord {
	return &entity.OTPRecord{
		Email:     r.Email,
		Code:      r.Code,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Attempts:  r.Attempts,
		IssuedAt:  time.UnixMilli(r.IssuedAt).UTC(),
		ExpiresAt: time.UnixMilli(r.ExpiresAt).UTC(),
		Version:   r.Version,
	}
}

// Redis keeps one hash per email; PEXPIREAT evicts it grace after expiry.
type Redis struct {
	client redis.UniversalClient
	grace  time.Duration
	span   spanner
}

func NewRedis(client redis.UniversalClient, grace time.Duration, ins instrument.Instrumentation) *Redis {
	return &Redis{
		client: client,
		grace:  grace,
		span:   spanner{ins: ins, name: "verification.outbound.store.redis"},
	}
}

func (s *Redis) evictAt(rec entity.OTPRecord) time.Time {
	return rec.ExpiresAt.Add(s.grace)
}

func (s *Redis) Get(ctx context.Context, email string) (_ *entity.OTPRecord, err error) {
	ctx, span := s.span.start(ctx, "Get")
	defer func() { s.span.end(span, err) }()

	res := s.client.HGetAll(ctx, redisKeyPrefix+email)
	values, err := res.Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(values) == 0 {
		return nil, goerror.ErrNotFound
	}

	var rr redisRecord
	if err := res.Scan(&rr); err != nil {
		return nil, fmt.Errorf("redis scan otp record: %w", err)
	}
	return rr.entity(), nil
}

func (s *Redis) Set(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := s.span.start(ctx, "Set")
	defer func() { s.span.end(span, err) }()

	key := redisKeyPrefix + rec.Email
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, toRedisRecord(rec))
		p.PExpireAt(ctx, key, s.evictAt(rec))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set otp record: %w", err)
	}
	return nil
}

func (s *Redis) Delete(ctx context.Context, email string) (err error) {
	ctx, span := s.span.start(ctx, "Delete")
	defer func() { s.span.end(span, err) }()

	return s.client.Del(ctx, redisKeyPrefix+email).Err()
}

func (s *Redis) CompareAndSwap(ctx context.Context, email string, expectedVersion int64, next *entity.OTPRecord) (err error) {
	ctx, span := s.span.start(ctx, "CompareAndSwap")
	defer func() { s.span.end(span, err) }()

	args := []any{expectedVersion, "del"}
	if next != nil {
		rr := toRedisRecord(*next)
		args = []any{
			expectedVersion, "set",
			rr.Email, rr.Code, rr.FirstName, rr.LastName,
			rr.Attempts, rr.IssuedAt, rr.ExpiresAt, rr.Version,
			s.evictAt(*next).UnixMilli(),
		}
	}

	swapped, err := casScript.Run(ctx, s.client, []string{redisKeyPrefix + email}, args...).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis cas otp record: %w", err)
	}
	if swapped != 1 {
		return goerror.ErrConflict
	}
	return nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the client is owned by the caller.
func (s *Redis) Close() error { return nil }
