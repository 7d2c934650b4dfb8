package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

var (
	ErrUnknownDriver  = errors.New("store: unknown driver")
	ErrClientRequired = errors.New("store: client for the selected driver is required")
)

type Options struct {
	Driver     string
	Clock      clock.Clocker
	Grace      time.Duration
	Instrument instrument.Instrumentation

	Redis    redis.UniversalClient
	Postgres *pgxpool.Pool
	Mongo    *mongo.Database
}

// New builds the store for opts.Driver, preparing its schema or indexes.
func New(ctx context.Context, opts Options) (Store, error) {
	switch strings.TrimSpace(opts.Driver) {
	case "", DriverMemory:
		return NewMemory(opts.Clock, opts.Grace), nil

	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("%w: %s", ErrClientRequired, DriverRedis)
		}
		return NewRedis(opts.Redis, opts.Grace, opts.Instrument), nil

	case DriverPostgres:
		if opts.Postgres == nil {
			return nil, fmt.Errorf("%w: %s", ErrClientRequired, DriverPostgres)
		}
		s := NewPostgres(opts.Postgres, opts.Clock, opts.Grace, opts.Instrument)
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		return s, nil

	case DriverMongo:
		if opts.Mongo == nil {
			return nil, fmt.Errorf("%w: %s", ErrClientRequired, DriverMongo)
		}
		s := NewMongo(opts.Mongo, opts.Clock, opts.Grace, opts.Instrument)
		if err := s.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, opts.Driver)
	}
}
