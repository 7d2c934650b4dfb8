package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS otp_records (
	email      TEXT PRIMARY KEY,
	code       TEXT        NOT NULL,
	first_name TEXT        NOT NULL,
	last_name  TEXT        NOT NULL DEFAULT '',
	attempts   INTEGER     NOT NULL DEFAULT 0,
	issued_at  TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	version    BIGINT      NOT NULL
);
CREATE INDEX IF NOT EXISTS otp_records_expires_at_idx ON otp_records (expires_at);
`

const pgColumns = `email, code, first_name, last_name, attempts, issued_at, expires_at, version`

// Postgres stores records in the otp_records table. Rows past expiry plus
// grace are hidden from reads and removed by Sweep.
type Postgres struct {
	conn  *pgxpool.Pool
	clock clock.Clocker
	grace time.Duration
	span  spanner
}

func NewPostgres(conn *pgxpool.Pool, c clock.Clocker, grace time.Duration, ins instrument.Instrumentation) *Postgres {
	return &Postgres{
		conn:  conn,
		clock: c,
		grace: grace,
		span:  spanner{ins: ins, name: "verification.outbound.store.postgres"},
	}
}

// Migrate creates the table and its index when missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.conn.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("postgres migrate otp_records: %w", err)
	}
	return nil
}

func (s *Postgres) cutoff() time.Time {
	return s.clock.Now().Add(-s.grace)
}

func (s *Postgres) Get(ctx context.Context, email string) (_ *entity.OTPRecord, err error) {
	ctx, span := s.span.start(ctx, "Get")
	defer func() { s.span.end(span, err) }()

	var rec entity.OTPRecord
	err = s.conn.QueryRow(ctx,
		`SELECT `+pgColumns+` FROM otp_records WHERE email = $1 AND expires_at > $2`,
		email, s.cutoff(),
	).Scan(&rec.Email, &rec.Code, &rec.FirstName, &rec.LastName, &rec.Attempts, &rec.IssuedAt, &rec.ExpiresAt, &rec.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (s *Postgres) Set(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := s.span.start(ctx, "Set")
	defer func() { s.span.end(span, err) }()

	_, err = s.conn.Exec(ctx, `
INSERT INTO otp_records (`+pgColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (email) DO UPDATE SET
	code = EXCLUDED.code,
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	attempts = EXCLUDED.attempts,
	issued_at = EXCLUDED.issued_at,
	expires_at = EXCLUDED.expires_at,
	version = EXCLUDED.version`,
		rec.Email, rec.Code, rec.FirstName, rec.LastName, rec.Attempts, rec.IssuedAt, rec.ExpiresAt, rec.Version,
	)
	return err
}

func (s *Postgres) Delete(ctx context.Context, email string) (err error) {
	ctx, span := s.span.start(ctx, "Delete")
	defer func() { s.span.end(span, err) }()

	_, err = s.conn.Exec(ctx, `DELETE FROM otp_records WHERE email = $1`, email)
	return err
}

func (s *Postgres) CompareAndSwap(ctx context.Context, email string, expectedVersion int64, next *entity.OTPRecord) (err error) {
	ctx, span := s.span.start(ctx, "CompareAndSwap")
	defer func() { s.span.end(span, err) }()

	var n int64
	if next == nil {
		tag, err := s.conn.Exec(ctx,
			`DELETE FROM otp_records WHERE email = $1 AND version = $2 AND expires_at > $3`,
			email, expectedVersion, s.cutoff())
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
	} else {
		tag, err := s.conn.Exec(ctx, `
UPDATE otp_records SET
	code = $3, first_name = $4, last_name = $5, attempts = $6,
	issued_at = $7, expires_at = $8, version = $9
WHERE email = $1 AND version = $2 AND expires_at > $10`,
			email, expectedVersion,
			next.Code, next.FirstName, next.LastName, next.Attempts,
			next.IssuedAt, next.ExpiresAt, next.Version, s.cutoff())
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
	}

	if n == 0 {
		return goerror.ErrConflict
	}
	return nil
}

// Sweep deletes rows past expiry plus grace.
func (s *Postgres) Sweep(ctx context.Context) (_ int64, err error) {
	ctx, span := s.span.start(ctx, "Sweep")
	defer func() { s.span.end(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM otp_records WHERE expires_at <= $1`, s.cutoff())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close is a no-op; the pool is owned by the caller.
func (s *Postgres) Close() error { return nil }
