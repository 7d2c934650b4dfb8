package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shandysiswandi/skillport/internal/pkg/clock"
	"github.com/shandysiswandi/skillport/internal/pkg/goerror"
	"github.com/shandysiswandi/skillport/internal/pkg/instrument"
	"github.com/shandysiswandi/skillport/internal/verification/entity"
)

const mongoCollection = "otp_records"

type mongoRecord struct {
	Email     string    `bson:"_id"`
	Code      string    `bson:"code"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	Attempts  int       `bson:"attempts"`
	IssuedAt  time.Time `bson:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	Version   int64     `bson:"version"`
	EvictAt   time.Time `bson:"evict_at"`
}

func (r mongoRecord) entity() *entity.OTPRecord {
	return &entity.OTPRecord{
		Email:     r.Email,
		Code:      r.Code,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Attempts:  r.Attempts,
		IssuedAt:  r.IssuedAt.UTC(),
		ExpiresAt: r.ExpiresAt.UTC(),
		Version:   r.Version,
	}
}

// Mongo stores one document per email. A TTL index on evict_at removes
// documents; reads also filter on it because the TTL monitor runs lazily.
type Mongo struct {
	coll  *mongo.Collection
	clock clock.Clocker
	grace time.Duration
	span  spanner
}

func NewMongo(db *mongo.Database, c clock.Clocker, grace time.Duration, ins instrument.Instrumentation) *Mongo {
	return &Mongo{
		coll:  db.Collection(mongoCollection),
		clock: c,
		grace: grace,
		span:  spanner{ins: ins, name: "verification.outbound.store.mongo"},
	}
}

// EnsureIndexes creates the TTL index on evict_at.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "evict_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("otp_records_evict_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("mongo create ttl index: %w", err)
	}
	return nil
}

func (s *Mongo) toDoc(rec entity.OTPRecord) mongoRecord {
	return mongoRecord{
		Email:     rec.Email,
		Code:      rec.Code,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Attempts:  rec.Attempts,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
		Version:   rec.Version,
		EvictAt:   rec.ExpiresAt.Add(s.grace),
	}
}

func (s *Mongo) liveFilter(email string) bson.D {
	return bson.D{
		{Key: "_id", Value: email},
		{Key: "evict_at", Value: bson.D{{Key: "$gt", Value: s.clock.Now()}}},
	}
}

func (s *Mongo) Get(ctx context.Context, email string) (_ *entity.OTPRecord, err error) {
	ctx, span := s.span.start(ctx, "Get")
	defer func() { s.span.end(span, err) }()

	var doc mongoRecord
	err = s.coll.FindOne(ctx, s.liveFilter(email)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.entity(), nil
}

func (s *Mongo) Set(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := s.span.start(ctx, "Set")
	defer func() { s.span.end(span, err) }()

	_, err = s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: rec.Email}}, s.toDoc(rec), options.Replace().SetUpsert(true))
	return err
}

func (s *Mongo) Delete(ctx context.Context, email string) (err error) {
	ctx, span := s.span.start(ctx, "Delete")
	defer func() { s.span.end(span, err) }()

	_, err = s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: email}})
	return err
}

func (s *Mongo) CompareAndSwap(ctx context.Context, email string, expectedVersion int64, next *entity.OTPRecord) (err error) {
	ctx, span := s.span.start(ctx, "CompareAndSwap")
	defer func() { s.span.end(span, err) }()

	filter := append(s.liveFilter(email), bson.E{Key: "version", Value: expectedVersion})

	if next == nil {
		res, err := s.coll.DeleteOne(ctx, filter)
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return goerror.ErrConflict
		}
		return nil
	}

	res, err := s.coll.ReplaceOne(ctx, filter, s.toDoc(*next))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return goerror.ErrConflict
	}
	return nil
}

func (s *Mongo) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

// Close is a no-op; the client is owned by the caller.
func (s *Mongo) Close() error { return nil }
