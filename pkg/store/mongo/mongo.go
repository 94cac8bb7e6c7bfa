// Package mongo provides a MongoDB-backed store.
//
// Each record is one document keyed by its id. A TTL index on expiresAt
// lets the server remove expired documents; Get also ignores documents
// the TTL monitor has not swept yet.
package mongo

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/store"
)

// Defaults for Config.
const (
	DefaultDatabase   = "kitchenplan"
	DefaultCollection = "kitchens"
)

// Config configures the MongoDB connection.
type Config struct {
	URI        string
	Database   string
	Collection string
	TTL        time.Duration
}

// Store persists records in a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	ttl    time.Duration
}

// New connects, pings and ensures the TTL and listing indexes exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, store.Unavailable("mongo", err, "connect")
	}
	err = store.RetryWithBackoff(ctx, func() error {
		return store.Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, store.Unavailable("mongo", err, "ping")
	}

	s := &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		ttl:    cfg.TTL,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
	})
	if err != nil {
		return store.Unavailable("mongo", err, "create indexes")
	}
	return nil
}

func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	if err := store.CheckRecord(rec); err != nil {
		return err
	}
	// BSON dates carry millisecond precision.
	store.Stamp(rec, time.Now().Truncate(time.Millisecond), s.ttl)

	err := store.RetryWithBackoff(ctx, func() error {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return store.Retryable(err)
		}
		return err
	})
	if err != nil {
		return store.Unavailable("mongo", err, "save "+rec.ID)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	if err := errors.ValidateConfigID(id); err != nil {
		return nil, err
	}
	var rec store.Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, store.Unavailable("mongo", err, "get "+id)
	}
	if rec.Expired(time.Now()) {
		return nil, store.NotFound(id)
	}
	return &rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateConfigID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return store.Unavailable("mongo", err, "delete "+id)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*store.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, liveFilter(time.Now()), opts)
	if err != nil {
		return nil, store.Unavailable("mongo", err, "list")
	}
	var out []*store.Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, store.Unavailable("mongo", err, "list")
	}
	return out, nil
}

// Cleanup deletes expired documents without waiting for the TTL monitor.
func (s *Store) Cleanup(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": time.Now()}})
	if err != nil {
		return store.Unavailable("mongo", err, "cleanup")
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// liveFilter matches documents without an expiry or expiring after now.
func liveFilter(now time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"expiresAt": bson.M{"$exists": false}},
		bson.M{"expiresAt": bson.M{"$gt": now}},
	}}
}

var _ store.Store = (*Store)(nil)
