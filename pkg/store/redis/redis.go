// Package redis provides a Redis-backed store for multi-instance deployments.
//
// Records are JSON values under "<prefix><id>" written with SET and an
// expiry, so Redis itself drops expired configurations.
package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/store"
)

// DefaultPrefix namespaces record keys.
const DefaultPrefix = "kitchenplan:kitchen:"

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Store persists records in Redis.
type Store struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err := store.RetryWithBackoff(ctx, func() error {
		return store.Retryable(client.Ping(ctx).Err())
	})
	if err != nil {
		_ = client.Close()
		return nil, store.Unavailable("redis", err, "connect "+cfg.Addr)
	}
	return NewWithClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	if err := store.CheckRecord(rec); err != nil {
		return err
	}
	now := time.Now()
	store.Stamp(rec, now, s.ttl)

	var expiry time.Duration
	if !rec.ExpiresAt.IsZero() {
		if expiry = rec.ExpiresAt.Sub(now); expiry <= 0 {
			return s.Delete(ctx, rec.ID)
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal record")
	}
	err = store.RetryWithBackoff(ctx, func() error {
		return store.Retryable(s.client.Set(ctx, s.key(rec.ID), data, expiry).Err())
	})
	if err != nil {
		return store.Unavailable("redis", err, "set "+rec.ID)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	if err := errors.ValidateConfigID(id); err != nil {
		return nil, err
	}
	rec, err := s.get(ctx, s.key(id))
	if stderrors.Is(err, goredis.Nil) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) get(ctx context.Context, key string) (*store.Record, error) {
	var data []byte
	err := store.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, key).Bytes()
		if stderrors.Is(err, goredis.Nil) {
			return err
		}
		return store.Retryable(err)
	})
	if stderrors.Is(err, goredis.Nil) {
		return nil, err
	}
	if err != nil {
		return nil, store.Unavailable("redis", err, "get "+key)
	}
	var rec store.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse record %s", key)
	}
	return &rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateConfigID(id); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return store.Unavailable("redis", err, "del "+id)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*store.Record, error) {
	var out []*store.Record
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		rec, err := s.get(ctx, iter.Val())
		if stderrors.Is(err, goredis.Nil) {
			// Expired between SCAN and GET.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, store.Unavailable("redis", err, "scan")
	}
	store.SortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Cleanup is a no-op: Redis expires keys itself.
func (s *Store) Cleanup(ctx context.Context) error { return nil }

func (s *Store) Close() error { return s.client.Close() }

var _ store.Store = (*Store)(nil)
