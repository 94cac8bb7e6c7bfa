// Package memory provides a bounded in-process store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/store"
)

// DefaultCapacity bounds the number of records kept when none is configured.
const DefaultCapacity = 1000

// Options configure a Store.
type Options struct {
	// TTL is applied to records saved without an expiry. Zero disables expiry.
	TTL time.Duration
	// Capacity is the maximum number of records. When full, the record with
	// the oldest timestamp is evicted. Zero means DefaultCapacity.
	Capacity int
}

// Store keeps records in a map guarded by a mutex.
type Store struct {
	mu       sync.Mutex
	records  map[string]*store.Record
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// New returns an empty store.
func New(opts Options) *Store {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		records:  make(map[string]*store.Record),
		ttl:      opts.TTL,
		capacity: capacity,
		now:      time.Now,
	}
}

func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	if err := store.CheckRecord(rec); err != nil {
		return err
	}
	cp := *rec
	store.Stamp(&cp, s.now(), s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[cp.ID]; !exists {
		s.sweepLocked()
		for len(s.records) >= s.capacity {
			s.evictOldestLocked()
		}
	}
	s.records[cp.ID] = &cp
	*rec = cp
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	if err := errors.ValidateConfigID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, store.NotFound(id)
	}
	if rec.Expired(s.now()) {
		delete(s.records, id)
		return nil, store.NotFound(id)
	}
	cp := *rec
	return &cp, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]*store.Record, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Expired(now) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	store.SortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return nil
}

func (s *Store) Close() error { return nil }

// Len returns the number of records held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) sweepLocked() {
	now := s.now()
	for id, rec := range s.records {
		if rec.Expired(now) {
			delete(s.records, id)
		}
	}
}

func (s *Store) evictOldestLocked() {
	var oldest *store.Record
	for _, rec := range s.records {
		if oldest == nil || rec.Timestamp.Before(oldest.Timestamp) ||
			(rec.Timestamp.Equal(oldest.Timestamp) && rec.ID < oldest.ID) {
			oldest = rec
		}
	}
	if oldest != nil {
		delete(s.records, oldest.ID)
	}
}

var _ store.Store = (*Store)(nil)
