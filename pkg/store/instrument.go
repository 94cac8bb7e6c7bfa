package store

import (
	"context"
	"time"

	"github.com/matzehuels/kitchenplan/pkg/observability"
)

// Instrument wraps s so every operation reports to the store hooks under
// the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{inner: s, backend: backend}
}

type instrumented struct {
	inner   Store
	backend string
}

func (s *instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, s.backend, op, time.Since(start), err)
}

func (s *instrumented) Save(ctx context.Context, rec *Record) error {
	start := time.Now()
	err := s.inner.Save(ctx, rec)
	s.observe(ctx, "save", start, err)
	return err
}

func (s *instrumented) Get(ctx context.Context, id string) (*Record, error) {
	start := time.Now()
	rec, err := s.inner.Get(ctx, id)
	s.observe(ctx, "get", start, err)
	return rec, err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, id)
	s.observe(ctx, "delete", start, err)
	return err
}

func (s *instrumented) List(ctx context.Context, limit int) ([]*Record, error) {
	start := time.Now()
	recs, err := s.inner.List(ctx, limit)
	s.observe(ctx, "list", start, err)
	return recs, err
}

func (s *instrumented) Cleanup(ctx context.Context) error {
	start := time.Now()
	err := s.inner.Cleanup(ctx)
	s.observe(ctx, "cleanup", start, err)
	return err
}

func (s *instrumented) Close() error { return s.inner.Close() }
