// Package file provides a store that keeps one JSON file per record.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/store"
)

// Store is a file-based store for CLI use.
type Store struct {
	mu      sync.RWMutex
	baseDir string
	ttl     time.Duration
	now     func() time.Time
}

// DefaultDir returns ~/.config/kitchenplan/kitchens.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "kitchenplan", "kitchens"), nil
}

// New creates a file-based store rooted at baseDir, creating it if needed.
// If baseDir is empty, DefaultDir is used. A positive ttl stamps an expiry
// on every saved record.
func New(baseDir string, ttl time.Duration) (*Store, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, store.Unavailable("file", err, "create store dir")
	}
	return &Store{baseDir: baseDir, ttl: ttl, now: time.Now}, nil
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	if err := store.CheckRecord(rec); err != nil {
		return err
	}
	store.Stamp(rec, s.now(), s.ttl)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so readers never see a partial file.
	path := s.recordPath(rec.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return store.Unavailable("file", err, "write record")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return store.Unavailable("file", err, "write record")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	if err := errors.ValidateConfigID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.read(s.recordPath(id))
	if os.IsNotExist(err) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, err
	}
	if rec.Expired(s.now()) {
		return nil, store.NotFound(id)
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateConfigID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil && !os.IsNotExist(err) {
		return store.Unavailable("file", err, "remove record")
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Record
	now := s.now()
	err := s.each(func(path string, rec *store.Record) {
		if !rec.Expired(now) {
			out = append(out, rec)
		}
	})
	if err != nil {
		return nil, err
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

	now := s.now()
	return s.each(func(path string, rec *store.Record) {
		if rec.Expired(now) {
			_ = os.Remove(path)
		}
	})
}

func (s *Store) Close() error { return nil }

// Path returns the base directory for record files.
func (s *Store) Path() string {
	return s.baseDir
}

func (s *Store) read(path string) (*store.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec store.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse record %s", filepath.Base(path))
	}
	return &rec, nil
}

// each calls fn for every readable record file. Unparseable files are skipped.
func (s *Store) each(fn func(path string, rec *store.Record)) error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return store.Unavailable("file", err, "read store dir")
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		rec, err := s.read(path)
		if err != nil {
			continue
		}
		fn(path, rec)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
