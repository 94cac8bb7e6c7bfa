// Package store persists kitchen configurations together with the modules
// synthesized from them.
//
// A [Store] is a keyed record service with a defined lifecycle: records
// carry an optional expiry and backends sweep or ignore expired entries.
// Concurrent writers to the same id follow last-write-wins; no backend
// offers stronger guarantees.
//
// Backends live in subpackages:
//   - memory: bounded in-process map for tests and the server default
//   - file: one JSON file per record for the CLI
//   - redis: SET with expiry for shared deployments
//   - mongo: documents with a TTL index on expiresAt
//   - sqlite: embedded database with an expires_at column
//
// Ids have the shape "kitchen-<unixMillis>-<9 base36 chars>" (see [NewID]).
package store

import (
	"context"
	stderrors "errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
)

// ErrNotFound is the cause of every not-found error returned by a Store.
// Test for it with the standard library's errors.Is.
var ErrNotFound = stderrors.New("not found")

// DefaultTTL is how long saved configurations live unless configured otherwise.
const DefaultTTL = 30 * 24 * time.Hour

// Record is one saved configuration.
type Record struct {
	ID        string          `json:"id" bson:"_id"`
	Config    kitchen.Config  `json:"config" bson:"config"`
	Modules   []layout.Module `json:"modules" bson:"modules"`
	Timestamp time.Time       `json:"timestamp" bson:"timestamp"`
	ExpiresAt time.Time       `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
}

// Expired reports whether r has an expiry at or before now.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Store is the interface every persistence backend implements.
type Store interface {
	// Save writes rec under rec.ID, replacing any previous record. It fills
	// in rec.Timestamp and, when the backend has a TTL, rec.ExpiresAt.
	Save(ctx context.Context, rec *Record) error
	// Get returns the record or an error wrapping ErrNotFound.
	// Expired records are reported as not found.
	Get(ctx context.Context, id string) (*Record, error)
	// Delete removes a record. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
	// List returns live records, newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*Record, error)
	// Cleanup removes expired records.
	Cleanup(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// idSuffixSpace is 36^9, the number of distinct 9-character base36 suffixes.
const idSuffixSpace = 101559956668416

// NewID returns a fresh record id: "kitchen-<unixMillis>-<9 base36 chars>".
// The suffix draws its entropy from a random UUID.
func NewID() string {
	return newIDAt(time.Now())
}

func newIDAt(t time.Time) string {
	u := uuid.New()
	var v uint64
	for _, b := range u[:8] {
		v = v<<8 | uint64(b)
	}
	suffix := strconv.FormatUint(v%idSuffixSpace, 36)
	if n := 9 - len(suffix); n > 0 {
		suffix = strings.Repeat("0", n) + suffix
	}
	return "kitchen-" + strconv.FormatInt(t.UnixMilli(), 10) + "-" + suffix
}

// Stamp fills in the record's timestamp and, for a positive ttl, its expiry.
// A timestamp already set is kept.
func Stamp(rec *Record, now time.Time, ttl time.Duration) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}
	if ttl > 0 {
		rec.ExpiresAt = rec.Timestamp.Add(ttl)
	}
}

// CheckRecord rejects records that cannot be saved.
func CheckRecord(rec *Record) error {
	if rec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record cannot be nil")
	}
	return errors.ValidateConfigID(rec.ID)
}

// NotFound returns the error backends report for a missing id.
func NotFound(id string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "kitchen config %s", id)
}

// Unavailable wraps a backend failure.
func Unavailable(backend string, err error, op string) error {
	return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "%s %s", backend, op)
}

// IsNotFound reports whether err signals a missing record.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// SortNewestFirst orders records by descending timestamp, then id.
func SortNewestFirst(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].Timestamp.Equal(recs[j].Timestamp) {
			return recs[i].Timestamp.After(recs[j].Timestamp)
		}
		return recs[i].ID > recs[j].ID
	})
}
