// Package sqlite provides an embedded SQLite store backed by the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS kitchens (
	id         TEXT PRIMARY KEY,
	kitchen_id TEXT NOT NULL,
	config     BLOB NOT NULL,
	modules    BLOB NOT NULL,
	timestamp  INTEGER NOT NULL,
	expires_at INTEGER
);
CREATE INDEX IF NOT EXISTS kitchens_timestamp ON kitchens (timestamp DESC);
CREATE INDEX IF NOT EXISTS kitchens_expires_at ON kitchens (expires_at);
`

// Store persists records in a single SQLite table.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// New opens (creating if needed) the database at path and applies the schema.
func New(ctx context.Context, path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, store.Unavailable("sqlite", err, "open "+path)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, store.Unavailable("sqlite", err, "apply schema")
	}
	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	if err := store.CheckRecord(rec); err != nil {
		return err
	}
	store.Stamp(rec, s.now(), s.ttl)

	cfg, err := json.Marshal(rec.Config)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal config")
	}
	mods, err := json.Marshal(rec.Modules)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal modules")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kitchens (id, kitchen_id, config, modules, timestamp, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			kitchen_id = excluded.kitchen_id,
			config = excluded.config,
			modules = excluded.modules,
			timestamp = excluded.timestamp,
			expires_at = excluded.expires_at`,
		rec.ID, rec.Config.KitchenID, cfg, mods, rec.Timestamp.UnixNano(), nullTime(rec.ExpiresAt))
	if err != nil {
		return store.Unavailable("sqlite", err, "save "+rec.ID)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Record, error) {
	if err := errors.ValidateConfigID(id); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, config, modules, timestamp, expires_at FROM kitchens
		WHERE id = ? AND (expires_at IS NULL OR expires_at > ?)`,
		id, s.now().UnixNano())
	rec, err := scanRecord(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateConfigID(id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kitchens WHERE id = ?`, id); err != nil {
		return store.Unavailable("sqlite", err, "delete "+id)
	}
	return nil
}

func (s *Store) List(ctx context.Context, limit int) ([]*store.Record, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, config, modules, timestamp, expires_at FROM kitchens
		WHERE expires_at IS NULL OR expires_at > ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		s.now().UnixNano(), limit)
	if err != nil {
		return nil, store.Unavailable("sqlite", err, "list")
	}
	defer rows.Close()

	var out []*store.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable("sqlite", err, "list")
	}
	return out, nil
}

func (s *Store) Cleanup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kitchens WHERE expires_at IS NOT NULL AND expires_at <= ?`, s.now().UnixNano())
	if err != nil {
		return store.Unavailable("sqlite", err, "cleanup")
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*store.Record, error) {
	var (
		rec       store.Record
		cfg, mods []byte
		ts        int64
		expires   sql.NullInt64
	)
	if err := sc.Scan(&rec.ID, &cfg, &mods, &ts, &expires); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, store.Unavailable("sqlite", err, "scan")
	}
	if err := json.Unmarshal(cfg, &rec.Config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", rec.ID)
	}
	if err := json.Unmarshal(mods, &rec.Modules); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse modules %s", rec.ID)
	}
	rec.Timestamp = time.Unix(0, ts)
	if expires.Valid {
		rec.ExpiresAt = time.Unix(0, expires.Int64)
	}
	return &rec, nil
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

var _ store.Store = (*Store)(nil)
