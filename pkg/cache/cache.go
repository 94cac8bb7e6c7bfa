// Package cache provides content-addressed caching of synthesized layouts.
//
// Synthesis is a pure function of the kitchen config and the catalog, so a
// layout can be keyed by the hash of both and reused until the engine
// version changes. The CLI uses a [FileCache]; [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// TTLLayout is how long a synthesized layout stays cached.
const TTLLayout = 7 * 24 * time.Hour

// Cache is a byte-oriented key-value cache with per-entry TTL.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources.
	Close() error
}

// LayoutKeyOpts are the inputs besides the config that affect a layout.
type LayoutKeyOpts struct {
	CatalogHash string `json:"catalog"`
	Engine      string `json:"engine"`
}

// Keyer builds cache keys.
type Keyer interface {
	LayoutKey(configHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256(configHash, opts)>".
func (DefaultKeyer) LayoutKey(configHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", configHash, opts)
}
