package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kitchenplan/pkg/cache"
	"github.com/matzehuels/kitchenplan/pkg/catalog"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
	"github.com/matzehuels/kitchenplan/pkg/observability"
	"github.com/matzehuels/kitchenplan/pkg/store"
	"github.com/matzehuels/kitchenplan/pkg/store/memory"
	"github.com/matzehuels/kitchenplan/pkg/validate"
)

// Runner encapsulates pipeline execution with caching and persistence.
// Both CLI and server use it so caching and hook logic live in one place.
//
// The Runner holds no per-request state; multiple goroutines can share one.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Catalog *catalog.Catalog
	Store   store.Store

	catalogHash string
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The catalog defaults to catalog.Default() and the store to an in-memory
// store with store.DefaultTTL; both may be replaced with WithCatalog and
// WithStore before first use.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Store:  store.Instrument(memory.New(memory.Options{TTL: store.DefaultTTL}), "memory"),
	}
	return r.WithCatalog(catalog.Default())
}

// WithCatalog replaces the material and module catalog.
func (r *Runner) WithCatalog(c *catalog.Catalog) *Runner {
	r.Catalog = c
	r.catalogHash = CatalogHash(c)
	return r
}

// WithStore replaces the configuration store, closing the previous one.
func (r *Runner) WithStore(s store.Store) *Runner {
	if r.Store != nil {
		_ = r.Store.Close()
	}
	r.Store = s
	return r
}

// Validate checks cfg against the runner's catalog.
func (r *Runner) Validate(ctx context.Context, cfg kitchen.Config) validate.Result {
	start := time.Now()
	res := validate.Validate(cfg, r.lookup())
	dur := time.Since(start)

	observability.Pipeline().OnValidate(ctx, cfg.KitchenID, len(res.Errors), len(res.Warnings), dur)
	r.Logger.Debug("validated config",
		"kitchen", cfg.KitchenID,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"duration", dur)
	return res
}

// GenerateLayoutWithCacheInfo synthesizes cfg, serving it from the cache
// when the same config was synthesized with the same catalog and engine.
// The boolean reports a cache hit.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, cfg kitchen.Config) (*Result, bool, error) {
	hash, err := ConfigHash(cfg)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(hash, cache.LayoutKeyOpts{
		CatalogHash: r.catalogHash,
		Engine:      EngineVersion,
	})

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached Result
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			cached.CacheInfo.LayoutHit = true
			r.Logger.Info("loaded layout from cache",
				"kitchen", cfg.KitchenID,
				"modules", cached.Stats.ModuleCount,
				"cached", true)
			return &cached, true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Pipeline().OnGenerateStart(ctx, cfg.KitchenID, len(cfg.LayoutLines))
	start := time.Now()
	res, err := Generate(cfg, r.lookup())
	dur := time.Since(start)
	modules := 0
	if res != nil {
		modules = res.Stats.ModuleCount
	}
	observability.Pipeline().OnGenerateComplete(ctx, cfg.KitchenID, modules, dur, err)
	if err != nil {
		r.Logger.Debug("generation failed", "kitchen", cfg.KitchenID, "err", err)
		return nil, false, err
	}

	r.Logger.Info("generated layout",
		"kitchen", cfg.KitchenID,
		"modules", res.Stats.ModuleCount,
		"lines", res.Stats.LineCount,
		"duration", dur,
		"cached", false)
	for _, w := range res.Warnings {
		r.Logger.Warn(w.Message, "kind", w.Kind, "line", w.LineID, "module", w.ModuleID)
	}

	// Cache the result
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return res, false, nil
}

// GenerateLayout is a convenience wrapper that calls GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, cfg kitchen.Config) (*Result, error) {
	res, _, err := r.GenerateLayoutWithCacheInfo(ctx, cfg)
	return res, err
}

// Save persists cfg and its modules verbatim under a fresh id.
func (r *Runner) Save(ctx context.Context, cfg kitchen.Config, modules []layout.Module) (*store.Record, error) {
	rec := &store.Record{
		ID:      store.NewID(),
		Config:  cfg.Clone(),
		Modules: modules,
	}
	if err := r.Store.Save(ctx, rec); err != nil {
		return nil, err
	}
	r.Logger.Info("saved kitchen config", "id", rec.ID, "kitchen", cfg.KitchenID)
	return rec, nil
}

// Get retrieves a saved configuration.
func (r *Runner) Get(ctx context.Context, id string) (*store.Record, error) {
	return r.Store.Get(ctx, id)
}

// List returns saved configurations, newest first.
func (r *Runner) List(ctx context.Context, limit int) ([]*store.Record, error) {
	return r.Store.List(ctx, limit)
}

// Cleanup removes expired configurations from the store.
func (r *Runner) Cleanup(ctx context.Context) error {
	start := time.Now()
	if err := r.Store.Cleanup(ctx); err != nil {
		return err
	}
	r.Logger.Debug("cleaned up store", "duration", time.Since(start))
	return nil
}

// Close releases resources held by the runner (cache and store).
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// lookup avoids passing a typed nil pointer as a non-nil interface.
func (r *Runner) lookup() catalog.MaterialLookup {
	if r.Catalog == nil {
		return nil
	}
	return r.Catalog
}
