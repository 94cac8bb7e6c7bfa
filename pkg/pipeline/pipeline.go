// Package pipeline composes validation and synthesis for kitchenplan.
//
// [Generate] is the pure entry point: it validates a config and, only when
// no hard errors exist, synthesizes the module tree. [Runner] wraps it for
// the CLI, the server and the agent tools with content-hash caching, the
// configuration store, observability hooks and logging.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.GenerateLayout(ctx, cfg)
//	if err != nil {
//	    var failure *validate.Failure
//	    if errors.As(err, &failure) {
//	        // failure.Result lists every finding
//	    }
//	}
//	rec, err := runner.Save(ctx, cfg, res.Modules)
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/kitchenplan/pkg/cache"
	"github.com/matzehuels/kitchenplan/pkg/catalog"
	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
	"github.com/matzehuels/kitchenplan/pkg/validate"
)

// EngineVersion identifies the synthesis rules. It is part of every layout
// cache key; bump it whenever the same config would synthesize differently.
const EngineVersion = "1"

// Result is a synthesized layout.
type Result struct {
	KitchenID  string              `json:"kitchenId"`
	ConfigHash string              `json:"configHash"`
	Modules    []layout.Module     `json:"modules"`
	Lines      []layout.LineReport `json:"lines"`
	Warnings   []validate.Finding  `json:"warnings"`
	Stats      Stats               `json:"stats"`
	CacheInfo  CacheInfo           `json:"cache"`
}

// Stats contains generation statistics.
type Stats struct {
	ModuleCount  int           `json:"modules"`
	NodeCount    int           `json:"nodes"`
	LineCount    int           `json:"lines"`
	ValidateTime time.Duration `json:"validateTime"`
	LayoutTime   time.Duration `json:"layoutTime"`
}

// CacheInfo tracks whether the layout came from the cache.
type CacheInfo struct {
	LayoutHit bool `json:"layoutHit"`
}

// Generate validates cfg against materials and synthesizes it. A config
// with validation errors is rejected with an INVALID_CONFIG error whose
// cause is a *validate.Failure; no partial geometry is returned.
func Generate(cfg kitchen.Config, materials catalog.MaterialLookup) (*Result, error) {
	start := time.Now()
	vr := validate.Validate(cfg, materials)
	validated := time.Now()
	if err := vr.Err(); err != nil {
		return nil, err
	}

	scene, err := layout.Build(cfg)
	if err != nil {
		return nil, err
	}

	hash, err := ConfigHash(cfg)
	if err != nil {
		return nil, err
	}
	return &Result{
		KitchenID:  cfg.KitchenID,
		ConfigHash: hash,
		Modules:    scene.Modules,
		Lines:      scene.Lines,
		Warnings:   vr.Warnings,
		Stats: Stats{
			ModuleCount:  len(scene.Modules),
			NodeCount:    scene.ModuleCount(),
			LineCount:    len(scene.Lines),
			ValidateTime: validated.Sub(start),
			LayoutTime:   time.Since(validated),
		},
	}, nil
}

// ConfigHash returns the content hash of cfg's canonical JSON encoding.
func ConfigHash(cfg kitchen.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "marshal config")
	}
	return cache.Hash(data), nil
}

// CatalogHash returns the content hash of a catalog's materials and modules.
func CatalogHash(c *catalog.Catalog) string {
	if c == nil {
		return ""
	}
	data, _ := json.Marshal(struct {
		Materials []catalog.Material   `json:"materials"`
		Modules   []catalog.ModuleType `json:"modules"`
	}{c.Materials(), c.Modules()})
	return cache.Hash(data)
}
