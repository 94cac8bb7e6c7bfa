// Package tools exposes kitchenplan to an agent layer as named tool calls.
//
// Each tool is available as a typed method on [Toolbox] and, for JSON
// transports, through [Toolbox.Call] with a raw argument object. Tool
// names and argument shapes are described by [Definitions].
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/kitchenplan/pkg/catalog"
	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
	"github.com/matzehuels/kitchenplan/pkg/observability"
	"github.com/matzehuels/kitchenplan/pkg/pipeline"
	"github.com/matzehuels/kitchenplan/pkg/store"
	"github.com/matzehuels/kitchenplan/pkg/validate"
)

// Tool names.
const (
	GetMaterialLibrary    = "getMaterialLibrary"
	GetModuleLibrary      = "getModuleLibrary"
	ValidateKitchenConfig = "validateKitchenConfig"
	GenerateLayout        = "generateLayout"
	SaveKitchenConfig     = "saveKitchenConfig"
	GetKitchenConfig      = "getKitchenConfig"
)

// MaterialLibrary is the result of getMaterialLibrary.
type MaterialLibrary struct {
	Materials []catalog.Material `json:"materials"`
}

// ModuleLibrary is the result of getModuleLibrary.
type ModuleLibrary struct {
	Modules []catalog.ModuleType `json:"modules"`
}

// SaveResult is the result of saveKitchenConfig.
type SaveResult struct {
	ConfigID string `json:"configId"`
}

// StoredConfig is the result of getKitchenConfig.
type StoredConfig struct {
	ConfigID  string          `json:"configId"`
	Config    kitchen.Config  `json:"config"`
	Modules   []layout.Module `json:"modules"`
	Timestamp int64           `json:"timestamp"` // unix millis
}

// Toolbox implements the tool-call contract on top of a pipeline runner.
type Toolbox struct {
	runner *pipeline.Runner
}

// New returns a toolbox that uses r for catalogs, synthesis and storage.
func New(r *pipeline.Runner) *Toolbox {
	return &Toolbox{runner: r}
}

// GetMaterialLibrary returns every material, sorted by id.
func (t *Toolbox) GetMaterialLibrary(ctx context.Context) MaterialLibrary {
	return MaterialLibrary{Materials: t.runner.Catalog.Materials()}
}

// GetModuleLibrary returns every module type.
func (t *Toolbox) GetModuleLibrary(ctx context.Context) ModuleLibrary {
	return ModuleLibrary{Modules: t.runner.Catalog.Modules()}
}

// ValidateKitchenConfig checks cfg and reports every finding.
func (t *Toolbox) ValidateKitchenConfig(ctx context.Context, cfg kitchen.Config) validate.Result {
	return t.runner.Validate(ctx, cfg)
}

// GenerateLayout validates and synthesizes cfg. It fails instead of
// returning partial geometry when the config has validation errors.
func (t *Toolbox) GenerateLayout(ctx context.Context, cfg kitchen.Config) (*pipeline.Result, error) {
	return t.runner.GenerateLayout(ctx, cfg)
}

// SaveKitchenConfig persists cfg and modules verbatim under a new id.
func (t *Toolbox) SaveKitchenConfig(ctx context.Context, cfg kitchen.Config, modules []layout.Module) (SaveResult, error) {
	rec, err := t.runner.Save(ctx, cfg, modules)
	if err != nil {
		return SaveResult{}, err
	}
	return SaveResult{ConfigID: rec.ID}, nil
}

// GetKitchenConfig returns a saved configuration or a NOT_FOUND error.
func (t *Toolbox) GetKitchenConfig(ctx context.Context, id string) (*StoredConfig, error) {
	rec, err := t.runner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StoredConfig{
		ConfigID:  rec.ID,
		Config:    rec.Config,
		Modules:   rec.Modules,
		Timestamp: rec.Timestamp.UnixMilli(),
	}, nil
}

type configArgs struct {
	Config *kitchen.Config `json:"config"`
}

type saveArgs struct {
	Config  *kitchen.Config `json:"config"`
	Modules []layout.Module `json:"modules"`
}

type getArgs struct {
	ConfigID string `json:"configId"`
}

// Call dispatches a tool by name. args is the tool's JSON argument object;
// it may be empty for tools without arguments.
func (t *Toolbox) Call(ctx context.Context, name string, args json.RawMessage) (result any, err error) {
	start := time.Now()
	defer func() {
		observability.Tools().OnToolCall(ctx, name, time.Since(start), err)
	}()

	switch name {
	case GetMaterialLibrary:
		return t.GetMaterialLibrary(ctx), nil
	case GetModuleLibrary:
		return t.GetModuleLibrary(ctx), nil
	case ValidateKitchenConfig:
		var a configArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		if a.Config == nil {
			return nil, missing(name, "config")
		}
		return t.ValidateKitchenConfig(ctx, *a.Config), nil
	case GenerateLayout:
		var a configArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		if a.Config == nil {
			return nil, missing(name, "config")
		}
		return t.GenerateLayout(ctx, *a.Config)
	case SaveKitchenConfig:
		var a saveArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		if a.Config == nil {
			return nil, missing(name, "config")
		}
		return t.SaveKitchenConfig(ctx, *a.Config, a.Modules)
	case GetKitchenConfig:
		var a getArgs
		if err := decode(name, args, &a); err != nil {
			return nil, err
		}
		if a.ConfigID == "" {
			return nil, missing(name, "configId")
		}
		return t.GetKitchenConfig(ctx, a.ConfigID)
	}
	return nil, errors.New(errors.ErrCodeUnknownTool, "unknown tool: %q", name)
}

func decode(tool string, args json.RawMessage, v any) error {
	if len(bytes.TrimSpace(args)) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: decode arguments", tool)
	}
	return nil
}

func missing(tool, field string) error {
	return errors.New(errors.ErrCodeInvalidInput, "%s: missing argument %q", tool, field)
}

// IsNotFound reports whether a tool error means the requested config does
// not exist.
func IsNotFound(err error) bool {
	return store.IsNotFound(err)
}
