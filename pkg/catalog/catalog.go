// Package catalog provides the read-only material and module-type libraries
// that kitchen configs reference.
//
// The built-in libraries are embedded TOML files. A user library can extend
// or replace entries by id (materials) or type (modules) with [Load].
package catalog

import (
	"embed"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

//go:embed data/*.toml
var builtin embed.FS

// Material is one entry of the material library.
type Material struct {
	ID        string   `toml:"id" json:"id"`
	Name      string   `toml:"name" json:"name"`
	Category  string   `toml:"category" json:"category"`
	Roles     []string `toml:"roles" json:"roles"`
	Color     string   `toml:"color" json:"color"`
	Roughness float64  `toml:"roughness" json:"roughness"`
	Metalness float64  `toml:"metalness" json:"metalness,omitempty"`
	Texture   string   `toml:"texture" json:"texture,omitempty"`
}

// HasRole reports whether m is suited for role.
func (m Material) HasRole(role string) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ModuleType is one entry of the module-type library.
type ModuleType struct {
	Type         kitchen.ModuleType `toml:"type" json:"type"`
	Name         string             `toml:"name" json:"name"`
	Description  string             `toml:"description" json:"description"`
	Anchor       kitchen.Anchor     `toml:"anchor" json:"anchor"`
	DefaultWidth float64            `toml:"default_width" json:"defaultWidth"`
	Widths       []float64          `toml:"widths" json:"widths"`
	Children     []string           `toml:"children" json:"children"`
}

// MaterialLookup resolves material ids. The validator depends only on this.
type MaterialLookup interface {
	Material(id string) (Material, bool)
}

// Catalog holds both libraries.
type Catalog struct {
	materials map[string]Material
	modules   map[kitchen.ModuleType]ModuleType
}

type materialFile struct {
	Material []Material `toml:"material"`
}

type moduleFile struct {
	Module []ModuleType `toml:"module"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Load("", "")
	if err != nil {
		// The embedded files are part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("catalog: builtin data: %v", err))
	}
	return c
}

// Load builds a catalog from the built-in libraries, then merges the
// optional user files on top. Empty paths are skipped.
func Load(materialsPath, modulesPath string) (*Catalog, error) {
	c := &Catalog{
		materials: make(map[string]Material),
		modules:   make(map[kitchen.ModuleType]ModuleType),
	}

	data, err := builtin.ReadFile("data/materials.toml")
	if err != nil {
		return nil, err
	}
	if err := c.mergeMaterials(data); err != nil {
		return nil, fmt.Errorf("builtin materials: %w", err)
	}
	data, err = builtin.ReadFile("data/modules.toml")
	if err != nil {
		return nil, err
	}
	if err := c.mergeModules(data); err != nil {
		return nil, fmt.Errorf("builtin modules: %w", err)
	}

	if materialsPath != "" {
		data, err := os.ReadFile(materialsPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", materialsPath, err)
		}
		if err := c.mergeMaterials(data); err != nil {
			return nil, fmt.Errorf("%s: %w", materialsPath, err)
		}
	}
	if modulesPath != "" {
		data, err := os.ReadFile(modulesPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", modulesPath, err)
		}
		if err := c.mergeModules(data); err != nil {
			return nil, fmt.Errorf("%s: %w", modulesPath, err)
		}
	}
	return c, nil
}

func (c *Catalog) mergeMaterials(data []byte) error {
	var f materialFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return err
	}
	for _, m := range f.Material {
		if m.ID == "" {
			return fmt.Errorf("material without id")
		}
		c.materials[m.ID] = m
	}
	return nil
}

func (c *Catalog) mergeModules(data []byte) error {
	var f moduleFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return err
	}
	for _, m := range f.Module {
		// Catalog entries describe engine variants; they cannot add new ones.
		if !m.Type.Valid() {
			return fmt.Errorf("unknown module type %q", m.Type)
		}
		c.modules[m.Type] = m
	}
	return nil
}

// Material looks up a material by id.
func (c *Catalog) Material(id string) (Material, bool) {
	m, ok := c.materials[id]
	return m, ok
}

// Module looks up a module type.
func (c *Catalog) Module(t kitchen.ModuleType) (ModuleType, bool) {
	m, ok := c.modules[t]
	return m, ok
}

// Materials returns the material library sorted by id.
func (c *Catalog) Materials() []Material {
	out := make([]Material, 0, len(c.materials))
	for _, m := range c.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Modules returns the module-type library in engine variant order.
func (c *Catalog) Modules() []ModuleType {
	out := make([]ModuleType, 0, len(c.modules))
	for _, t := range kitchen.ModuleTypes {
		if m, ok := c.modules[t]; ok {
			out = append(out, m)
		}
	}
	return out
}

var _ MaterialLookup = (*Catalog)(nil)
