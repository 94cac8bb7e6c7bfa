package kitchen

import "math"

// =============================================================================
// Variants
// =============================================================================

// ModuleType is the closed set of cabinet kinds the engine can build.
type ModuleType string

const (
	ModuleBase   ModuleType = "base"
	ModuleWall   ModuleType = "wall"
	ModuleTall   ModuleType = "tall"
	ModuleCorner ModuleType = "corner"
)

// ModuleTypes lists every recognized module type in declaration order.
var ModuleTypes = []ModuleType{ModuleBase, ModuleWall, ModuleTall, ModuleCorner}

// Valid reports whether t is a recognized module type.
func (t ModuleType) Valid() bool {
	switch t {
	case ModuleBase, ModuleWall, ModuleTall, ModuleCorner:
		return true
	}
	return false
}

// Anchor is the reference plane a module's vertical position derives from.
type Anchor string

const (
	AnchorFloor   Anchor = "floor"
	AnchorWall    Anchor = "wall"
	AnchorCeiling Anchor = "ceiling"
)

// Valid reports whether a is a recognized anchor.
func (a Anchor) Valid() bool {
	switch a {
	case AnchorFloor, AnchorWall, AnchorCeiling:
		return true
	}
	return false
}

// MismatchPolicy governs how a line reconciles its modules with its length.
type MismatchPolicy string

const (
	PolicyAutoFix MismatchPolicy = "auto_fix"
	PolicyReject  MismatchPolicy = "reject"
)

// Valid reports whether p is a recognized policy.
func (p MismatchPolicy) Valid() bool {
	return p == PolicyAutoFix || p == PolicyReject
}

// HandlePlacement selects the handle position template.
type HandlePlacement string

const (
	PlacementCentered HandlePlacement = "centered"
	PlacementOffset   HandlePlacement = "offset"
)

// Valid reports whether p is a recognized placement.
func (p HandlePlacement) Valid() bool {
	return p == PlacementCentered || p == PlacementOffset
}

// Orientation is the direction a handle bar runs in.
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// Valid reports whether o is a recognized orientation.
func (o Orientation) Valid() bool {
	return o == OrientationHorizontal || o == OrientationVertical
}

// Edge selects which face edge an offset handle is measured from.
// The empty edge means "module default".
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

// Valid reports whether e is empty or a recognized edge.
func (e Edge) Valid() bool {
	return e == "" || e == EdgeTop || e == EdgeBottom
}

// Material roles used in material maps.
const (
	RoleCarcass    = "carcass"
	RoleFacade     = "facade"
	RoleCountertop = "countertop"
	RoleHandle     = "handle"
)

// =============================================================================
// Vectors
// =============================================================================

// Vec2 is a direction or position on the floor plane.
type Vec2 struct {
	X float64 `json:"x" yaml:"x" bson:"x"`
	Z float64 `json:"z" yaml:"z" bson:"z"`
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Z) }

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec2{X: v.X / l, Z: v.Z / l}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Z*o.Z }

// Vec3 is a point or offset in room space (Y up).
type Vec3 struct {
	X float64 `json:"x" yaml:"x" bson:"x"`
	Y float64 `json:"y" yaml:"y" bson:"y"`
	Z float64 `json:"z" yaml:"z" bson:"z"`
}

// =============================================================================
// Config
// =============================================================================

// Config is the root description of one kitchen.
type Config struct {
	KitchenID         string            `json:"kitchenId" yaml:"kitchenId" bson:"kitchenId"`
	Name              string            `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Style             string            `json:"style,omitempty" yaml:"style,omitempty" bson:"style,omitempty"`
	GlobalSettings    GlobalSettings    `json:"globalSettings" yaml:"globalSettings" bson:"globalSettings"`
	GlobalConstraints GlobalConstraints `json:"globalConstraints" yaml:"globalConstraints" bson:"globalConstraints"`
	DefaultMaterials  map[string]string `json:"defaultMaterials,omitempty" yaml:"defaultMaterials,omitempty" bson:"defaultMaterials,omitempty"`
	LayoutLines       []LayoutLine      `json:"layoutLines" yaml:"layoutLines" bson:"layoutLines"`
	HangingModules    []HangingModule   `json:"hangingModules,omitempty" yaml:"hangingModules,omitempty" bson:"hangingModules,omitempty"`
}

// GlobalSettings groups the dimension rule set and the placement rules.
type GlobalSettings struct {
	Dimensions Dimensions `json:"dimensions" yaml:"dimensions" bson:"dimensions"`
	Rules      Rules      `json:"rules" yaml:"rules" bson:"rules"`
}

// Dimensions is the global numeric rule set every module derives from.
type Dimensions struct {
	OverallHeight       float64 `json:"overallHeight" yaml:"overallHeight" bson:"overallHeight" validate:"gt=0"`
	CountertopHeight    float64 `json:"countertopHeight" yaml:"countertopHeight" bson:"countertopHeight" validate:"gt=0,ltefield=OverallHeight"`
	CountertopDepth     float64 `json:"countertopDepth" yaml:"countertopDepth" bson:"countertopDepth" validate:"gt=0"`
	CountertopThickness float64 `json:"countertopThickness" yaml:"countertopThickness" bson:"countertopThickness" validate:"gt=0"`
	WallCabinetHeight   float64 `json:"wallCabinetHeight" yaml:"wallCabinetHeight" bson:"wallCabinetHeight" validate:"gt=0"`
	WallCabinetDepth    float64 `json:"wallCabinetDepth" yaml:"wallCabinetDepth" bson:"wallCabinetDepth" validate:"gt=0"`
	WallGap             float64 `json:"wallGap" yaml:"wallGap" bson:"wallGap" validate:"gte=0"`
	GapToWall           float64 `json:"gapToWall" yaml:"gapToWall" bson:"gapToWall" validate:"gt=0"`
	BaseCabinetHeight   float64 `json:"baseCabinetHeight" yaml:"baseCabinetHeight" bson:"baseCabinetHeight" validate:"gt=0,gtfield=CountertopThickness"`
	PlinthHeight        float64 `json:"plinthHeight" yaml:"plinthHeight" bson:"plinthHeight" validate:"gt=0"`
	PlinthDepth         float64 `json:"plinthDepth" yaml:"plinthDepth" bson:"plinthDepth" validate:"gt=0"`
}

// Rules are the placement rules applied per line.
type Rules struct {
	MismatchPolicy    MismatchPolicy `json:"mismatchPolicy" yaml:"mismatchPolicy" bson:"mismatchPolicy"`
	GapBetweenModules float64        `json:"gapBetweenModules" yaml:"gapBetweenModules" bson:"gapBetweenModules" validate:"gte=0"`
}

// GlobalConstraints are the bounds modules and handles must respect.
type GlobalConstraints struct {
	Modules ModuleConstraints `json:"modules" yaml:"modules" bson:"modules"`
	Handles HandleConstraints `json:"handles" yaml:"handles" bson:"handles"`
}

// ModuleConstraints bound module widths.
type ModuleConstraints struct {
	MinWidth float64 `json:"minWidth" yaml:"minWidth" bson:"minWidth" validate:"gt=0"`
	MaxWidth float64 `json:"maxWidth" yaml:"maxWidth" bson:"maxWidth" validate:"gtefield=MinWidth"`
}

// HandleConstraints bound handle placement.
type HandleConstraints struct {
	MinDistanceFromEdge float64 `json:"minDistanceFromEdge" yaml:"minDistanceFromEdge" bson:"minDistanceFromEdge" validate:"gte=0"`
}

// LayoutLine is a straight run along which modules are placed in order.
type LayoutLine struct {
	ID        string       `json:"id" yaml:"id" bson:"id"`
	Name      string       `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Length    float64      `json:"length" yaml:"length" bson:"length"`
	Origin    Vec2         `json:"origin" yaml:"origin" bson:"origin"`
	Direction Vec2         `json:"direction" yaml:"direction" bson:"direction"`
	Modules   []ModuleSpec `json:"modules" yaml:"modules" bson:"modules"`
}

// ModuleSpec is one cabinet slot in a line.
type ModuleSpec struct {
	ID          string            `json:"id" yaml:"id" bson:"id"`
	Type        ModuleType        `json:"type" yaml:"type" bson:"type"`
	Width       float64           `json:"width" yaml:"width" bson:"width"`
	Positioning Positioning       `json:"positioning" yaml:"positioning" bson:"positioning"`
	Handle      *HandleSpec       `json:"handle,omitempty" yaml:"handle,omitempty" bson:"handle,omitempty"`
	Materials   map[string]string `json:"materials,omitempty" yaml:"materials,omitempty" bson:"materials,omitempty"`
}

// Positioning anchors a module vertically.
type Positioning struct {
	Anchor Anchor `json:"anchor" yaml:"anchor" bson:"anchor"`
	Offset Vec3   `json:"offset" yaml:"offset" bson:"offset"`
}

// HandleSpec requests a handle on the module front.
type HandleSpec struct {
	Placement HandlePlacementSpec `json:"placement" yaml:"placement" bson:"placement"`
}

// HandlePlacementSpec selects the handle template.
type HandlePlacementSpec struct {
	Type        HandlePlacement `json:"type" yaml:"type" bson:"type"`
	Orientation Orientation     `json:"orientation" yaml:"orientation" bson:"orientation"`
	Edge        Edge            `json:"edge,omitempty" yaml:"edge,omitempty" bson:"edge,omitempty"`
}

// HangingModule is a wall-hung module outside line-length accounting.
// With LineID set it sits At cm along that line; otherwise it is placed at
// the absolute floor position (Offset.X, Offset.Z) facing +X.
type HangingModule struct {
	ModuleSpec `yaml:",inline" bson:",inline"`
	LineID     string  `json:"lineId,omitempty" yaml:"lineId,omitempty" bson:"lineId,omitempty"`
	At         float64 `json:"at,omitempty" yaml:"at,omitempty" bson:"at,omitempty"`
}

// =============================================================================
// Helpers
// =============================================================================

// Line returns the layout line with the given id.
func (c *Config) Line(id string) (*LayoutLine, bool) {
	for i := range c.LayoutLines {
		if c.LayoutLines[i].ID == id {
			return &c.LayoutLines[i], true
		}
	}
	return nil, false
}

// ModuleCount returns the number of line and hanging modules.
func (c *Config) ModuleCount() int {
	n := len(c.HangingModules)
	for _, l := range c.LayoutLines {
		n += len(l.Modules)
	}
	return n
}

// Material resolves the material id for role on spec: the module override
// first, then the config default. Carcass falls back to facade.
// An empty string means nothing is assigned.
func (c *Config) Material(spec ModuleSpec, role string) string {
	if id := spec.Materials[role]; id != "" {
		return id
	}
	if id := c.DefaultMaterials[role]; id != "" {
		return id
	}
	if role == RoleCarcass {
		return c.Material(spec, RoleFacade)
	}
	return ""
}

// RequiredWidth is the naive length a line needs: widths plus inner gaps.
func (l LayoutLine) RequiredWidth(gap float64) float64 {
	if len(l.Modules) == 0 {
		return 0
	}
	var sum float64
	for _, m := range l.Modules {
		sum += m.Width
	}
	return sum + float64(len(l.Modules)-1)*gap
}

// Clone returns a deep copy of c for copy-on-modify edits.
func (c Config) Clone() Config {
	out := c
	out.DefaultMaterials = cloneMap(c.DefaultMaterials)
	if c.LayoutLines != nil {
		out.LayoutLines = make([]LayoutLine, len(c.LayoutLines))
		for i, l := range c.LayoutLines {
			out.LayoutLines[i] = l
			if l.Modules != nil {
				out.LayoutLines[i].Modules = make([]ModuleSpec, len(l.Modules))
				for j, m := range l.Modules {
					out.LayoutLines[i].Modules[j] = m.clone()
				}
			}
		}
	}
	if c.HangingModules != nil {
		out.HangingModules = make([]HangingModule, len(c.HangingModules))
		for i, h := range c.HangingModules {
			out.HangingModules[i] = h
			out.HangingModules[i].ModuleSpec = h.ModuleSpec.clone()
		}
	}
	return out
}

func (m ModuleSpec) clone() ModuleSpec {
	out := m
	out.Materials = cloneMap(m.Materials)
	if m.Handle != nil {
		h := *m.Handle
		out.Handle = &h
	}
	return out
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
