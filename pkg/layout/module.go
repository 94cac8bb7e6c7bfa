package layout

import (
	"math"

	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

// Kind tags the role of a node in the module tree.
type Kind string

const (
	KindModule     Kind = "module"
	KindPlinth     Kind = "plinth"
	KindCountertop Kind = "countertop"
	KindDoor       Kind = "door"
	KindShelf      Kind = "shelf"
	KindHandle     Kind = "handle"
)

// Size is an axis-aligned extent in the owning frame.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Depth  float64 `json:"depth" bson:"depth"`
}

// Box is a sized box positioned by its minimum corner.
type Box struct {
	Position kitchen.Vec3 `json:"position" bson:"position"`
	Size     Size         `json:"size" bson:"size"`
}

// Carcass is the structural box geometry of a module. Straight modules have
// a single box; corners carry one box per leg.
type Carcass struct {
	Size Size  `json:"size" bson:"size"`
	Legs []Box `json:"legs,omitempty" bson:"legs,omitempty"`
}

// HandleGeometry is a resolved handle in the module frame.
type HandleGeometry struct {
	Placement   kitchen.HandlePlacement `json:"placement" bson:"placement"`
	Orientation kitchen.Orientation     `json:"orientation" bson:"orientation"`
	Edge        kitchen.Edge            `json:"edge,omitempty" bson:"edge,omitempty"`
	Center      kitchen.Vec3            `json:"center" bson:"center"`
	Length      float64                 `json:"length" bson:"length"`
	Projection  float64                 `json:"projection" bson:"projection"`
	Thickness   float64                 `json:"thickness" bson:"thickness"`
}

// Module is one node of the synthesized scene. Top-level nodes map one to
// one onto the config's module specs; their children are generated from
// static per-type templates.
type Module struct {
	ID         string             `json:"id" bson:"id"`
	SpecID     string             `json:"specId,omitempty" bson:"specId,omitempty"`
	Kind       Kind               `json:"kind" bson:"kind"`
	Type       kitchen.ModuleType `json:"type,omitempty" bson:"type,omitempty"`
	LineID     string             `json:"lineId,omitempty" bson:"lineId,omitempty"`
	Position   kitchen.Vec3       `json:"position" bson:"position"`
	RotationY  float64            `json:"rotationY" bson:"rotationY"`
	Dimensions Size               `json:"dimensions" bson:"dimensions"`
	Materials  map[string]string  `json:"materials,omitempty" bson:"materials,omitempty"`
	Carcass    *Carcass           `json:"carcass,omitempty" bson:"carcass,omitempty"`
	Handle     *HandleGeometry    `json:"handle,omitempty" bson:"handle,omitempty"`
	Children   []Module           `json:"children,omitempty" bson:"children,omitempty"`
}

// Walk visits m and its descendants depth-first, passing each node's depth
// (0 for m itself). Returning false from fn skips the node's children.
func (m *Module) Walk(fn func(n *Module, depth int) bool) {
	m.walk(fn, 0)
}

func (m *Module) walk(fn func(*Module, int) bool, depth int) {
	if !fn(m, depth) {
		return
	}
	for i := range m.Children {
		m.Children[i].walk(fn, depth+1)
	}
}

// Depth returns the number of levels in the tree rooted at m.
func (m *Module) Depth() int {
	deepest := 0
	m.Walk(func(_ *Module, d int) bool {
		if d+1 > deepest {
			deepest = d + 1
		}
		return true
	})
	return deepest
}

// Count returns the number of nodes in the tree rooted at m.
func (m *Module) Count() int {
	n := 0
	m.Walk(func(*Module, int) bool { n++; return true })
	return n
}

// RotationY returns the frame rotation that turns local x onto dir.
func RotationY(dir kitchen.Vec2) float64 {
	// 0 - z rather than -z keeps a zero component at +0, so opposite
	// directions along X map to +pi instead of -pi.
	return math.Atan2(0-dir.Z, dir.X)
}

// wallNormal returns the horizontal unit normal pointing from the wall into
// the room for a line running along dir.
func wallNormal(dir kitchen.Vec2) kitchen.Vec2 {
	return kitchen.Vec2{X: -dir.Z, Z: dir.X}
}
