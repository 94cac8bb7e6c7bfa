package layout

import (
	"math"
	"strconv"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

// Panel templates, in cm.
const (
	DoorThickness  = 1.8
	PanelThickness = 1.8
	// MaxSingleDoorWidth is the widest face covered by one door; wider
	// faces get a pair.
	MaxSingleDoorWidth = 60.0
)

// BuildContext is everything a builder may look at. Builders never reach
// back into the config.
type BuildContext struct {
	Spec        kitchen.ModuleSpec // Width is the effective width
	Dims        kitchen.Dimensions
	Constraints kitchen.HandleConstraints
	Direction   kitchen.Vec2        // unit direction of the module's line
	Neighbor    *Neighbor           // corners only
	Materials   map[string]string   // resolved role -> material id
}

// Geometry is the output of a builder: the carcass plus its generated
// children, all in the module frame.
type Geometry struct {
	Carcass  Carcass
	Face     Face
	Children []Module
}

// Builder expands one module type into geometry.
type Builder interface {
	Build(bc BuildContext) (Geometry, error)
}

// boxBuilder covers the straight module types. They differ only in the
// parameters of the table below.
type boxBuilder struct {
	height     func(kitchen.Dimensions) float64
	depth      func(kitchen.Dimensions) float64
	countertop bool
	shelves    int
}

// cornerBuilder builds the L-shaped corner from its neighbor context.
type cornerBuilder struct{}

var builders = map[kitchen.ModuleType]Builder{
	kitchen.ModuleBase: boxBuilder{
		height:     baseHeight,
		depth:      func(d kitchen.Dimensions) float64 { return d.CountertopDepth },
		countertop: true,
		shelves:    1,
	},
	kitchen.ModuleWall: boxBuilder{
		height:  func(d kitchen.Dimensions) float64 { return d.WallCabinetHeight },
		depth:   func(d kitchen.Dimensions) float64 { return d.WallCabinetDepth },
		shelves: 1,
	},
	kitchen.ModuleTall: boxBuilder{
		height:  func(d kitchen.Dimensions) float64 { return d.OverallHeight - d.PlinthHeight },
		depth:   func(d kitchen.Dimensions) float64 { return d.CountertopDepth },
		shelves: 4,
	},
	kitchen.ModuleCorner: cornerBuilder{},
}

// BuilderFor returns the builder for t. Every entry of kitchen.ModuleTypes
// has one.
func BuilderFor(t kitchen.ModuleType) (Builder, bool) {
	b, ok := builders[t]
	return b, ok
}

// BuildCarcass dispatches on the module type and, when the spec asks for a
// handle, resolves it on the module face.
func BuildCarcass(bc BuildContext) (Geometry, error) {
	b, ok := BuilderFor(bc.Spec.Type)
	if !ok {
		return Geometry{}, errors.New(errors.ErrCodeUnknownModuleType,
			"module %q has unknown type %q", bc.Spec.ID, bc.Spec.Type)
	}
	geo, err := b.Build(bc)
	if err != nil {
		return Geometry{}, err
	}
	h, err := ResolveHandle(bc.Spec.ID, bc.Spec.Type, geo.Face, bc.Spec.Handle, bc.Constraints)
	if err != nil {
		return Geometry{}, err
	}
	if h != nil {
		geo.Children = append(geo.Children, handleNode(bc.Spec.ID, h, bc.Materials[kitchen.RoleHandle]))
	}
	return geo, nil
}

func baseHeight(d kitchen.Dimensions) float64 {
	return d.BaseCabinetHeight - d.CountertopThickness
}

// carcassDepth is the depth a straight module of type t occupies.
func carcassDepth(t kitchen.ModuleType, d kitchen.Dimensions) float64 {
	if t == kitchen.ModuleWall {
		return d.WallCabinetDepth
	}
	return d.CountertopDepth
}

func (b boxBuilder) Build(bc BuildContext) (Geometry, error) {
	w, h, d := bc.Spec.Width, b.height(bc.Dims), b.depth(bc.Dims)
	if h <= 0 || d <= 0 {
		return Geometry{}, errors.New(errors.ErrCodeInvalidConfig,
			"module %q: dimensions give a %g x %g carcass", bc.Spec.ID, h, d)
	}
	geo := Geometry{
		Carcass: Carcass{Size: Size{Width: w, Height: h, Depth: d}},
		Face:    Face{X: 0, Width: w, Height: h, Depth: d},
	}
	leg := Box{Size: geo.Carcass.Size}
	id := bc.Spec.ID

	if bc.Spec.Positioning.Anchor == kitchen.AnchorFloor {
		geo.Children = append(geo.Children, plinths(id, bc, []Box{leg})...)
	}
	if b.countertop {
		geo.Children = append(geo.Children, countertops(id, bc, []Box{leg})...)
	}
	geo.Children = append(geo.Children, doors(id, bc, geo.Face)...)
	geo.Children = append(geo.Children, shelves(id, bc, geo.Face, d, b.shelves)...)
	return geo, nil
}

// Build lays out two legs in the module frame. Leg A runs along the line
// for the module width at countertop depth. Leg B is the neighbor's depth
// across and the module width long, running along the neighbor direction
// from the joined end.
func (cornerBuilder) Build(bc BuildContext) (Geometry, error) {
	nb := bc.Neighbor
	if nb == nil {
		return Geometry{}, errors.New(errors.ErrCodeInvalidCorner,
			"corner %q has no neighbor context", bc.Spec.ID)
	}
	w, h, d, nd := bc.Spec.Width, baseHeight(bc.Dims), bc.Dims.CountertopDepth, nb.Depth
	if w <= nd || w < d {
		return Geometry{}, errors.New(errors.ErrCodeInvalidCorner,
			"corner %q width %g must exceed the neighbor depth %g and the countertop depth %g", bc.Spec.ID, w, nd, d)
	}

	legA := Box{Size: Size{Width: w, Height: h, Depth: d}}
	legB := Box{Size: Size{Width: nd, Height: h, Depth: w}}
	face := Face{Width: w - nd, Height: h, Depth: d}
	if nb.AtStart {
		face.X = nd
	} else {
		legB.Position.X = w - nd
	}
	if nb.Direction.Dot(wallNormal(bc.Direction)) < 0 {
		// Leg B turns toward the wall side of the line.
		legB.Position.Z = d - w
	}

	minZ := math.Min(0, legB.Position.Z)
	maxZ := math.Max(d, legB.Position.Z+w)
	legs := []Box{legA, legB}
	geo := Geometry{
		Carcass: Carcass{Size: Size{Width: w, Height: h, Depth: maxZ - minZ}, Legs: legs},
		Face:    face,
	}
	id := bc.Spec.ID
	if bc.Spec.Positioning.Anchor == kitchen.AnchorFloor {
		geo.Children = append(geo.Children, plinths(id, bc, legs)...)
	}
	geo.Children = append(geo.Children, countertops(id, bc, legs)...)
	geo.Children = append(geo.Children, doors(id, bc, face)...)
	geo.Children = append(geo.Children, shelves(id, bc, face, d, 1)...)
	return geo, nil
}

// plinths emits one recessed strip under each leg.
func plinths(parent string, bc BuildContext, legs []Box) []Module {
	out := make([]Module, len(legs))
	for i, l := range legs {
		out[i] = Module{
			ID:   childID(parent, KindPlinth, i, len(legs)),
			Kind: KindPlinth,
			Position: kitchen.Vec3{
				X: l.Position.X,
				Y: -bc.Dims.PlinthHeight,
				Z: l.Position.Z,
			},
			Dimensions: Size{
				Width:  l.Size.Width,
				Height: bc.Dims.PlinthHeight,
				Depth:  math.Max(0, l.Size.Depth-bc.Dims.PlinthDepth),
			},
			Materials: roleMap(kitchen.RoleFacade, bc.Materials[kitchen.RoleFacade]),
		}
	}
	return out
}

// countertops emits one slab on the top face of each leg.
func countertops(parent string, bc BuildContext, legs []Box) []Module {
	out := make([]Module, len(legs))
	for i, l := range legs {
		out[i] = Module{
			ID:   childID(parent, KindCountertop, i, len(legs)),
			Kind: KindCountertop,
			Position: kitchen.Vec3{
				X: l.Position.X,
				Y: l.Position.Y + l.Size.Height,
				Z: l.Position.Z,
			},
			Dimensions: Size{
				Width:  l.Size.Width,
				Height: bc.Dims.CountertopThickness,
				Depth:  l.Size.Depth,
			},
			Materials: roleMap(kitchen.RoleCountertop, bc.Materials[kitchen.RoleCountertop]),
		}
	}
	return out
}

// doors covers the face with one door, or two when it is wider than
// MaxSingleDoorWidth.
func doors(parent string, bc BuildContext, f Face) []Module {
	n := 1
	if f.Width > MaxSingleDoorWidth {
		n = 2
	}
	dw := f.Width / float64(n)
	out := make([]Module, n)
	for i := range out {
		out[i] = Module{
			ID:         childID(parent, KindDoor, i, n),
			Kind:       KindDoor,
			Position:   kitchen.Vec3{X: f.X + float64(i)*dw, Y: 0, Z: f.Depth},
			Dimensions: Size{Width: dw, Height: f.Height, Depth: DoorThickness},
			Materials:  roleMap(kitchen.RoleFacade, bc.Materials[kitchen.RoleFacade]),
		}
	}
	return out
}

// shelves spaces n panels evenly inside the carcass behind the face.
func shelves(parent string, bc BuildContext, f Face, depth float64, n int) []Module {
	w := f.Width - 2*PanelThickness
	if n <= 0 || w <= 0 {
		return nil
	}
	out := make([]Module, n)
	for i := range out {
		y := f.Height*float64(i+1)/float64(n+1) - PanelThickness/2
		out[i] = Module{
			ID:         childID(parent, KindShelf, i, n),
			Kind:       KindShelf,
			Position:   kitchen.Vec3{X: f.X + PanelThickness, Y: y, Z: 0},
			Dimensions: Size{Width: w, Height: PanelThickness, Depth: depth - PanelThickness},
			Materials:  roleMap(kitchen.RoleCarcass, bc.Materials[kitchen.RoleCarcass]),
		}
	}
	return out
}

// childID names the i-th of n children of a kind: "<parent>/<kind>" for a
// single child, "<parent>/<kind>-<i+1>" otherwise.
func childID(parent string, k Kind, i, n int) string {
	if n == 1 {
		return parent + "/" + string(k)
	}
	return parent + "/" + string(k) + "-" + strconv.Itoa(i+1)
}

func roleMap(role, id string) map[string]string {
	if id == "" {
		return nil
	}
	return map[string]string{role: id}
}
