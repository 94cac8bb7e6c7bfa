package layout

import (
	"math"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

// Handle template, in cm.
const (
	HandleLength     = 12.0
	HandleProjection = 2.0
	HandleThickness  = 1.0
	HandleEdgeOffset = 5.0 // offset template: distance from face edge to nearer handle end
)

// Face is the front region of a module a handle is mounted on, in the
// module frame: it starts at X, spans Width along the line and Height up
// from the carcass bottom, and lies in the plane z = Depth.
type Face struct {
	X      float64
	Width  float64
	Height float64
	Depth  float64
}

// centeredHeight is the fraction of the face height a centered handle sits
// at per module type.
func centeredHeight(t kitchen.ModuleType) float64 {
	switch t {
	case kitchen.ModuleWall:
		return 0.15
	case kitchen.ModuleTall:
		return 0.5
	default:
		return 0.85
	}
}

// defaultEdge is the edge an offset handle is measured from when the spec
// leaves it open: the bottom for wall cabinets, the top otherwise.
func defaultEdge(t kitchen.ModuleType) kitchen.Edge {
	if t == kitchen.ModuleWall {
		return kitchen.EdgeBottom
	}
	return kitchen.EdgeTop
}

// ResolveHandle places the handle requested by spec on face. A nil spec
// means the module has no handle and yields nil geometry.
//
// The handle's extent along its own axis counts against the edge bound, so
// a horizontal handle needs width/2 - length/2 >= minDistanceFromEdge and a
// vertical one needs width/2 >= minDistanceFromEdge. The horizontal position
// is never shifted to satisfy the bound; a face that is too narrow fails
// with HANDLE_TOO_CLOSE_TO_EDGE. Vertically a centered handle is clamped into
// the legal band.
func ResolveHandle(moduleID string, t kitchen.ModuleType, face Face, spec *kitchen.HandleSpec, c kitchen.HandleConstraints) (*HandleGeometry, error) {
	if spec == nil {
		return nil, nil
	}
	p := spec.Placement
	if !p.Type.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "module %q: unknown handle placement %q", moduleID, p.Type)
	}
	if !p.Orientation.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "module %q: unknown handle orientation %q", moduleID, p.Orientation)
	}
	if !p.Edge.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "module %q: unknown handle edge %q", moduleID, p.Edge)
	}

	halfX, halfY := HandleLength/2, 0.0
	if p.Orientation == kitchen.OrientationVertical {
		halfX, halfY = 0, HandleLength/2
	}
	clearance := c.MinDistanceFromEdge

	if side := face.Width/2 - halfX; side < clearance {
		return nil, errors.New(errors.ErrCodeHandleTooClose,
			"module %q: handle leaves %g cm to the side edges, need %g", moduleID, side, clearance)
	}
	lo, hi := clearance+halfY, face.Height-clearance-halfY
	if lo > hi {
		return nil, errors.New(errors.ErrCodeHandleTooClose,
			"module %q: face height %g cm too small for the handle with %g cm clearance", moduleID, face.Height, clearance)
	}

	g := &HandleGeometry{
		Placement:   p.Type,
		Orientation: p.Orientation,
		Length:      HandleLength,
		Projection:  HandleProjection,
		Thickness:   HandleThickness,
	}
	var y float64
	switch p.Type {
	case kitchen.PlacementCentered:
		y = math.Min(math.Max(face.Height*centeredHeight(t), lo), hi)
	case kitchen.PlacementOffset:
		g.Edge = p.Edge
		if g.Edge == "" {
			g.Edge = defaultEdge(t)
		}
		if g.Edge == kitchen.EdgeBottom {
			y = HandleEdgeOffset + halfY
		} else {
			y = face.Height - HandleEdgeOffset - halfY
		}
		if y < lo || y > hi {
			return nil, errors.New(errors.ErrCodeHandleTooClose,
				"module %q: offset handle sits closer than %g cm to the %s edge", moduleID, clearance, g.Edge)
		}
	}
	g.Center = kitchen.Vec3{X: face.X + face.Width/2, Y: y, Z: face.Depth}
	return g, nil
}

// handleNode wraps resolved handle geometry as a child node.
func handleNode(parentID string, g *HandleGeometry, material string) Module {
	size := Size{Width: g.Length, Height: g.Thickness, Depth: g.Projection}
	if g.Orientation == kitchen.OrientationVertical {
		size.Width, size.Height = g.Thickness, g.Length
	}
	return Module{
		ID:   childID(parentID, KindHandle, 0, 1),
		Kind: KindHandle,
		Position: kitchen.Vec3{
			X: g.Center.X - size.Width/2,
			Y: g.Center.Y - size.Height/2,
			Z: g.Center.Z,
		},
		Dimensions: size,
		Materials:  roleMap(kitchen.RoleHandle, material),
		Handle:     g,
	}
}
