package layout

import (
	"math"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

// perpendicularTolerance bounds |d·n| for two unit directions to count as
// perpendicular.
const perpendicularTolerance = 1e-6

// Neighbor is the adjacency context a corner module is built from.
type Neighbor struct {
	// Direction is the world direction the corner's second leg runs along.
	Direction kitchen.Vec2
	// Depth is the carcass depth of the adjacent line's nearest module.
	Depth float64
	// AtStart is set when the corner opens its line and joins the previous
	// one; otherwise it closes its line and joins the next.
	AtStart bool
	// LineID names the adjacent line.
	LineID string
}

// CornerNeighbor resolves the neighbor context of the corner module at
// position mi of line li. A corner must open or close its line, and the
// line it joins (the next one for a closing corner, else the previous one)
// must run perpendicular to it.
func CornerNeighbor(cfg *kitchen.Config, li, mi int) (*Neighbor, error) {
	line := cfg.LayoutLines[li]
	id := line.Modules[mi].ID
	first, last := mi == 0, mi == len(line.Modules)-1
	if !first && !last {
		return nil, errors.New(errors.ErrCodeInvalidCorner,
			"corner %q must be the first or last module of line %q", id, line.ID)
	}

	adj, atStart := -1, false
	switch {
	case last && li+1 < len(cfg.LayoutLines):
		adj = li + 1
	case first && li > 0:
		adj, atStart = li-1, true
	default:
		return nil, errors.New(errors.ErrCodeInvalidCorner,
			"corner %q on line %q has no adjacent line to join", id, line.ID)
	}
	other := cfg.LayoutLines[adj]

	own, dir := line.Direction.Normalize(), other.Direction.Normalize()
	if own.Len() == 0 || dir.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCorner,
			"corner %q joins lines %q and %q without directions", id, line.ID, other.ID)
	}
	if math.Abs(own.Dot(dir)) > perpendicularTolerance {
		return nil, errors.New(errors.ErrCodeInvalidCorner,
			"corner %q joins lines %q and %q which are not perpendicular", id, line.ID, other.ID)
	}

	dims := cfg.GlobalSettings.Dimensions
	depth := dims.CountertopDepth
	if n := len(other.Modules); n > 0 {
		nearest := other.Modules[0]
		if atStart {
			nearest = other.Modules[n-1]
		}
		if nearest.Type != kitchen.ModuleCorner {
			depth = carcassDepth(nearest.Type, dims)
		}
	}
	if atStart {
		// The second leg runs back up the previous line.
		dir = kitchen.Vec2{X: -dir.X, Z: -dir.Z}
	}
	return &Neighbor{Direction: dir, Depth: depth, AtStart: atStart, LineID: other.ID}, nil
}
