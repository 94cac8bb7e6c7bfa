package layout

import (
	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

// ResolveVertical returns the absolute vertical reference of a module:
//
//	floor:   plinthHeight + offset.y                          (carcass bottom)
//	wall:    overallHeight - wallCabinetHeight - wallGap + offset.y (carcass bottom)
//	ceiling: overallHeight - offset.y                         (carcass top)
//
// A ceiling-anchored module hangs down from the returned value; use
// [BottomY] to get its frame origin. Nothing is clamped: placements outside
// the room are a room-bounds concern, not an anchoring one.
func ResolveVertical(p kitchen.Positioning, d kitchen.Dimensions) (float64, error) {
	switch p.Anchor {
	case kitchen.AnchorFloor:
		return d.PlinthHeight + p.Offset.Y, nil
	case kitchen.AnchorWall:
		return d.OverallHeight - d.WallCabinetHeight - d.WallGap + p.Offset.Y, nil
	case kitchen.AnchorCeiling:
		return d.OverallHeight - p.Offset.Y, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown anchor %q", p.Anchor)
}

// BottomY converts a resolved vertical reference into the y of the carcass
// bottom for a module of the given height.
func BottomY(anchor kitchen.Anchor, ref, height float64) float64 {
	if anchor == kitchen.AnchorCeiling {
		return ref - height
	}
	return ref
}
