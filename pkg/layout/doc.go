// Package layout turns a kitchen config into a tree of placed, dimensioned
// modules.
//
// The package is split along the synthesis stages:
//
//   - [ResolveLine] walks a layout line and computes each module's linear
//     offset, applying the line's mismatch policy.
//   - [ResolveVertical] maps an anchor and the global dimensions to a
//     vertical position.
//   - [BuildCarcass] expands a module type into its carcass box and the
//     static child components (plinth, countertop, doors, shelves).
//   - [ResolveHandle] places a handle on the module front and enforces the
//     edge-distance bound.
//
// [Build] composes the stages. It expects a config that already passed
// validation and fails on the first hard error it meets; callers that need
// the validation gate use pipeline.Generate.
//
// # Frames
//
// Every module has a local frame: x runs along the line, y points up and z
// points away from the wall, so the carcass back sits at z = 0 and its front
// face at z = depth. A top-level module's Position is the world position of
// its frame origin (back, left, bottom of the carcass) and RotationY turns
// local x onto the line direction, right-handed with Y up. Child positions
// are expressed in the parent frame.
//
// All synthesis is pure: the same config yields identical output.
package layout
