package layout

import (
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

// LineReport summarizes how a line was resolved.
type LineReport struct {
	LineID    string  `json:"lineId" bson:"lineId"`
	Scale     float64 `json:"scale" bson:"scale"`
	Required  float64 `json:"required" bson:"required"`
	Used      float64 `json:"used" bson:"used"`
	Slack     float64 `json:"slack" bson:"slack"`
	AutoFixed bool    `json:"autoFixed" bson:"autoFixed"`
}

// Scene is the synthesized kitchen: one top-level module per spec, in line
// order then module order, then the hanging modules.
type Scene struct {
	Modules []Module     `json:"modules" bson:"modules"`
	Lines   []LineReport `json:"lines" bson:"lines"`
}

// ModuleCount returns the number of nodes across all module trees.
func (s *Scene) ModuleCount() int {
	n := 0
	for i := range s.Modules {
		n += s.Modules[i].Count()
	}
	return n
}

// Build synthesizes cfg. Lines are independent and resolved concurrently;
// the result does not depend on scheduling. When several lines fail, the
// error of the first failing line in declaration order is returned.
func Build(cfg kitchen.Config) (*Scene, error) {
	n := len(cfg.LayoutLines)
	mods := make([][]Module, n)
	reports := make([]LineReport, n)
	errs := make([]error, n)

	var g errgroup.Group
	for i := range cfg.LayoutLines {
		g.Go(func() error {
			mods[i], reports[i], errs[i] = buildLine(&cfg, i)
			return errs[i]
		})
	}
	if g.Wait() != nil {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	scene := &Scene{Lines: reports}
	for _, m := range mods {
		scene.Modules = append(scene.Modules, m...)
	}
	for _, h := range cfg.HangingModules {
		m, err := buildHanging(&cfg, h)
		if err != nil {
			return nil, err
		}
		scene.Modules = append(scene.Modules, m)
	}
	return scene, nil
}

// frame locates a module's frame origin on the floor plane.
type frame struct {
	lineID string
	base   kitchen.Vec2 // floor point of the module's leading back corner
	dir    kitchen.Vec2
}

func buildLine(cfg *kitchen.Config, li int) ([]Module, LineReport, error) {
	line := cfg.LayoutLines[li]
	dir := line.Direction.Normalize()
	if dir.Len() == 0 {
		return nil, LineReport{}, errors.New(errors.ErrCodeInvalidConfig, "line %q has no direction", line.ID)
	}
	res, err := ResolveLine(line, cfg.GlobalSettings.Rules)
	if err != nil {
		return nil, LineReport{}, err
	}

	gapToWall := cfg.GlobalSettings.Dimensions.GapToWall
	out := make([]Module, len(res.Placements))
	for i, p := range res.Placements {
		var nb *Neighbor
		if p.Spec.Type == kitchen.ModuleCorner {
			if nb, err = CornerNeighbor(cfg, li, p.Index); err != nil {
				return nil, LineReport{}, err
			}
		}
		spec := p.Spec
		spec.Width = p.Width
		f := frame{lineID: line.ID, base: onLine(line.Origin, dir, p.Offset, gapToWall), dir: dir}
		if out[i], err = buildModule(cfg, spec, f, nb); err != nil {
			return nil, LineReport{}, err
		}
	}
	return out, LineReport{
		LineID:    line.ID,
		Scale:     res.Scale,
		Required:  res.Required,
		Used:      res.Used,
		Slack:     res.Slack,
		AutoFixed: res.AutoFixed(),
	}, nil
}

// buildHanging places a wall-hung module. With a line reference it sits at
// At along the line; otherwise Offset.X and Offset.Z are absolute floor
// coordinates and the module faces +X.
func buildHanging(cfg *kitchen.Config, h kitchen.HangingModule) (Module, error) {
	f := frame{dir: kitchen.Vec2{X: 1}}
	if h.LineID != "" {
		line, ok := cfg.Line(h.LineID)
		if !ok {
			return Module{}, errors.New(errors.ErrCodeInvalidConfig,
				"hanging module %q references unknown line %q", h.ID, h.LineID)
		}
		f.dir = line.Direction.Normalize()
		if f.dir.Len() == 0 {
			return Module{}, errors.New(errors.ErrCodeInvalidConfig, "line %q has no direction", line.ID)
		}
		f.lineID = line.ID
		f.base = onLine(line.Origin, f.dir, h.At, cfg.GlobalSettings.Dimensions.GapToWall)
	}
	if h.Type == kitchen.ModuleCorner {
		return Module{}, errors.New(errors.ErrCodeInvalidCorner,
			"corner %q cannot hang outside a line", h.ID)
	}
	return buildModule(cfg, h.ModuleSpec, f, nil)
}

// onLine returns the floor point at offset along a line, pushed off the
// wall by gapToWall.
func onLine(origin, dir kitchen.Vec2, offset, gapToWall float64) kitchen.Vec2 {
	n := wallNormal(dir)
	return kitchen.Vec2{
		X: origin.X + dir.X*offset + n.X*gapToWall,
		Z: origin.Z + dir.Z*offset + n.Z*gapToWall,
	}
}

func buildModule(cfg *kitchen.Config, spec kitchen.ModuleSpec, f frame, nb *Neighbor) (Module, error) {
	dims := cfg.GlobalSettings.Dimensions
	ref, err := ResolveVertical(spec.Positioning, dims)
	if err != nil {
		return Module{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "module %q", spec.ID)
	}
	materials := ResolveMaterials(cfg, spec)
	geo, err := BuildCarcass(BuildContext{
		Spec:        spec,
		Dims:        dims,
		Constraints: cfg.GlobalConstraints.Handles,
		Direction:   f.dir,
		Neighbor:    nb,
		Materials:   materials,
	})
	if err != nil {
		return Module{}, err
	}

	off := spec.Positioning.Offset
	n := wallNormal(f.dir)
	carcass := geo.Carcass
	return Module{
		ID:     spec.ID,
		SpecID: spec.ID,
		Kind:   KindModule,
		Type:   spec.Type,
		LineID: f.lineID,
		Position: kitchen.Vec3{
			X: f.base.X + f.dir.X*off.X + n.X*off.Z,
			Y: BottomY(spec.Positioning.Anchor, ref, carcass.Size.Height),
			Z: f.base.Z + f.dir.Z*off.X + n.Z*off.Z,
		},
		RotationY:  RotationY(f.dir),
		Dimensions: carcass.Size,
		Materials:  materials,
		Carcass:    &carcass,
		Children:   geo.Children,
	}, nil
}

// MaterialRoles lists the roles a module of type t needs, given whether it
// carries a handle.
func MaterialRoles(t kitchen.ModuleType, hasHandle bool) []string {
	roles := []string{kitchen.RoleCarcass, kitchen.RoleFacade}
	if t == kitchen.ModuleBase || t == kitchen.ModuleCorner {
		roles = append(roles, kitchen.RoleCountertop)
	}
	if hasHandle {
		roles = append(roles, kitchen.RoleHandle)
	}
	return roles
}

// ResolveMaterials returns the effective role -> material id map of spec.
// Roles without any assignment are left out; no fallback material is
// invented.
func ResolveMaterials(cfg *kitchen.Config, spec kitchen.ModuleSpec) map[string]string {
	out := make(map[string]string)
	for _, role := range MaterialRoles(spec.Type, spec.Handle != nil) {
		if id := cfg.Material(spec, role); id != "" {
			out[role] = id
		}
	}
	return out
}
