// Package validate certifies that a kitchen config is physically realizable
// before synthesis runs.
//
// [Validate] never stops at the first problem. It runs every check in a
// fixed order and returns all findings at once, so a caller sees the whole
// list of things to fix in one pass. Findings split into errors, which
// block synthesis, and warnings, which only describe what synthesis will do
// (such as rescaling an auto-fixed line).
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/kitchenplan/pkg/catalog"
	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
)

// Kind identifies the rule a finding violates.
type Kind string

const (
	KindOutOfRangeWidth     Kind = "OutOfRangeWidth"
	KindInvalidLineLength   Kind = "InvalidLineLength"
	KindUnknownModuleType   Kind = "UnknownModuleType"
	KindUnknownMaterialID   Kind = "UnknownMaterialId"
	KindMissingMaterial     Kind = "MissingMaterial"
	KindLineLengthMismatch  Kind = "LineLengthMismatch"
	KindUnknownAnchor       Kind = "UnknownAnchor"
	KindUnknownPlacement    Kind = "UnknownHandlePlacement"
	KindUnknownOrientation  Kind = "UnknownHandleOrientation"
	KindUnknownEdge         Kind = "UnknownHandleEdge"
	KindUnknownPolicy       Kind = "UnknownMismatchPolicy"
	KindInvalidCorner       Kind = "InvalidCorner"
	KindUnknownLine         Kind = "UnknownLineReference"
	KindDuplicateID         Kind = "DuplicateId"
	KindMissingID           Kind = "MissingId"
	KindInvalidDirection    Kind = "InvalidDirection"
	KindInvalidDimension    Kind = "InvalidDimension"
	KindInvalidConstraint   Kind = "InvalidConstraint"
	KindHandleTooClose      Kind = "HandleTooCloseToEdge"
	KindLineAutoFixed       Kind = "LineAutoFixed"
	KindScaledWidthOutRange Kind = "ScaledWidthOutOfRange"
)

// Finding is one validation result. Only the fields relevant to its Kind
// are set.
type Finding struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	LineID    string    `json:"lineId,omitempty"`
	ModuleID  string    `json:"moduleId,omitempty"`
	Field     string    `json:"field,omitempty"`
	Ref       string    `json:"ref,omitempty"`
	Type      string    `json:"type,omitempty"`
	Width     float64   `json:"width,omitempty"`
	Bounds    []float64 `json:"bounds,omitempty"`
	Required  float64   `json:"required,omitempty"`
	Available float64   `json:"available,omitempty"`
	Scale     float64   `json:"scale,omitempty"`
}

func (f Finding) String() string { return fmt.Sprintf("%s: %s", f.Kind, f.Message) }

// Result is the outcome of [Validate].
type Result struct {
	Valid    bool      `json:"valid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// Has reports whether r contains an error of kind k.
func (r Result) Has(k Kind) bool {
	for _, f := range r.Errors {
		if f.Kind == k {
			return true
		}
	}
	return false
}

// Err returns nil for a valid result and otherwise an INVALID_CONFIG error
// wrapping a [*Failure] that carries r.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInvalidConfig, &Failure{Result: r},
		"kitchen config has %d validation error(s)", len(r.Errors))
}

// Failure is the error cause of a config rejected by validation.
type Failure struct {
	Result Result
}

func (f *Failure) Error() string {
	if len(f.Result.Errors) == 0 {
		return "validation failed"
	}
	msg := f.Result.Errors[0].String()
	if n := len(f.Result.Errors) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// moduleRef locates a module spec in the config.
type moduleRef struct {
	spec    kitchen.ModuleSpec
	line    int // index into LayoutLines, -1 for hanging modules
	index   int // index within the line or the hanging list
	lineID  string
	hanging *kitchen.HangingModule
}

type checker struct {
	cfg       *kitchen.Config
	materials catalog.MaterialLookup
	modules   []moduleRef
	lines     []*layout.LineResult // nil where the line cannot be resolved
	res       Result
}

// Validate checks cfg against the material catalog. It does not modify cfg.
// With a nil catalog, material ids are not resolved but required roles are
// still checked.
//
// The checks run in this order: width bounds, line lengths, module types,
// materials, line length against module widths (reject policy), variants,
// references and adjacency, global dimensions and constraints, and handle
// clearance.
func Validate(cfg kitchen.Config, materials catalog.MaterialLookup) Result {
	c := &checker{cfg: &cfg, materials: materials}
	c.collect()

	c.checkWidths()
	c.checkLineLengths()
	c.checkTypes()
	c.checkMaterials()
	c.checkLineFit()
	c.checkVariants()
	c.checkReferences()
	c.checkDimensions()
	c.checkHandles()
	c.warnAutoFix()

	c.res.Valid = len(c.res.Errors) == 0
	if c.res.Errors == nil {
		c.res.Errors = []Finding{}
	}
	if c.res.Warnings == nil {
		c.res.Warnings = []Finding{}
	}
	return c.res
}

func (c *checker) collect() {
	for li, l := range c.cfg.LayoutLines {
		for mi, m := range l.Modules {
			c.modules = append(c.modules, moduleRef{spec: m, line: li, index: mi, lineID: l.ID})
		}
	}
	for i := range c.cfg.HangingModules {
		h := &c.cfg.HangingModules[i]
		c.modules = append(c.modules, moduleRef{spec: h.ModuleSpec, line: -1, index: i, lineID: h.LineID, hanging: h})
	}
	c.lines = make([]*layout.LineResult, len(c.cfg.LayoutLines))
	for i, l := range c.cfg.LayoutLines {
		if res, err := layout.ResolveLine(l, c.cfg.GlobalSettings.Rules); err == nil {
			c.lines[i] = &res
		}
	}
}

func (c *checker) fail(f Finding) { c.res.Errors = append(c.res.Errors, f) }
func (c *checker) warn(f Finding) { c.res.Warnings = append(c.res.Warnings, f) }

func (c *checker) bounds() (float64, float64) {
	m := c.cfg.GlobalConstraints.Modules
	return m.MinWidth, m.MaxWidth
}

func (c *checker) checkWidths() {
	lo, hi := c.bounds()
	for _, m := range c.modules {
		if w := m.spec.Width; w <= 0 || w < lo || w > hi {
			c.fail(Finding{
				Kind:     KindOutOfRangeWidth,
				Message:  fmt.Sprintf("module %q width %g is outside [%g, %g]", m.spec.ID, w, lo, hi),
				ModuleID: m.spec.ID,
				LineID:   m.lineID,
				Width:    w,
				Bounds:   []float64{lo, hi},
			})
		}
	}
}

func (c *checker) checkLineLengths() {
	for _, l := range c.cfg.LayoutLines {
		if l.Length <= 0 {
			c.fail(Finding{
				Kind:      KindInvalidLineLength,
				Message:   fmt.Sprintf("line %q length %g must be positive", l.ID, l.Length),
				LineID:    l.ID,
				Available: l.Length,
			})
		}
	}
}

func (c *checker) checkTypes() {
	for _, m := range c.modules {
		if !m.spec.Type.Valid() {
			c.fail(Finding{
				Kind:     KindUnknownModuleType,
				Message:  fmt.Sprintf("module %q has unknown type %q", m.spec.ID, m.spec.Type),
				ModuleID: m.spec.ID,
				LineID:   m.lineID,
				Type:     string(m.spec.Type),
			})
		}
	}
}

func (c *checker) checkMaterials() {
	unknown := func(ref, where string, f Finding) {
		if ref == "" || c.materials == nil {
			return
		}
		if _, ok := c.materials.Material(ref); ok {
			return
		}
		f.Kind = KindUnknownMaterialID
		f.Ref = ref
		f.Message = fmt.Sprintf("%s references unknown material %q", where, ref)
		c.fail(f)
	}

	for _, role := range sortedKeys(c.cfg.DefaultMaterials) {
		unknown(c.cfg.DefaultMaterials[role], fmt.Sprintf("defaultMaterials.%s", role), Finding{Field: "defaultMaterials." + role})
	}
	for _, m := range c.modules {
		for _, role := range sortedKeys(m.spec.Materials) {
			unknown(m.spec.Materials[role], fmt.Sprintf("module %q %s", m.spec.ID, role),
				Finding{ModuleID: m.spec.ID, LineID: m.lineID, Field: "materials." + role})
		}
	}
	for _, m := range c.modules {
		if !m.spec.Type.Valid() {
			continue
		}
		for _, role := range layout.MaterialRoles(m.spec.Type, m.spec.Handle != nil) {
			if c.cfg.Material(m.spec, role) == "" {
				c.fail(Finding{
					Kind:     KindMissingMaterial,
					Message:  fmt.Sprintf("module %q has no %s material", m.spec.ID, role),
					ModuleID: m.spec.ID,
					LineID:   m.lineID,
					Field:    "materials." + role,
				})
			}
		}
	}
}

func (c *checker) checkLineFit() {
	rules := c.cfg.GlobalSettings.Rules
	if rules.MismatchPolicy != kitchen.PolicyReject {
		return
	}
	for _, l := range c.cfg.LayoutLines {
		if l.Length <= 0 {
			continue
		}
		if req := l.RequiredWidth(rules.GapBetweenModules); req > l.Length {
			c.fail(Finding{
				Kind:      KindLineLengthMismatch,
				Message:   fmt.Sprintf("line %q needs %g cm but is %g cm long", l.ID, req, l.Length),
				LineID:    l.ID,
				Required:  req,
				Available: l.Length,
			})
		}
	}
}

func (c *checker) checkVariants() {
	if p := c.cfg.GlobalSettings.Rules.MismatchPolicy; !p.Valid() {
		c.fail(Finding{
			Kind:    KindUnknownPolicy,
			Message: fmt.Sprintf("unknown mismatch policy %q", p),
			Field:   "globalSettings.rules.mismatchPolicy",
			Type:    string(p),
		})
	}
	for _, m := range c.modules {
		variant := func(k Kind, field, value string) {
			c.fail(Finding{
				Kind:     k,
				Message:  fmt.Sprintf("module %q has unknown %s %q", m.spec.ID, field, value),
				ModuleID: m.spec.ID,
				LineID:   m.lineID,
				Field:    field,
				Type:     value,
			})
		}
		if a := m.spec.Positioning.Anchor; !a.Valid() {
			variant(KindUnknownAnchor, "positioning.anchor", string(a))
		}
		if m.spec.Handle == nil {
			continue
		}
		p := m.spec.Handle.Placement
		if !p.Type.Valid() {
			variant(KindUnknownPlacement, "handle.placement.type", string(p.Type))
		}
		if !p.Orientation.Valid() {
			variant(KindUnknownOrientation, "handle.placement.orientation", string(p.Orientation))
		}
		if !p.Edge.Valid() {
			variant(KindUnknownEdge, "handle.placement.edge", string(p.Edge))
		}
	}
}

func (c *checker) checkReferences() {
	lineIDs := make(map[string]bool)
	for _, l := range c.cfg.LayoutLines {
		switch {
		case l.ID == "":
			c.fail(Finding{Kind: KindMissingID, Message: "layout line without id"})
		case lineIDs[l.ID]:
			c.fail(Finding{Kind: KindDuplicateID, Message: fmt.Sprintf("duplicate line id %q", l.ID), LineID: l.ID})
		}
		lineIDs[l.ID] = true
	}

	moduleIDs := make(map[string]bool)
	for _, m := range c.modules {
		switch {
		case m.spec.ID == "":
			c.fail(Finding{Kind: KindMissingID, Message: "module without id", LineID: m.lineID})
		case moduleIDs[m.spec.ID]:
			c.fail(Finding{Kind: KindDuplicateID, Message: fmt.Sprintf("duplicate module id %q", m.spec.ID), ModuleID: m.spec.ID})
		}
		moduleIDs[m.spec.ID] = true
	}

	for _, l := range c.cfg.LayoutLines {
		if l.Direction.Len() == 0 {
			c.fail(Finding{Kind: KindInvalidDirection, Message: fmt.Sprintf("line %q has a zero direction", l.ID), LineID: l.ID})
		}
	}

	for _, m := range c.modules {
		if m.hanging != nil {
			if m.hanging.LineID != "" && !lineIDs[m.hanging.LineID] {
				c.fail(Finding{
					Kind:     KindUnknownLine,
					Message:  fmt.Sprintf("hanging module %q references unknown line %q", m.spec.ID, m.hanging.LineID),
					ModuleID: m.spec.ID,
					Ref:      m.hanging.LineID,
				})
			}
			if m.spec.Type == kitchen.ModuleCorner {
				c.fail(Finding{
					Kind:     KindInvalidCorner,
					Message:  fmt.Sprintf("corner %q cannot hang outside a line", m.spec.ID),
					ModuleID: m.spec.ID,
				})
			}
			continue
		}
		if m.spec.Type != kitchen.ModuleCorner {
			continue
		}
		nb, err := layout.CornerNeighbor(c.cfg, m.line, m.index)
		if err != nil {
			c.fail(Finding{Kind: KindInvalidCorner, Message: errors.UserMessage(err), ModuleID: m.spec.ID, LineID: m.lineID})
			continue
		}
		w, depth := c.effectiveWidth(m), c.cfg.GlobalSettings.Dimensions.CountertopDepth
		if w <= nb.Depth || w < depth {
			c.fail(Finding{
				Kind:     KindInvalidCorner,
				Message:  fmt.Sprintf("corner %q width %g must exceed the neighbor depth %g and the countertop depth %g", m.spec.ID, w, nb.Depth, depth),
				ModuleID: m.spec.ID,
				LineID:   m.lineID,
				Width:    w,
			})
		}
	}
}

func (c *checker) checkHandles() {
	for _, m := range c.modules {
		if m.spec.Handle == nil || !m.spec.Type.Valid() {
			continue
		}
		var nb *layout.Neighbor
		if m.spec.Type == kitchen.ModuleCorner {
			if m.hanging != nil {
				continue
			}
			var err error
			if nb, err = layout.CornerNeighbor(c.cfg, m.line, m.index); err != nil {
				continue
			}
		}
		spec := m.spec
		spec.Width = c.effectiveWidth(m)
		dir := kitchen.Vec2{X: 1}
		if m.line >= 0 {
			dir = c.cfg.LayoutLines[m.line].Direction.Normalize()
		}
		_, err := layout.BuildCarcass(layout.BuildContext{
			Spec:        spec,
			Dims:        c.cfg.GlobalSettings.Dimensions,
			Constraints: c.cfg.GlobalConstraints.Handles,
			Direction:   dir,
			Neighbor:    nb,
		})
		if errors.Is(err, errors.ErrCodeHandleTooClose) {
			c.fail(Finding{
				Kind:     KindHandleTooClose,
				Message:  errors.UserMessage(err),
				ModuleID: m.spec.ID,
				LineID:   m.lineID,
				Width:    spec.Width,
			})
		}
	}
}

func (c *checker) warnAutoFix() {
	lo, hi := c.bounds()
	for i, res := range c.lines {
		if res == nil || !res.AutoFixed() {
			continue
		}
		l := c.cfg.LayoutLines[i]
		c.warn(Finding{
			Kind:      KindLineAutoFixed,
			Message:   fmt.Sprintf("line %q scaled by %.4f to fit %g cm", l.ID, res.Scale, l.Length),
			LineID:    l.ID,
			Scale:     res.Scale,
			Required:  res.Required,
			Available: l.Length,
		})
		for _, p := range res.Placements {
			declared := p.Spec.Width
			if declared < lo || declared > hi || (p.Width >= lo && p.Width <= hi) {
				continue
			}
			c.warn(Finding{
				Kind:     KindScaledWidthOutRange,
				Message:  fmt.Sprintf("module %q scaled to %g cm, outside [%g, %g]", p.Spec.ID, p.Width, lo, hi),
				ModuleID: p.Spec.ID,
				LineID:   l.ID,
				Width:    p.Width,
				Bounds:   []float64{lo, hi},
				Scale:    res.Scale,
			})
		}
	}
}

// effectiveWidth is the width synthesis will build m at.
func (c *checker) effectiveWidth(m moduleRef) float64 {
	if m.line >= 0 {
		if res := c.lines[m.line]; res != nil {
			return res.Placements[m.index].Width
		}
	}
	return m.spec.Width
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lowerFirst turns a Go field name into its JSON spelling.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
