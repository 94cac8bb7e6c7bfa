package layout

import (
	"math"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

// ConservationTolerance is the relative tolerance within which an auto-fixed
// line's modules and gaps must add up to the line length.
const ConservationTolerance = 1e-6

// Placement is one module of a resolved line.
type Placement struct {
	Spec   kitchen.ModuleSpec
	Index  int     // position in the line's module sequence
	Offset float64 // leading edge along the line direction
	Width  float64 // effective width after policy scaling
}

// LineResult is the outcome of resolving one line.
type LineResult struct {
	LineID     string
	Placements []Placement
	Scale      float64 // 1 unless auto_fix rescaled the line
	Gap        float64 // effective gap between modules
	Required   float64 // naive widths plus gaps
	Used       float64 // end of the last module
	Slack      float64 // unused length at the end of the line
}

// AutoFixed reports whether the line was rescaled.
func (r LineResult) AutoFixed() bool { return r.Scale != 1 }

// lineFitter reconciles the naive module run with the line length. It is
// chosen once per line from the mismatch policy.
type lineFitter func(line kitchen.LayoutLine, required float64) (scale float64, err error)

func fitterFor(p kitchen.MismatchPolicy) (lineFitter, bool) {
	switch p {
	case kitchen.PolicyAutoFix:
		return fitAutoFix, true
	case kitchen.PolicyReject:
		return fitReject, true
	}
	return nil, false
}

// fitAutoFix shrinks an overflowing line uniformly. Lines that fit keep
// their widths; modules need not fill the line.
func fitAutoFix(line kitchen.LayoutLine, required float64) (float64, error) {
	if required > line.Length {
		return line.Length / required, nil
	}
	return 1, nil
}

func fitReject(line kitchen.LayoutLine, required float64) (float64, error) {
	if required > line.Length {
		return 0, errors.New(errors.ErrCodeLineLengthMismatch,
			"line %q needs %g cm but is %g cm long", line.ID, required, line.Length)
	}
	return 1, nil
}

// ResolveLine computes the linear offset of every module in line, in
// declared order. Under auto_fix an overflowing line has every width and
// gap multiplied by length/required; under reject overflow is an error.
func ResolveLine(line kitchen.LayoutLine, rules kitchen.Rules) (LineResult, error) {
	fit, ok := fitterFor(rules.MismatchPolicy)
	if !ok {
		return LineResult{}, errors.New(errors.ErrCodeInvalidConfig,
			"unknown mismatch policy %q", rules.MismatchPolicy)
	}
	if line.Length <= 0 {
		return LineResult{}, errors.New(errors.ErrCodeInvalidConfig,
			"line %q has non-positive length %g", line.ID, line.Length)
	}

	required := line.RequiredWidth(rules.GapBetweenModules)
	scale, err := fit(line, required)
	if err != nil {
		return LineResult{}, err
	}

	res := LineResult{
		LineID:     line.ID,
		Placements: make([]Placement, len(line.Modules)),
		Scale:      scale,
		Gap:        rules.GapBetweenModules * scale,
		Required:   required,
	}
	cursor := 0.0
	for i, m := range line.Modules {
		if i > 0 {
			cursor += res.Gap
		}
		w := m.Width * scale
		res.Placements[i] = Placement{Spec: m, Index: i, Offset: cursor, Width: w}
		cursor += w
	}
	res.Used = cursor
	res.Slack = math.Max(0, line.Length-cursor)

	if res.AutoFixed() && math.Abs(cursor-line.Length) > ConservationTolerance*line.Length {
		return LineResult{}, errors.New(errors.ErrCodeInternal,
			"line %q: scaled run ends at %g, want %g", line.ID, cursor, line.Length)
	}
	return res, nil
}
