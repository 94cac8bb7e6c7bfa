package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

func lineOf(length float64, widths ...float64) kitchen.LayoutLine {
	l := kitchen.LayoutLine{ID: "l", Length: length, Direction: kitchen.Vec2{X: 1}}
	for i, w := range widths {
		l.Modules = append(l.Modules, kitchen.ModuleSpec{
			ID:    string(rune('a' + i)),
			Type:  kitchen.ModuleBase,
			Width: w,
		})
	}
	return l
}

func near(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }

func TestResolveLine(t *testing.T) {
	tests := []struct {
		name      string
		line      kitchen.LayoutLine
		rules     kitchen.Rules
		offsets   []float64
		widths    []float64
		scale     float64
		slack     float64
		errorCode errors.Code
	}{
		{
			name:    "fits with slack",
			line:    lineOf(360, 60, 60, 60),
			rules:   kitchen.Rules{MismatchPolicy: kitchen.PolicyReject},
			offsets: []float64{0, 60, 120},
			widths:  []float64{60, 60, 60},
			scale:   1,
			slack:   180,
		},
		{
			name:      "reject overflow",
			line:      lineOf(100, 60, 60),
			rules:     kitchen.Rules{MismatchPolicy: kitchen.PolicyReject},
			errorCode: errors.ErrCodeLineLengthMismatch,
		},
		{
			name:    "auto fix overflow",
			line:    lineOf(100, 60, 60),
			rules:   kitchen.Rules{MismatchPolicy: kitchen.PolicyAutoFix},
			offsets: []float64{0, 50},
			widths:  []float64{50, 50},
			scale:   100.0 / 120.0,
			slack:   0,
		},
		{
			name:    "auto fix leaves fitting line alone",
			line:    lineOf(200, 60, 60),
			rules:   kitchen.Rules{MismatchPolicy: kitchen.PolicyAutoFix, GapBetweenModules: 5},
			offsets: []float64{0, 65},
			widths:  []float64{60, 60},
			scale:   1,
			slack:   75,
		},
		{
			name:    "auto fix scales gaps",
			line:    lineOf(100, 60, 60),
			rules:   kitchen.Rules{MismatchPolicy: kitchen.PolicyAutoFix, GapBetweenModules: 10},
			offsets: []float64{0, 700.0 / 13.0},
			widths:  []float64{600.0 / 13.0, 600.0 / 13.0},
			scale:   100.0 / 130.0,
			slack:   0,
		},
		{
			name:    "empty line",
			line:    lineOf(120),
			rules:   kitchen.Rules{MismatchPolicy: kitchen.PolicyReject},
			scale:   1,
			slack:   120,
		},
		{
			name:      "unknown policy",
			line:      lineOf(100, 60),
			rules:     kitchen.Rules{MismatchPolicy: "stretch"},
			errorCode: errors.ErrCodeInvalidConfig,
		},
		{
			name:      "zero length",
			line:      lineOf(0),
			rules:     kitchen.Rules{MismatchPolicy: kitchen.PolicyReject},
			errorCode: errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ResolveLine(tt.line, tt.rules)
			if tt.errorCode != "" {
				if !errors.Is(err, tt.errorCode) {
					t.Fatalf("ResolveLine() error = %v, want code %s", err, tt.errorCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveLine() error: %v", err)
			}
			if len(res.Placements) != len(tt.offsets) {
				t.Fatalf("got %d placements, want %d", len(res.Placements), len(tt.offsets))
			}
			for i, p := range res.Placements {
				if !near(p.Offset, tt.offsets[i]) {
					t.Errorf("offset[%d] = %v, want %v", i, p.Offset, tt.offsets[i])
				}
				if !near(p.Width, tt.widths[i]) {
					t.Errorf("width[%d] = %v, want %v", i, p.Width, tt.widths[i])
				}
				if p.Spec.ID != tt.line.Modules[i].ID || p.Index != i {
					t.Errorf("placement[%d] = %s/%d, order not preserved", i, p.Spec.ID, p.Index)
				}
			}
			if !near(res.Scale, tt.scale) {
				t.Errorf("Scale = %v, want %v", res.Scale, tt.scale)
			}
			if !near(res.Slack, tt.slack) {
				t.Errorf("Slack = %v, want %v", res.Slack, tt.slack)
			}
		})
	}
}

func TestResolveLineConservation(t *testing.T) {
	widths := [][]float64{
		{60, 60},
		{33.3, 47.1, 90, 120},
		{45, 45, 45, 45, 45, 45, 45},
	}
	for _, ws := range widths {
		for _, gap := range []float64{0, 0.5, 3} {
			line := lineOf(150, ws...)
			res, err := ResolveLine(line, kitchen.Rules{MismatchPolicy: kitchen.PolicyAutoFix, GapBetweenModules: gap})
			if err != nil {
				t.Fatalf("ResolveLine(%v, gap %v) error: %v", ws, gap, err)
			}
			if !res.AutoFixed() {
				continue
			}
			sum := float64(len(ws)-1) * res.Gap
			for _, p := range res.Placements {
				sum += p.Width
			}
			if math.Abs(sum-line.Length) > ConservationTolerance*line.Length {
				t.Errorf("widths %v gap %v: sum %v, want %v", ws, gap, sum, line.Length)
			}
		}
	}
}

func TestResolveVertical(t *testing.T) {
	d := kitchen.DefaultDimensions()
	tests := []struct {
		anchor kitchen.Anchor
		offset float64
		want   float64
	}{
		{kitchen.AnchorFloor, 0, d.PlinthHeight},
		{kitchen.AnchorFloor, 3, d.PlinthHeight + 3},
		{kitchen.AnchorWall, 0, d.OverallHeight - d.WallCabinetHeight - d.WallGap},
		{kitchen.AnchorWall, -4, d.OverallHeight - d.WallCabinetHeight - d.WallGap - 4},
		{kitchen.AnchorCeiling, 10, d.OverallHeight - 10},
		// No clamping: out-of-room values pass through.
		{kitchen.AnchorFloor, 500, d.PlinthHeight + 500},
	}
	for _, tt := range tests {
		got, err := ResolveVertical(kitchen.Positioning{Anchor: tt.anchor, Offset: kitchen.Vec3{Y: tt.offset}}, d)
		if err != nil {
			t.Fatalf("ResolveVertical(%s) error: %v", tt.anchor, err)
		}
		if got != tt.want {
			t.Errorf("ResolveVertical(%s, %v) = %v, want %v", tt.anchor, tt.offset, got, tt.want)
		}
	}

	if _, err := ResolveVertical(kitchen.Positioning{Anchor: "roof"}, d); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown anchor error = %v", err)
	}
	if got := BottomY(kitchen.AnchorCeiling, 230, 50); got != 180 {
		t.Errorf("BottomY(ceiling) = %v, want 180", got)
	}
	if got := BottomY(kitchen.AnchorWall, 148, 72); got != 148 {
		t.Errorf("BottomY(wall) = %v, want 148", got)
	}
}
