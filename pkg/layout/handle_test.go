package layout

import (
	"testing"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

func handleSpec(p kitchen.HandlePlacement, o kitchen.Orientation, e kitchen.Edge) *kitchen.HandleSpec {
	return &kitchen.HandleSpec{Placement: kitchen.HandlePlacementSpec{Type: p, Orientation: o, Edge: e}}
}

func TestResolveHandleOmitted(t *testing.T) {
	g, err := ResolveHandle("m", kitchen.ModuleBase, Face{Width: 60, Height: 76, Depth: 60}, nil, kitchen.HandleConstraints{})
	if g != nil || err != nil {
		t.Errorf("ResolveHandle(nil) = %v, %v; want nil, nil", g, err)
	}
}

func TestResolveHandle(t *testing.T) {
	face := Face{X: 0, Width: 60, Height: 76, Depth: 60}
	c := kitchen.HandleConstraints{MinDistanceFromEdge: 3}

	tests := []struct {
		name   string
		mt     kitchen.ModuleType
		face   Face
		spec   *kitchen.HandleSpec
		center kitchen.Vec3
		edge   kitchen.Edge
	}{
		{
			name:   "centered base",
			mt:     kitchen.ModuleBase,
			face:   face,
			spec:   handleSpec(kitchen.PlacementCentered, kitchen.OrientationHorizontal, ""),
			center: kitchen.Vec3{X: 30, Y: 76 * 0.85, Z: 60},
		},
		{
			name:   "centered wall",
			mt:     kitchen.ModuleWall,
			face:   Face{Width: 40, Height: 72, Depth: 35},
			spec:   handleSpec(kitchen.PlacementCentered, kitchen.OrientationHorizontal, ""),
			center: kitchen.Vec3{X: 20, Y: 72 * 0.15, Z: 35},
		},
		{
			name:   "centered vertical clamped into band",
			mt:     kitchen.ModuleBase,
			face:   Face{Width: 60, Height: 40, Depth: 60},
			spec:   handleSpec(kitchen.PlacementCentered, kitchen.OrientationVertical, ""),
			center: kitchen.Vec3{X: 30, Y: 40 - 3 - HandleLength/2, Z: 60},
		},
		{
			name:   "offset vertical defaults to top",
			mt:     kitchen.ModuleTall,
			face:   Face{Width: 60, Height: 230, Depth: 60},
			spec:   handleSpec(kitchen.PlacementOffset, kitchen.OrientationVertical, ""),
			center: kitchen.Vec3{X: 30, Y: 230 - HandleEdgeOffset - HandleLength/2, Z: 60},
			edge:   kitchen.EdgeTop,
		},
		{
			name:   "offset wall defaults to bottom",
			mt:     kitchen.ModuleWall,
			face:   Face{Width: 60, Height: 72, Depth: 35},
			spec:   handleSpec(kitchen.PlacementOffset, kitchen.OrientationHorizontal, ""),
			center: kitchen.Vec3{X: 30, Y: HandleEdgeOffset, Z: 35},
			edge:   kitchen.EdgeBottom,
		},
		{
			name:   "offset on corner face",
			mt:     kitchen.ModuleCorner,
			face:   Face{X: 40, Width: 60, Height: 76, Depth: 60},
			spec:   handleSpec(kitchen.PlacementOffset, kitchen.OrientationVertical, kitchen.EdgeBottom),
			center: kitchen.Vec3{X: 70, Y: HandleEdgeOffset + HandleLength/2, Z: 60},
			edge:   kitchen.EdgeBottom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ResolveHandle("m", tt.mt, tt.face, tt.spec, c)
			if err != nil {
				t.Fatalf("ResolveHandle() error: %v", err)
			}
			if !near(g.Center.X, tt.center.X) || !near(g.Center.Y, tt.center.Y) || !near(g.Center.Z, tt.center.Z) {
				t.Errorf("center = %+v, want %+v", g.Center, tt.center)
			}
			if g.Edge != tt.edge {
				t.Errorf("edge = %q, want %q", g.Edge, tt.edge)
			}
			if g.Length != HandleLength || g.Projection != HandleProjection || g.Thickness != HandleThickness {
				t.Errorf("template = %+v", g)
			}
		})
	}
}

func TestResolveHandleTooCloseToEdge(t *testing.T) {
	tests := []struct {
		name string
		face Face
		spec *kitchen.HandleSpec
		min  float64
	}{
		{
			name: "horizontal on narrow face",
			face: Face{Width: 16, Height: 76, Depth: 60},
			spec: handleSpec(kitchen.PlacementCentered, kitchen.OrientationHorizontal, ""),
			min:  3,
		},
		{
			name: "vertical on narrow face",
			face: Face{Width: 5, Height: 76, Depth: 60},
			spec: handleSpec(kitchen.PlacementCentered, kitchen.OrientationVertical, ""),
			min:  3,
		},
		{
			name: "vertical on short face",
			face: Face{Width: 60, Height: 15, Depth: 60},
			spec: handleSpec(kitchen.PlacementCentered, kitchen.OrientationVertical, ""),
			min:  3,
		},
		{
			name: "offset closer than the bound",
			face: Face{Width: 60, Height: 76, Depth: 60},
			spec: handleSpec(kitchen.PlacementOffset, kitchen.OrientationHorizontal, kitchen.EdgeTop),
			min:  8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveHandle("m", kitchen.ModuleBase, tt.face, tt.spec, kitchen.HandleConstraints{MinDistanceFromEdge: tt.min})
			if !errors.Is(err, errors.ErrCodeHandleTooClose) {
				t.Errorf("ResolveHandle() error = %v, want HANDLE_TOO_CLOSE_TO_EDGE", err)
			}
		})
	}
}

func TestResolveHandleUnknownVariants(t *testing.T) {
	face := Face{Width: 60, Height: 76, Depth: 60}
	specs := []*kitchen.HandleSpec{
		handleSpec("knob", kitchen.OrientationHorizontal, ""),
		handleSpec(kitchen.PlacementCentered, "diagonal", ""),
		handleSpec(kitchen.PlacementOffset, kitchen.OrientationVertical, "left"),
	}
	for _, s := range specs {
		if _, err := ResolveHandle("m", kitchen.ModuleBase, face, s, kitchen.HandleConstraints{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("ResolveHandle(%+v) error = %v, want INVALID_CONFIG", s.Placement, err)
		}
	}
}

func TestHandleNode(t *testing.T) {
	bc := buildCtx(kitchen.ModuleBase, 60)
	bc.Spec.Handle = handleSpec(kitchen.PlacementCentered, kitchen.OrientationVertical, "")
	geo, err := BuildCarcass(bc)
	if err != nil {
		t.Fatal(err)
	}
	hs := childrenOf(geo, KindHandle)
	if len(hs) != 1 {
		t.Fatalf("got %d handles, want 1", len(hs))
	}
	h := hs[0]
	if h.ID != "m/handle" || h.Handle == nil || h.Materials[kitchen.RoleHandle] != "steel" {
		t.Errorf("handle node = %+v", h)
	}
	if h.Dimensions.Height != HandleLength || h.Dimensions.Width != HandleThickness {
		t.Errorf("vertical handle box = %+v", h.Dimensions)
	}
	if !near(h.Position.X+h.Dimensions.Width/2, h.Handle.Center.X) {
		t.Errorf("handle box not centered on handle: %+v", h)
	}
}
