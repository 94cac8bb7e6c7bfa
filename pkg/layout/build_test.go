package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
)

func TestBuildExample(t *testing.T) {
	cfg := kitchen.Example()
	scene, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	wantIDs := []string{"b1", "b2", "c1", "s1", "t1", "w1"}
	if len(scene.Modules) != len(wantIDs) {
		t.Fatalf("got %d modules, want %d", len(scene.Modules), len(wantIDs))
	}
	for i, m := range scene.Modules {
		if m.ID != wantIDs[i] || m.SpecID != wantIDs[i] {
			t.Errorf("module[%d] = %q, want %q", i, m.ID, wantIDs[i])
		}
		if m.Kind != KindModule {
			t.Errorf("module %q kind = %q", m.ID, m.Kind)
		}
		if d := m.Depth(); d > 3 {
			t.Errorf("module %q tree depth %d", m.ID, d)
		}
	}

	d := cfg.GlobalSettings.Dimensions
	positions := map[string]kitchen.Vec3{
		"b1": {X: 0, Y: d.PlinthHeight, Z: d.GapToWall},
		"b2": {X: 60, Y: d.PlinthHeight, Z: d.GapToWall},
		"c1": {X: 140, Y: d.PlinthHeight, Z: d.GapToWall},
		"s1": {X: 240 - d.GapToWall, Y: d.PlinthHeight, Z: 102},
		"t1": {X: 240 - d.GapToWall, Y: d.PlinthHeight, Z: 162},
		"w1": {X: 0, Y: d.OverallHeight - d.WallCabinetHeight - d.WallGap, Z: d.GapToWall},
	}
	for _, m := range scene.Modules {
		want := positions[m.ID]
		if !near(m.Position.X, want.X) || !near(m.Position.Y, want.Y) || !near(m.Position.Z, want.Z) {
			t.Errorf("%s position = %+v, want %+v", m.ID, m.Position, want)
		}
	}
	if r := scene.Modules[3].RotationY; !near(r, -math.Pi/2) {
		t.Errorf("side line rotation = %v, want -pi/2", r)
	}
	if r := scene.Modules[0].RotationY; r != 0 {
		t.Errorf("back line rotation = %v, want 0", r)
	}

	if len(scene.Lines) != 2 {
		t.Fatalf("got %d line reports", len(scene.Lines))
	}
	if back := scene.Lines[0]; back.Scale != 1 || back.Slack != 0 || back.Used != 240 {
		t.Errorf("back line report = %+v", back)
	}
	if side := scene.Lines[1]; side.Slack != 18 {
		t.Errorf("side line slack = %v, want 18", side.Slack)
	}

	c1 := scene.Modules[2]
	if c1.Carcass == nil || len(c1.Carcass.Legs) != 2 {
		t.Fatalf("corner carcass = %+v", c1.Carcass)
	}
	if c1.Materials[kitchen.RoleCarcass] != "oak-veneer" {
		t.Errorf("carcass material should fall back to facade, got %v", c1.Materials)
	}
	if _, ok := c1.Materials[kitchen.RoleHandle]; ok {
		t.Errorf("corner without handle got a handle material")
	}
}

func TestBuildDeterministic(t *testing.T) {
	cfg := kitchen.Example()
	cfg.GlobalSettings.Rules.GapBetweenModules = 1.5
	first, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := Build(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from the first", i)
		}
	}
}

func TestBuildDoesNotMutateConfig(t *testing.T) {
	cfg := kitchen.Example()
	cfg.LayoutLines[0].Length = 200
	before := cfg.Clone()
	if _, err := Build(cfg); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, cfg) {
		t.Error("Build() mutated its input")
	}
}

func TestBuildAutoFixScalesModules(t *testing.T) {
	cfg := kitchen.Example()
	cfg.LayoutLines[0].Length = 200 // 240 cm of modules

	scene, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	back := scene.Lines[0]
	if !back.AutoFixed || !near(back.Scale, 200.0/240.0) {
		t.Fatalf("back line report = %+v", back)
	}
	sum := 0.0
	for _, m := range scene.Modules[:3] {
		sum += m.Dimensions.Width
	}
	if math.Abs(sum-200) > ConservationTolerance*200 {
		t.Errorf("scaled widths sum to %v, want 200", sum)
	}
	// Hanging modules are outside line accounting.
	if w := scene.Modules[5].Dimensions.Width; w != 60 {
		t.Errorf("hanging module width = %v, want 60", w)
	}
}

func TestBuildHandleClearance(t *testing.T) {
	cfg := kitchen.Example()
	scene, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	clearance := cfg.GlobalConstraints.Handles.MinDistanceFromEdge
	handles := 0
	for i := range scene.Modules {
		m := &scene.Modules[i]
		for _, c := range m.Children {
			if c.Kind != KindHandle {
				continue
			}
			handles++
			h := c.Handle
			dist := math.Min(
				math.Min(h.Center.X, m.Dimensions.Width-h.Center.X),
				math.Min(h.Center.Y, m.Carcass.Size.Height-h.Center.Y),
			)
			if dist < clearance {
				t.Errorf("%s handle center %v cm from an edge, want >= %v", m.ID, dist, clearance)
			}
		}
	}
	if handles != 5 {
		t.Errorf("got %d handles, want 5", handles)
	}
}

func TestBuildUnlinedHangingModule(t *testing.T) {
	cfg := kitchen.Example()
	cfg.HangingModules[0].LineID = ""
	cfg.HangingModules[0].Positioning.Offset = kitchen.Vec3{X: 30, Y: 5, Z: 80}

	scene, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	w := scene.Modules[len(scene.Modules)-1]
	d := cfg.GlobalSettings.Dimensions
	want := kitchen.Vec3{X: 30, Y: d.OverallHeight - d.WallCabinetHeight - d.WallGap + 5, Z: 80}
	if w.Position != want || w.RotationY != 0 || w.LineID != "" {
		t.Errorf("unlined hanging module = %+v, want at %+v facing +X", w.Position, want)
	}
}

func TestBuildCeilingAnchor(t *testing.T) {
	cfg := kitchen.Example()
	cfg.HangingModules[0].Positioning = kitchen.Positioning{Anchor: kitchen.AnchorCeiling, Offset: kitchen.Vec3{Y: 10}}
	scene, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	w := scene.Modules[len(scene.Modules)-1]
	d := cfg.GlobalSettings.Dimensions
	if top := w.Position.Y + w.Dimensions.Height; top != d.OverallHeight-10 {
		t.Errorf("ceiling module top = %v, want %v", top, d.OverallHeight-10)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*kitchen.Config)
		code   errors.Code
	}{
		{"reject overflow", func(c *kitchen.Config) {
			c.GlobalSettings.Rules.MismatchPolicy = kitchen.PolicyReject
			c.LayoutLines[0].Length = 200
		}, errors.ErrCodeLineLengthMismatch},
		{"unknown type", func(c *kitchen.Config) {
			c.LayoutLines[1].Modules[0].Type = "island"
		}, errors.ErrCodeUnknownModuleType},
		{"narrow handle", func(c *kitchen.Config) {
			c.LayoutLines[0].Modules[0].Width = 14
		}, errors.ErrCodeHandleTooClose},
		{"dangling corner", func(c *kitchen.Config) {
			c.LayoutLines = c.LayoutLines[:1]
		}, errors.ErrCodeInvalidCorner},
		{"unknown hanging line", func(c *kitchen.Config) {
			c.HangingModules[0].LineID = "island"
		}, errors.ErrCodeInvalidConfig},
		{"zero direction", func(c *kitchen.Config) {
			c.LayoutLines[0].Direction = kitchen.Vec2{}
		}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := kitchen.Example()
			tt.mutate(&cfg)
			if _, err := Build(cfg); !errors.Is(err, tt.code) {
				t.Errorf("Build() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildReportsFirstFailingLine(t *testing.T) {
	cfg := kitchen.Example()
	cfg.LayoutLines[0].Modules[0].Type = "island"
	cfg.LayoutLines[1].Modules[0].Width = 14
	for i := 0; i < 10; i++ {
		if _, err := Build(cfg); !errors.Is(err, errors.ErrCodeUnknownModuleType) {
			t.Fatalf("Build() error = %v, want the first line's error", err)
		}
	}
}

func TestRotationY(t *testing.T) {
	tests := []struct {
		dir  kitchen.Vec2
		want float64
	}{
		{kitchen.Vec2{X: 1}, 0},
		{kitchen.Vec2{Z: 1}, -math.Pi / 2},
		{kitchen.Vec2{X: -1}, math.Pi},
		{kitchen.Vec2{Z: -1}, math.Pi / 2},
	}
	for _, tt := range tests {
		if got := RotationY(tt.dir); !near(got, tt.want) {
			t.Errorf("RotationY(%+v) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}
