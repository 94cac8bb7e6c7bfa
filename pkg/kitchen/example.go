package kitchen

// Example returns a small, valid two-line kitchen: a 240 cm run of base
// cabinets with a corner at its end, turning into a 138 cm run with a
// tall unit. It backs the CLI's "init" command and the package tests.
func Example() Config {
	return Config{
		KitchenID: "example",
		Name:      "L-shaped example",
		Style:     "modern",
		GlobalSettings: GlobalSettings{
			Dimensions: DefaultDimensions(),
			Rules: Rules{
				MismatchPolicy:    PolicyAutoFix,
				GapBetweenModules: 0,
			},
		},
		GlobalConstraints: GlobalConstraints{
			Modules: ModuleConstraints{MinWidth: 30, MaxWidth: 120},
			Handles: HandleConstraints{MinDistanceFromEdge: 3},
		},
		DefaultMaterials: map[string]string{
			RoleFacade:     "oak-veneer",
			RoleCountertop: "granite-black",
			RoleHandle:     "steel-brushed",
		},
		LayoutLines: []LayoutLine{
			{
				ID:        "back",
				Name:      "Back wall",
				Length:    240,
				Direction: Vec2{X: 1, Z: 0},
				Modules: []ModuleSpec{
					{ID: "b1", Type: ModuleBase, Width: 60, Positioning: Positioning{Anchor: AnchorFloor}, Handle: centeredHandle()},
					{ID: "b2", Type: ModuleBase, Width: 80, Positioning: Positioning{Anchor: AnchorFloor}, Handle: centeredHandle()},
					{ID: "c1", Type: ModuleCorner, Width: 100, Positioning: Positioning{Anchor: AnchorFloor}},
				},
			},
			{
				ID:        "side",
				Name:      "Side wall",
				Length:    138,
				Origin:    Vec2{X: 240, Z: 102},
				Direction: Vec2{X: 0, Z: 1},
				Modules: []ModuleSpec{
					{ID: "s1", Type: ModuleBase, Width: 60, Positioning: Positioning{Anchor: AnchorFloor}, Handle: centeredHandle()},
					{ID: "t1", Type: ModuleTall, Width: 60, Positioning: Positioning{Anchor: AnchorFloor}, Handle: &HandleSpec{
						Placement: HandlePlacementSpec{Type: PlacementOffset, Orientation: OrientationVertical},
					}},
				},
			},
		},
		HangingModules: []HangingModule{
			{
				ModuleSpec: ModuleSpec{ID: "w1", Type: ModuleWall, Width: 60, Positioning: Positioning{Anchor: AnchorWall}, Handle: &HandleSpec{
					Placement: HandlePlacementSpec{Type: PlacementCentered, Orientation: OrientationHorizontal},
				}},
				LineID: "back",
				At:     0,
			},
		},
	}
}

// DefaultDimensions returns common European kitchen dimensions.
func DefaultDimensions() Dimensions {
	return Dimensions{
		OverallHeight:       240,
		CountertopHeight:    90,
		CountertopDepth:     60,
		CountertopThickness: 4,
		WallCabinetHeight:   72,
		WallCabinetDepth:    35,
		WallGap:             20,
		GapToWall:           2,
		BaseCabinetHeight:   80,
		PlinthHeight:        10,
		PlinthDepth:         5,
	}
}

func centeredHandle() *HandleSpec {
	return &HandleSpec{Placement: HandlePlacementSpec{Type: PlacementCentered, Orientation: OrientationHorizontal}}
}
