package tools

// Definition describes one tool for an agent layer.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Definitions lists every tool Call accepts, in a stable order.
func Definitions() []Definition {
	config := map[string]any{
		"type":        "object",
		"description": "Kitchen configuration: globalSettings, globalConstraints, defaultMaterials, layoutLines and hangingModules.",
	}
	return []Definition{
		{
			Name:        GetMaterialLibrary,
			Description: "List the materials that configs may reference, with their roles and visual properties.",
			Parameters:  object(nil),
		},
		{
			Name:        GetModuleLibrary,
			Description: "List the module types (base, wall, tall, corner) with default widths and generated parts.",
			Parameters:  object(nil),
		},
		{
			Name:        ValidateKitchenConfig,
			Description: "Check a kitchen configuration and report every error and warning at once.",
			Parameters:  object(map[string]any{"config": config}, "config"),
		},
		{
			Name:        GenerateLayout,
			Description: "Validate a kitchen configuration and synthesize the placed, dimensioned module tree.",
			Parameters:  object(map[string]any{"config": config}, "config"),
		},
		{
			Name:        SaveKitchenConfig,
			Description: "Persist a configuration and its generated modules; returns a configId.",
			Parameters: object(map[string]any{
				"config":  config,
				"modules": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
			}, "config"),
		},
		{
			Name:        GetKitchenConfig,
			Description: "Fetch a saved configuration, its modules and the save timestamp by configId.",
			Parameters: object(map[string]any{
				"configId": map[string]any{
					"type":    "string",
					"pattern": "^kitchen-[0-9]+-[0-9a-z]{9}$",
				},
			}, "configId"),
		},
	}
}

func object(props map[string]any, required ...string) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
