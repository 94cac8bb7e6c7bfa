// Package kitchen defines the abstract kitchen description that the layout
// engine synthesizes into placed geometry.
//
// A [Config] names its layout lines, the modules placed along each line in
// order, the material choices, and the global dimension rules and
// constraint bounds. Configs are plain values: the engine never mutates
// one, and callers that want to edit a config work on a [Config.Clone].
//
// # Serialization
//
// Configs use the same camelCase field names in JSON, YAML and BSON:
//
//	{
//	  "kitchenId": "k1",
//	  "globalSettings": {"dimensions": {...}, "rules": {"mismatchPolicy": "auto_fix"}},
//	  "layoutLines": [{"id": "l1", "length": 360, "direction": {"x": 1, "z": 0},
//	                   "modules": [{"id": "m1", "type": "base", "width": 60,
//	                                "positioning": {"anchor": "floor"}}]}]
//	}
//
// Use [ReadConfigFile] and [WriteConfigFile] for file IO; the format follows
// the file extension (.json, .yaml, .yml).
//
// All lengths are centimetres.
package kitchen
