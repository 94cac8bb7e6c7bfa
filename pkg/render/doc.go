// Package render turns synthesized kitchens into diagrams.
//
// The [tree] subpackage draws the module tree (kitchen, lines, modules and
// their generated parts) as a Graphviz diagram. This package holds the
// format conversion shared by diagram renderers: [ToPDF] and [ToPNG]
// convert SVG with the external rsvg-convert tool (from librsvg).
//
//	dot := tree.ToDOT(scene, tree.Options{})
//	svg, err := tree.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
package render
