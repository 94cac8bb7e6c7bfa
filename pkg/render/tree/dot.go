// Package tree renders a synthesized kitchen as a Graphviz tree diagram.
//
// The root node is the kitchen; below it sit the layout lines with their
// modules in placement order, then the hanging modules, and below each
// module its generated parts. Rendering to SVG happens in-process with
// [github.com/goccy/go-graphviz].
package tree

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
)

// Options configures tree rendering.
type Options struct {
	// Title labels the root node. Defaults to "kitchen".
	Title string
	// Detailed adds positions and materials to module labels.
	Detailed bool
	// ModulesOnly omits generated parts (plinths, doors, shelves, ...).
	ModulesOnly bool
}

// fill colours by node kind.
var fills = map[layout.Kind]string{
	layout.KindModule:     "white",
	layout.KindPlinth:     "gray85",
	layout.KindCountertop: "burlywood",
	layout.KindDoor:       "lightblue",
	layout.KindShelf:      "honeydew",
	layout.KindHandle:     "lightgoldenrod",
}

// ToDOT converts a scene to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(scene *layout.Scene, opts Options) string {
	title := opts.Title
	if title == "" {
		title = "kitchen"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  %q [label=%q, shape=house, fillcolor=lightgrey];\n", "kitchen", title)

	// Lines in scene order; hanging modules hang from the root.
	seen := map[string]bool{}
	for _, r := range scene.Lines {
		if seen[r.LineID] {
			continue
		}
		seen[r.LineID] = true
		label := fmt.Sprintf("line %s\nused %g / slack %g", r.LineID, round(r.Used), round(r.Slack))
		if r.AutoFixed {
			label += fmt.Sprintf("\nscaled %.4f", r.Scale)
		}
		fmt.Fprintf(&buf, "  %q [label=%q, shape=folder, fillcolor=whitesmoke];\n", lineNode(r.LineID), label)
		fmt.Fprintf(&buf, "  %q -> %q;\n", "kitchen", lineNode(r.LineID))
	}

	for i := range scene.Modules {
		m := &scene.Modules[i]
		parent := "kitchen"
		if m.LineID != "" && seen[m.LineID] {
			parent = lineNode(m.LineID)
		}
		m.Walk(func(n *layout.Module, depth int) bool {
			if depth > 0 && opts.ModulesOnly {
				return false
			}
			fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, depth, opts.Detailed), ", "))
			return true
		})
		fmt.Fprintf(&buf, "  %q -> %q;\n", parent, m.ID)
		if !opts.ModulesOnly {
			writeEdges(&buf, m)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeEdges(buf *bytes.Buffer, m *layout.Module) {
	for i := range m.Children {
		c := &m.Children[i]
		fmt.Fprintf(buf, "  %q -> %q;\n", m.ID, c.ID)
		writeEdges(buf, c)
	}
}

func lineNode(id string) string { return "line:" + id }

func fmtLabel(n *layout.Module, depth int, detailed bool) string {
	d := n.Dimensions
	size := fmt.Sprintf("%g×%g×%g", round(d.Width), round(d.Height), round(d.Depth))
	if depth > 0 {
		return string(n.Kind) + "\n" + size
	}

	label := n.ID + " (" + string(n.Type) + ")\n" + size
	if !detailed {
		return label
	}
	p := n.Position
	parts := []string{fmt.Sprintf("at %g, %g, %g", round(p.X), round(p.Y), round(p.Z))}
	for _, role := range slices.Sorted(maps.Keys(n.Materials)) {
		parts = append(parts, fmt.Sprintf("%s: %s", role, n.Materials[role]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *layout.Module, depth int, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, depth, detailed))}
	if fill, ok := fills[n.Kind]; ok && fill != "white" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if depth > 0 {
		attrs = append(attrs, "fontsize=11")
	}
	if n.Type == kitchen.ModuleCorner {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// round trims float noise for labels.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// unitless one so the diagram scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
