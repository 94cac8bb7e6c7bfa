package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
	"github.com/matzehuels/kitchenplan/pkg/render"
	"github.com/matzehuels/kitchenplan/pkg/render/tree"
)

// Diagram output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
	formatPDF = "pdf"
)

var treeFormats = []string{formatDOT, formatSVG, formatPNG, formatPDF}

type treeOpts struct {
	output  string
	formats string
	noCache bool
	scale   float64
	tree.Options
}

// treeCommand renders the synthesized module tree as a diagram.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{scale: 2}
	cmd := &cobra.Command{
		Use:   "tree [kitchen.json]",
		Short: "Draw the module tree of a kitchen as a diagram",
		Long: `Draw the module tree of a kitchen as a Graphviz diagram.

The tree groups modules under their layout lines and shows the generated
parts (plinths, countertops, doors, shelves and handles) of each module.
SVG is rendered in-process; PNG and PDF additionally need rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: <input>.tree)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", formatSVG, "comma-separated formats: dot, svg, png, pdf")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG zoom factor")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label modules with positions and materials")
	cmd.Flags().BoolVar(&opts.ModulesOnly, "modules-only", false, "omit generated parts")
	return cmd
}

func (c *CLI) runTree(ctx context.Context, input string, opts treeOpts) error {
	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	cfg, err := kitchen.ReadConfigFile(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, cached, err := runner.GenerateLayoutWithCacheInfo(ctx, cfg)
	if err != nil {
		printValidationError(err)
		return err
	}
	if opts.Title == "" {
		opts.Title = cfg.Name
		if opts.Title == "" {
			opts.Title = cfg.KitchenID
		}
	}
	dot := tree.ToDOT(&layout.Scene{Modules: res.Modules, Lines: res.Lines}, opts.Options)

	base := opts.output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input)) + ".tree"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()
	var written []string
	for _, f := range formats {
		data, err := renderTree(ctx, dot, f, opts.scale)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		path := base + "." + f
		if err := os.WriteFile(path, data, 0644); err != nil {
			spinner.StopWithError("Render failed")
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		written = append(written, path)
	}
	spinner.Stop()

	printSuccess("Diagram complete")
	for _, p := range written {
		printFile(p)
	}
	printStats(res.Stats.ModuleCount, res.Stats.NodeCount, res.Stats.LineCount, cached)
	return nil
}

func renderTree(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	if format == formatDOT {
		return []byte(dot), nil
	}
	svg, err := tree.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatPNG:
		return render.ToPNG(ctx, svg, scale)
	case formatPDF:
		return render.ToPDF(ctx, svg)
	}
	return svg, nil
}

// parseFormats splits and checks a comma-separated format list.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{formatSVG}, nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if !contains(treeFormats, f) {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"unknown format %q (must be one of: %s)", f, strings.Join(treeFormats, ", "))
		}
		if !contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
