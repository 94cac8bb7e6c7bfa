package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchenplan/pkg/errors"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/tools"
	"github.com/matzehuels/kitchenplan/pkg/validate"
)

// initCommand writes a starter kitchen config.
func (c *CLI) initCommand() *cobra.Command {
	var (
		force    bool
		settings bool
	)
	cmd := &cobra.Command{
		Use:   "init [kitchen.json|kitchen.yaml]",
		Short: "Write an example kitchen config",
		Long: `Write the example kitchen (an L-shaped run with a corner unit, a tall
cabinet and one wall cabinet) to a JSON or YAML file.

With --with-settings the default settings file is written as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "kitchen.json"
			if len(args) == 1 {
				path = args[0]
			}
			if err := writeNew(path, force, func() error {
				return kitchen.WriteConfigFile(kitchen.Example(), path)
			}); err != nil {
				return err
			}
			printSuccess("Kitchen config written")
			printFile(path)

			if settings {
				if err := c.writeSettings(force); err != nil {
					return err
				}
			}
			printNewline()
			printNextStep("Generate", appName+" layout "+path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")
	cmd.Flags().BoolVar(&settings, "with-settings", false, "also write the default settings file")
	return cmd
}

// validateCommand checks a config without generating geometry.
func (c *CLI) validateCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate [kitchen.json]",
		Short: "Validate a kitchen config",
		Long: `Validate a kitchen config against the dimension rules, the catalogs and the
placement constraints. Every finding is reported; the command fails when the
config has errors. Warnings (such as auto-fixed line lengths) do not fail it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := kitchen.ReadConfigFile(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			res := tools.New(runner).ValidateKitchenConfig(ctx, cfg)
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else {
				printFindings(res)
			}
			if !res.Valid {
				return errors.New(errors.ErrCodeInvalidConfig, "%s: %d validation error(s)", args[0], len(res.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the validation result as JSON")
	return cmd
}

// layoutCommand creates the layout command for synthesizing module trees.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "layout [kitchen.json]",
		Short: "Generate the 3D module layout of a kitchen config",
		Long: `Generate the 3D module layout of a kitchen config.

The config is validated first; invalid configs produce no geometry. The output
is a JSON document with the positioned module tree, per-line fit reports and
any warnings. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := kitchen.ReadConfigFile(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Generating layout...")
			spinner.Start()
			res, cached, err := runner.GenerateLayoutWithCacheInfo(ctx, cfg)
			if err != nil {
				spinner.StopWithError("Layout failed")
				printValidationError(err)
				return err
			}
			spinner.Stop()
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".layout.json"
			}
			if err := writeJSONFile(output, res); err != nil {
				return err
			}

			printSuccess("Layout complete")
			printFile(output)
			printStats(res.Stats.ModuleCount, res.Stats.NodeCount, res.Stats.LineCount, cached)
			for _, w := range res.Warnings {
				printWarning("%s", w.Message)
			}
			printNewline()
			printNextStep("Diagram", appName+" tree "+args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// saveCommand generates a layout and persists it with its config.
func (c *CLI) saveCommand() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "save [kitchen.json]",
		Short: "Generate and store a kitchen config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := kitchen.ReadConfigFile(args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			tb := tools.New(runner)
			res, err := tb.GenerateLayout(ctx, cfg)
			if err != nil {
				printValidationError(err)
				return err
			}
			saved, err := tb.SaveKitchenConfig(ctx, cfg, res.Modules)
			if err != nil {
				return err
			}
			printSuccess("Saved %s", StyleHighlight.Render(cfg.KitchenID))
			printKeyValue("Config ID", saved.ConfigID)
			printNewline()
			printNextStep("Retrieve", appName+" get "+saved.ConfigID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// getCommand prints or writes a stored configuration.
func (c *CLI) getCommand() *cobra.Command {
	var (
		output     string
		configOnly bool
	)
	cmd := &cobra.Command{
		Use:   "get [config-id]",
		Short: "Fetch a stored kitchen config",
		Long: `Fetch a stored kitchen config by the id returned from save.

Without --config-only the output carries the config, its stored modules and
the save timestamp (unix milliseconds). With --config-only just the kitchen
config is written, in the format implied by the -o extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			stored, err := tools.New(runner).GetKitchenConfig(ctx, args[0])
			if err != nil {
				return err
			}
			switch {
			case configOnly && output != "" && output != "-":
				return kitchen.WriteConfigFile(stored.Config, output)
			case configOnly:
				return kitchen.WriteConfig(stored.Config, cmd.OutOrStdout(), kitchen.FormatJSON)
			case output != "" && output != "-":
				return writeJSONFile(output, stored)
			}
			return writeJSON(cmd.OutOrStdout(), stored)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&configOnly, "config-only", false, "write only the kitchen config")
	return cmd
}

// listCommand shows stored configurations, newest first.
func (c *CLI) listCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored kitchen configs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			recs, err := runner.List(ctx, limit)
			if err != nil {
				return err
			}
			if asJSON {
				out := make([]tools.StoredConfig, len(recs))
				for i, r := range recs {
					out[i] = tools.StoredConfig{ConfigID: r.ID, Config: r.Config, Modules: r.Modules, Timestamp: r.Timestamp.UnixMilli()}
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if len(recs) == 0 {
				printInfo("No stored kitchen configs")
				return nil
			}

			rows := make([][]string, len(recs))
			for i, r := range recs {
				rows[i] = []string{r.ID, r.Config.KitchenID, fmt.Sprint(len(r.Modules)), formatRelativeTime(r.Timestamp)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), newTable("Config ID", "Kitchen", "Modules", "Saved").Rows(rows...).Render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of configs (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// printFindings renders a validation result.
func printFindings(res validate.Result) {
	if res.Valid {
		printSuccess("Config is valid")
	} else {
		printError("Config has %d error(s)", len(res.Errors))
	}
	for _, f := range res.Errors {
		printDetail("%s", f.String())
	}
	for _, f := range res.Warnings {
		printWarning("%s", f.String())
	}
}

// printValidationError lists findings carried by an INVALID_CONFIG error.
func printValidationError(err error) {
	var failure *validate.Failure
	if !stderrors.As(err, &failure) {
		return
	}
	for _, f := range failure.Result.Errors {
		printDetail("%s", f.String())
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONFile writes v to path, or to stdout when path is "-".
func writeJSONFile(path string, v any) error {
	if path == "-" {
		return writeJSON(os.Stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := writeJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeNew runs write unless path exists and force is unset.
func writeNew(path string, force bool, write func() error) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
	}
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return write()
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create directory %s", dir)
	}
	return nil
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
