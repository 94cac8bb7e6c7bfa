package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchenplan/pkg/tools"
)

// materialsCommand lists the material library.
func (c *CLI) materialsCommand() *cobra.Command {
	var (
		asJSON bool
		role   string
	)
	cmd := &cobra.Command{
		Use:   "materials",
		Short: "List the material library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(s.Catalog)
			if err != nil {
				return err
			}

			lib := tools.MaterialLibrary{}
			for _, m := range cat.Materials() {
				if role == "" || m.HasRole(role) {
					lib.Materials = append(lib.Materials, m)
				}
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), lib)
			}

			rows := make([][]string, len(lib.Materials))
			for i, m := range lib.Materials {
				rows[i] = []string{m.ID, m.Name, m.Category, strings.Join(m.Roles, ", "), m.Color}
			}
			fmt.Fprintln(cmd.OutOrStdout(), newTable("ID", "Name", "Category", "Roles", "Color").Rows(rows...).Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the library as JSON")
	cmd.Flags().StringVar(&role, "role", "", "only materials suited for this role (carcass, facade, countertop, handle)")
	return cmd
}

// modulesCommand lists the module-type library.
func (c *CLI) modulesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the module-type library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.settings()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(s.Catalog)
			if err != nil {
				return err
			}

			lib := tools.ModuleLibrary{Modules: cat.Modules()}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), lib)
			}

			rows := make([][]string, len(lib.Modules))
			for i, m := range lib.Modules {
				widths := make([]string, len(m.Widths))
				for j, w := range m.Widths {
					widths[j] = fmt.Sprint(w)
				}
				rows[i] = []string{string(m.Type), m.Name, string(m.Anchor), strings.Join(widths, " "), strings.Join(m.Children, ", ")}
			}
			fmt.Fprintln(cmd.OutOrStdout(), newTable("Type", "Name", "Anchor", "Widths (cm)", "Parts").Rows(rows...).Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the library as JSON")
	return cmd
}
