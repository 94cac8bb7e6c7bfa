package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// inspectCommand opens the interactive module browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "inspect [kitchen.json]",
		Short: "Browse the module tree of a kitchen interactively",
		Long: `Browse the module tree of a kitchen interactively.

The kitchen is read from a config file and generated, or loaded from the
store with --id.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if (id == "") == (len(args) == 0) {
				return fmt.Errorf("pass either a config file or --id")
			}
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			var (
				title   string
				modules []layout.Module
			)
			if id != "" {
				rec, err := runner.Get(ctx, id)
				if err != nil {
					return err
				}
				title, modules = rec.Config.KitchenID, rec.Modules
			} else {
				cfg, err := kitchen.ReadConfigFile(args[0])
				if err != nil {
					return err
				}
				res, err := runner.GenerateLayout(ctx, cfg)
				if err != nil {
					printValidationError(err)
					return err
				}
				title, modules = cfg.KitchenID, res.Modules
			}

			_, err = tea.NewProgram(NewModuleTreeModel(title, modules), tea.WithContext(ctx)).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "inspect a stored config instead of a file")
	return cmd
}

// =============================================================================
// ModuleTreeModel - Interactive module browser
// =============================================================================

// treeRow is one visible line of the browser.
type treeRow struct {
	node  *layout.Module
	depth int
	top   int // index of the owning top-level module
}

// ModuleTreeModel is the bubbletea model for browsing a module tree.
// Top-level modules start collapsed; enter or space toggles one.
type ModuleTreeModel struct {
	Title    string
	Modules  []layout.Module
	Cursor   int
	Offset   int
	Height   int
	Expanded map[int]bool

	rows []treeRow
}

// NewModuleTreeModel creates a browser over modules.
func NewModuleTreeModel(title string, modules []layout.Module) ModuleTreeModel {
	m := ModuleTreeModel{
		Title:    title,
		Modules:  modules,
		Height:   15,
		Expanded: make(map[int]bool),
	}
	m.rows = m.buildRows()
	return m
}

func (m ModuleTreeModel) buildRows() []treeRow {
	var rows []treeRow
	for i := range m.Modules {
		if !m.Expanded[i] {
			rows = append(rows, treeRow{node: &m.Modules[i], top: i})
			continue
		}
		top := i
		m.Modules[i].Walk(func(n *layout.Module, depth int) bool {
			rows = append(rows, treeRow{node: n, depth: depth, top: top})
			return true
		})
	}
	return rows
}

// Selected returns the node under the cursor, or nil for an empty tree.
func (m ModuleTreeModel) Selected() *layout.Module {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.Cursor].node
}

func (m ModuleTreeModel) Init() tea.Cmd {
	return nil
}

func (m ModuleTreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ", "right", "left":
			if len(m.rows) == 0 {
				return m, nil
			}
			top := m.rows[m.Cursor].top
			expand := !m.Expanded[top]
			switch msg.String() {
			case "right":
				expand = true
			case "left":
				expand = false
			}
			m.Expanded = copyExpanded(m.Expanded)
			m.Expanded[top] = expand
			m.rows = m.buildRows()
			m.Cursor = m.rowOf(top)
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// rowOf returns the row index of top-level module top.
func (m ModuleTreeModel) rowOf(top int) int {
	for i, r := range m.rows {
		if r.top == top && r.depth == 0 {
			return i
		}
	}
	return 0
}

func copyExpanded(in map[int]bool) map[int]bool {
	out := make(map[int]bool, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m ModuleTreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Kitchen " + m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand/collapse  q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  no modules"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.rows) {
		end = len(m.rows)
	}
	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		list.WriteString(m.rowLine(i))
		list.WriteString("\n")
	}

	detail := detailBoxStyle.Render(describeNode(m.rows[m.Cursor].node))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", detail))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	return b.String()
}

func (m ModuleTreeModel) rowLine(i int) string {
	r := m.rows[i]
	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	marker := "  "
	if r.depth == 0 && len(r.node.Children) > 0 {
		marker = "+ "
		if m.Expanded[r.top] {
			marker = "- "
		}
	}
	label := r.node.ID
	if r.depth == 0 && r.node.Type != "" {
		label += " " + listDimStyle.Render(string(r.node.Type))
	}
	line := cursor + strings.Repeat("  ", r.depth) + marker + label

	switch {
	case i == m.Cursor:
		return listSelectedStyle.Render(line)
	case r.depth > 0:
		return listDimStyle.Render(line)
	}
	return listNormalStyle.Render(line)
}

// describeNode formats the properties of one node for the detail pane.
func describeNode(n *layout.Module) string {
	var lines []string
	add := func(k, v string) {
		lines = append(lines, StyleDim.Render(fmt.Sprintf("%-10s", k))+" "+StyleValue.Render(v))
	}
	add("id", n.ID)
	add("kind", string(n.Kind))
	if n.Type != "" {
		add("type", string(n.Type))
	}
	if n.LineID != "" {
		add("line", n.LineID)
	}
	add("position", fmt.Sprintf("%g, %g, %g", n.Position.X, n.Position.Y, n.Position.Z))
	if n.RotationY != 0 {
		add("rotation", fmt.Sprintf("%.4f rad", n.RotationY))
	}
	add("size", fmt.Sprintf("%g × %g × %g", n.Dimensions.Width, n.Dimensions.Height, n.Dimensions.Depth))
	if n.Carcass != nil && len(n.Carcass.Legs) > 0 {
		add("legs", fmt.Sprint(len(n.Carcass.Legs)))
	}
	if n.Handle != nil {
		add("handle", fmt.Sprintf("%s %s, %g long", n.Handle.Placement, n.Handle.Orientation, n.Handle.Length))
	}
	roles := make([]string, 0, len(n.Materials))
	for role := range n.Materials {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		add(role, n.Materials[role])
	}
	if len(n.Children) > 0 {
		add("parts", fmt.Sprint(len(n.Children)))
	}
	return strings.Join(lines, "\n")
}
