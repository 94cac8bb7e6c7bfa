package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/kitchenplan/pkg/catalog"
	"github.com/matzehuels/kitchenplan/pkg/kitchen"
	"github.com/matzehuels/kitchenplan/pkg/layout"
	"github.com/matzehuels/kitchenplan/pkg/pipeline"
)

func exampleModules(t *testing.T) []layout.Module {
	t.Helper()
	res, err := pipeline.Generate(kitchen.Example(), catalog.Default())
	if err != nil {
		t.Fatal(err)
	}
	return res.Modules
}

func press(m ModuleTreeModel, keys ...string) ModuleTreeModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(ModuleTreeModel)
	}
	return m
}

func TestModuleTreeModelNavigation(t *testing.T) {
	modules := exampleModules(t)
	m := NewModuleTreeModel("example", modules)

	if len(m.rows) != len(modules) {
		t.Fatalf("collapsed rows = %d, want %d", len(m.rows), len(modules))
	}
	if m.Selected().ID != "b1" {
		t.Errorf("initial selection = %s", m.Selected().ID)
	}

	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}
	m = press(m, "down", "j")
	if m.Selected().ID != "c1" {
		t.Errorf("after two downs selection = %s, want c1", m.Selected().ID)
	}

	m = press(m, "enter")
	want := len(modules) - 1 + modules[2].Count()
	if len(m.rows) != want {
		t.Errorf("expanded rows = %d, want %d", len(m.rows), want)
	}
	if m.Selected().ID != "c1" {
		t.Errorf("selection after expand = %s", m.Selected().ID)
	}
	m = press(m, "down")
	if sel := m.Selected(); !strings.HasPrefix(sel.ID, "c1/") {
		t.Errorf("first child = %s", sel.ID)
	}

	m = press(m, "enter")
	if len(m.rows) != len(modules) || m.Selected().ID != "c1" {
		t.Errorf("collapse from a child: rows %d, selected %s", len(m.rows), m.Selected().ID)
	}
}

func TestModuleTreeModelView(t *testing.T) {
	m := press(NewModuleTreeModel("example", exampleModules(t)), "down", "down")
	view := m.View()
	for _, want := range []string{"Kitchen example", "b1", "w1", "corner", "legs"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	empty := NewModuleTreeModel("empty", nil)
	if empty.Selected() != nil {
		t.Error("empty tree has a selection")
	}
	if !strings.Contains(empty.View(), "no modules") {
		t.Error("empty view lacks placeholder")
	}
	press(empty, "enter", "down")
}

func TestModuleTreeModelQuit(t *testing.T) {
	m := NewModuleTreeModel("example", nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
