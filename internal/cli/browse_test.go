package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/grapplegraph/pkg/catalog"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
)

func fixtureModel(t *testing.T) browseModel {
	t.Helper()
	c, err := catalog.Load(fixturePath)
	if err != nil {
		t.Fatal(err)
	}
	g, _, err := movegraph.Build(context.Background(), c, movegraph.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return newBrowseModel(g)
}

func press(m browseModel, keys ...tea.KeyMsg) (browseModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(browseModel)
	}
	return m, cmd
}

var (
	keyDown      = tea.KeyMsg{Type: tea.KeyDown}
	keyUp        = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter     = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab       = tea.KeyMsg{Type: tea.KeyTab}
	keyBackspace = tea.KeyMsg{Type: tea.KeyBackspace}
)

func TestBrowseNavigation(t *testing.T) {
	m := fixtureModel(t)

	m, _ = press(m, keyUp)
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want clamp at 0", m.cursor)
	}
	m, _ = press(m, keyDown)
	if m.cursor != 1 || m.focus != paneNodes {
		t.Fatalf("cursor = %d focus = %d", m.cursor, m.focus)
	}

	m, _ = press(m, keyEnter)
	if m.focus != paneEdges {
		t.Fatal("enter on a node with transitions should focus them")
	}
	m, _ = press(m, keyEnter)
	if m.cursor != 3 || len(m.history) != 1 || m.history[0] != 1 {
		t.Fatalf("after follow: cursor = %d history = %v", m.cursor, m.history)
	}
	if !strings.Contains(m.View(), "path 1") {
		t.Error("view should show the followed path")
	}

	m, _ = press(m, keyBackspace)
	if m.cursor != 1 || len(m.history) != 0 {
		t.Fatalf("after back: cursor = %d history = %v", m.cursor, m.history)
	}

	m, _ = press(m, keyTab)
	if m.focus != paneNodes {
		t.Error("tab should return to the node list")
	}
	m, _ = press(m, keyDown, keyDown, keyDown, keyDown)
	if m.cursor != len(m.nodes)-1 {
		t.Errorf("cursor = %d, want clamp at %d", m.cursor, len(m.nodes)-1)
	}
}

func TestBrowseTerminal(t *testing.T) {
	m := fixtureModel(t)
	m, _ = press(m, keyDown, keyDown)
	if !m.terminal[m.nodes[m.cursor].ID] {
		t.Fatalf("node %d should be terminal", m.cursor)
	}

	m, _ = press(m, keyEnter)
	if m.focus != paneNodes {
		t.Error("enter on a terminal node should keep the node list focused")
	}
	m, _ = press(m, keyTab)
	if m.focus != paneNodes {
		t.Error("tab without transitions should keep the node list focused")
	}

	view := m.View()
	for _, want := range []string{"Move Graph", "4 nodes", "Transitions from to honey", "none (terminal position)", "[3/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowseView(t *testing.T) {
	m := fixtureModel(t)
	view := m.View()
	for _, want := range []string{"completed imanari roll", "back step pass", "to honey", "end"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBrowseWindowSize(t *testing.T) {
	m := fixtureModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 16})
	m = next.(browseModel)
	if m.height != 5 {
		t.Errorf("height = %d, want minimum 5", m.height)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if h := next.(browseModel).height; h != 26 {
		t.Errorf("height = %d, want 26", h)
	}
}

func TestBrowseScroll(t *testing.T) {
	m := fixtureModel(t)
	m.height = 2
	m, _ = press(m, keyDown, keyDown, keyDown)
	if m.offset != 2 {
		t.Errorf("offset = %d, want 2", m.offset)
	}
	if view := m.View(); strings.Contains(view, "completed imanari roll") {
		t.Error("scrolled-out node should not be rendered")
	}
	m, _ = press(m, keyUp, keyUp, keyUp)
	if m.offset != 0 {
		t.Errorf("offset = %d, want 0", m.offset)
	}
}

func TestBrowseQuit(t *testing.T) {
	m := fixtureModel(t)
	for _, k := range []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("q")}, {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := press(m, k)
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command is not quit", k)
		}
	}
}
