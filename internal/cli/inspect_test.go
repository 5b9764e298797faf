package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yunchaoli/cablerig/pkg/rig"
	"github.com/yunchaoli/cablerig/pkg/scene"
)

func testBatch(t *testing.T) *scene.Batch {
	t.Helper()
	cfg := rig.Config{
		NumAssemblies:  3,
		AssemblyLength: 0.5,
		PayloadMass:    10,
	}
	b, err := scene.Build(context.Background(), &cfg, rig.Stage{})
	if err != nil {
		t.Fatalf("scene.Build() error: %v", err)
	}
	return b
}

func TestAssemblyListNavigation(t *testing.T) {
	m := NewAssemblyListModel(testBatch(t))

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}

	next, _ := m.Update(down)
	m = next.(AssemblyListModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d after down, want 1", m.Cursor)
	}

	next, _ = m.Update(up)
	m = next.(AssemblyListModel)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after up, want 0", m.Cursor)
	}

	// Up at the top stays in place
	next, _ = m.Update(up)
	m = next.(AssemblyListModel)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, should not go negative", m.Cursor)
	}
}

func TestAssemblyListSelect(t *testing.T) {
	m := NewAssemblyListModel(testBatch(t))

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	next, _ := m.Update(down)
	m = next.(AssemblyListModel)

	enter := tea.KeyMsg{Type: tea.KeyEnter}
	next, cmd := m.Update(enter)
	m = next.(AssemblyListModel)

	if m.Selected == nil || *m.Selected != 1 {
		t.Fatalf("Selected = %v, want 1", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestAssemblyListQuit(t *testing.T) {
	m := NewAssemblyListModel(testBatch(t))

	quit := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
	next, cmd := m.Update(quit)
	m = next.(AssemblyListModel)

	if m.Selected != nil {
		t.Error("quit should not select an assembly")
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestAssemblyListView(t *testing.T) {
	m := NewAssemblyListModel(testBatch(t))
	view := m.View()

	if !strings.Contains(view, "Select Assembly") {
		t.Error("view should contain the title")
	}
	if !strings.Contains(view, "assembly 0") {
		t.Errorf("view should list assemblies, got:\n%s", view)
	}
}

func TestAssemblyTable(t *testing.T) {
	b := testBatch(t)
	out := assemblyTable(b)

	for _, want := range []string{"ANCHOR", "LINKS", "box"} {
		if !strings.Contains(out, want) {
			t.Errorf("assemblyTable() missing %q in:\n%s", want, out)
		}
	}
}

func TestAssemblyDetail(t *testing.T) {
	b := testBatch(t)
	out := assemblyDetail(b, 0)

	for _, want := range []string{"Assembly 0", "chain", "payload", "structure", "capsule"} {
		if !strings.Contains(out, want) {
			t.Errorf("assemblyDetail() missing %q in:\n%s", want, out)
		}
	}
}

func TestDegrees(t *testing.T) {
	if got := degrees(0); got != 0 {
		t.Errorf("degrees(0) = %v", got)
	}
	if got := degrees(3.141592653589793); got < 179.9 || got > 180.1 {
		t.Errorf("degrees(pi) = %v, want 180", got)
	}
}
