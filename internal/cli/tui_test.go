package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/graphweave/pkg/detect"
)

func testPairs() []detect.ColumnPair {
	return []detect.ColumnPair{
		{Source: "src", Target: "dst", Score: 12},
		{Source: "src", Target: "via", Score: 4},
		{Source: "dst", Target: "via", Score: 1},
	}
}

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPairListNavigation(t *testing.T) {
	m := NewPairListModel(testPairs())

	next, _ := m.Update(key("j"))
	m = next.(PairListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after j = %d, want 1", m.Cursor)
	}

	next, _ = m.Update(key("k"))
	m = next.(PairListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor after k = %d, want 0", m.Cursor)
	}

	// Does not move past the ends.
	next, _ = m.Update(key("k"))
	m = next.(PairListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor underflowed to %d", m.Cursor)
	}
}

func TestPairListSelect(t *testing.T) {
	m := NewPairListModel(testPairs())

	next, _ := m.Update(key("j"))
	m = next.(PairListModel)
	next, cmd := m.Update(key("enter"))
	m = next.(PairListModel)

	if m.Selected == nil {
		t.Fatal("enter did not select a pair")
	}
	if m.Selected.Target != "via" {
		t.Errorf("selected = %+v, want the second pair", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestPairListView(t *testing.T) {
	m := NewPairListModel(testPairs())
	view := m.View()

	if !strings.Contains(view, "src") || !strings.Contains(view, "12 shared") {
		t.Errorf("view missing pair content:\n%s", view)
	}
}

func TestLoadCommandFor(t *testing.T) {
	headers := []string{"id", "src", "dst"}
	pair := detect.ColumnPair{Source: "src", Target: "dst", Score: 3}

	got := loadCommandFor("edges.csv", headers, pair)
	want := "graphweave load edges.csv --source 1 --target 2"
	if got != want {
		t.Errorf("loadCommandFor = %q, want %q", got, want)
	}
}
