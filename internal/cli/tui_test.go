package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/jobtimeline/pkg/graph"
)

// twoLaneLayout has "extract" and "report" in lane 0 and "load" in lane 1.
func twoLaneLayout() graph.Layout {
	return graph.Layout{
		VizType: graph.VizTypeTimeline,
		Title:   "etl",
		Start:   1000,
		End:     4000,
		MaxLane: 1,
		Nodes: []graph.Node{
			{ID: "report", SubmitTime: 3000, ElapsedTime: 1000, Lane: 0, X: 300, Width: 100},
			{ID: "extract", SubmitTime: 1000, ElapsedTime: 1000, Finished: true, Lane: 0, X: 0, Width: 100},
			{ID: "load", SubmitTime: 1500, ElapsedTime: 1000, Lane: 1, X: 50, Width: 100},
		},
		Edges: []graph.Edge{
			{From: "extract", To: "load", Finished: true},
			{From: "load", To: "report"},
		},
		Stubs: []graph.Stub{{Node: "report", Kind: graph.StubSource}},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m LaneModel, keys ...string) LaneModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(LaneModel)
	}
	return m
}

func TestLaneIndex(t *testing.T) {
	idx := newLaneIndex(twoLaneLayout())

	if len(idx.lanes) != 2 {
		t.Fatalf("lanes = %d, want 2", len(idx.lanes))
	}
	if idx.lanes[0][0].ID != "extract" || idx.lanes[0][1].ID != "report" {
		t.Errorf("lane 0 not ordered by x: %s, %s", idx.lanes[0][0].ID, idx.lanes[0][1].ID)
	}
	if got := idx.preds["report"]; len(got) != 1 || got[0] != "load" {
		t.Errorf("preds[report] = %v, want [load]", got)
	}
	if got := idx.succs["extract"]; len(got) != 1 || got[0] != "load" {
		t.Errorf("succs[extract] = %v, want [load]", got)
	}

	start, end := idx.busy(0)
	if start != 1000 || end != 4000 {
		t.Errorf("busy(0) = %d..%d, want 1000..4000", start, end)
	}
}

func TestLaneModelNavigation(t *testing.T) {
	m := NewLaneModel(twoLaneLayout())

	if n, ok := m.Selected(); !ok || n.ID != "extract" {
		t.Fatalf("initial selection = %v, want extract", n.ID)
	}

	tests := []struct {
		keys []string
		want string
	}{
		{[]string{"right"}, "report"},
		{[]string{"l", "l", "l"}, "report"},
		{[]string{"right", "down"}, "load"},
		{[]string{"j", "j", "k"}, "extract"},
		{[]string{"down", "up", "h"}, "extract"},
	}
	for _, tt := range tests {
		got, ok := press(m, tt.keys...).Selected()
		if !ok || got.ID != tt.want {
			t.Errorf("keys %v selected %q, want %q", tt.keys, got.ID, tt.want)
		}
	}
}

func TestLaneModelQuit(t *testing.T) {
	m := NewLaneModel(twoLaneLayout())
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestLaneModelView(t *testing.T) {
	view := press(NewLaneModel(twoLaneLayout()), "right").View()
	for _, want := range []string{"etl", "extract", "load", "report", "running", "Dangling", "source"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestLaneTable(t *testing.T) {
	out := laneTable(twoLaneLayout())
	for _, want := range []string{"Lane", "extract, report", "load"} {
		if !strings.Contains(out, want) {
			t.Errorf("lane table should contain %q:\n%s", want, out)
		}
	}
}

func TestLaneModelEmptyLayout(t *testing.T) {
	m := NewLaneModel(graph.Layout{VizType: graph.VizTypeTimeline})
	if _, ok := m.Selected(); ok {
		t.Error("empty layout should have no selection")
	}
	m = press(m, "down", "right")
	if m.View() == "" {
		t.Error("view should render for an empty layout")
	}
}
