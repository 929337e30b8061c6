package timeline

import (
	"errors"
	"testing"
)

func TestBuildEdgesAndSources(t *testing.T) {
	jobs := []Job{
		{Name: "a", SubmitTime: 0, ElapsedTime: 10, Finished: true},
		{Name: "b", SubmitTime: 5, ElapsedTime: 10, Finished: true},
		{Name: "c", SubmitTime: 20, ElapsedTime: 5},
	}
	deps := Dependencies{
		{Source: "a", Targets: []string{"b", "c"}},
		{Source: "b", Targets: []string{"c"}},
	}

	g, err := Build(jobs, deps)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(g.Edges) != 3 {
		t.Fatalf("len(Edges) = %d, want 3", len(g.Edges))
	}
	if !g.Edges[0].Finished {
		t.Error("a->b should be finished (both endpoints finished)")
	}
	if g.Edges[1].Finished {
		t.Error("a->c should not be finished (c is running)")
	}

	srcs := g.Sources["c"]
	if len(srcs) != 2 || srcs[0].Name != "a" || srcs[1].Name != "b" {
		t.Errorf("Sources[c] = %v, want [a b]", names(srcs))
	}
	if _, ok := g.Sources["a"]; ok {
		t.Error("root node a should have no sources entry")
	}
}

func TestBuildDanglingTarget(t *testing.T) {
	g, err := Build([]Job{{Name: "Y", ElapsedTime: 1}}, Dependencies{{Source: "X", Targets: []string{"Y"}}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Edges) != 0 {
		t.Errorf("len(Edges) = %d, want 0", len(g.Edges))
	}
	if len(g.TargetMarkers) != 1 || g.TargetMarkers[0].Name != "Y" {
		t.Errorf("TargetMarkers = %v, want [Y]", names(g.TargetMarkers))
	}
	if len(g.SourceMarkers) != 0 {
		t.Errorf("SourceMarkers = %v, want none", names(g.SourceMarkers))
	}
}

func TestBuildDanglingSource(t *testing.T) {
	g, err := Build([]Job{{Name: "X"}}, Dependencies{{Source: "X", Targets: []string{"Y", "Z"}}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.SourceMarkers) != 2 {
		t.Errorf("len(SourceMarkers) = %d, want 2 (one per missing target)", len(g.SourceMarkers))
	}
	if len(g.TargetMarkers) != 0 || len(g.Edges) != 0 {
		t.Error("expected no target markers and no edges")
	}
}

func TestBuildDropsUnobservedPairs(t *testing.T) {
	g, err := Build([]Job{{Name: "a"}}, Dependencies{{Source: "p", Targets: []string{"q"}}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(g.Edges)+len(g.TargetMarkers)+len(g.SourceMarkers) != 0 {
		t.Error("dependency between two unobserved jobs should be dropped")
	}
}

func TestBuildDuplicateSourcesKept(t *testing.T) {
	g, err := Build(
		[]Job{{Name: "a"}, {Name: "b"}},
		Dependencies{{Source: "a", Targets: []string{"b", "b"}}},
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(g.Sources["b"]); got != 2 {
		t.Errorf("len(Sources[b]) = %d, want 2", got)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		jobs []Job
		want error
	}{
		{"empty name", []Job{{Name: ""}}, ErrEmptyName},
		{"duplicate", []Job{{Name: "a"}, {Name: "a"}}, ErrDuplicateName},
		{"negative elapsed", []Job{{Name: "a", ElapsedTime: -1}}, ErrNegativeElapsed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.jobs, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}
