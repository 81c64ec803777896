package analysis

import (
	"testing"

	"pipescope/pkg/model"
)

// pipeline: src -> a -> b -> c -> exposure, plus a -> c shortcut.
func fixture(t *testing.T) *model.Graph {
	t.Helper()
	g := model.NewGraph(5, 5)
	g.AddNode(model.Node{Type: model.TypeSource, Label: "src", UniqueID: "src"})
	g.AddNode(model.Node{Type: model.TypeModel, Label: "a", UniqueID: "a"})
	g.AddNode(model.Node{Type: model.TypeModel, Label: "b", UniqueID: "b"})
	g.AddNode(model.Node{Type: model.TypeModel, Label: "c", UniqueID: "c"})
	g.AddNode(model.Node{Type: model.TypeExposure, Label: "exp", UniqueID: "exp"})
	g.AddEdge(model.Edge{From: 0, To: 1})
	g.AddEdge(model.Edge{From: 1, To: 2})
	g.AddEdge(model.Edge{From: 2, To: 3})
	g.AddEdge(model.Edge{From: 1, To: 3})
	g.AddEdge(model.Edge{From: 3, To: 4})
	return g
}

func TestAnalyzeDistancesAreShortest(t *testing.T) {
	g := fixture(t)
	rep := Analyze(g, 1) // from a

	dist := map[string]int{}
	for _, imp := range rep.Impacted {
		dist[g.Node(imp.ID).Label] = imp.Distance
	}
	// c is reachable via b (2 hops) and directly (1 hop); BFS keeps 1.
	if dist["c"] != 1 {
		t.Errorf("distance to c = %d, want 1", dist["c"])
	}
	if dist["b"] != 1 || dist["exp"] != 2 {
		t.Errorf("distances = %v", dist)
	}
}

func TestAnalyzeSeverities(t *testing.T) {
	g := fixture(t)
	rep := Analyze(g, 0) // from src

	sev := map[string]Severity{}
	for _, imp := range rep.Impacted {
		sev[g.Node(imp.ID).Label] = imp.Severity
	}
	if sev["a"] != SeverityHigh {
		t.Errorf("a severity = %v, want high", sev["a"])
	}
	if sev["b"] != SeverityMedium {
		t.Errorf("b severity = %v, want medium", sev["b"])
	}
	if sev["exp"] != SeverityCritical {
		t.Errorf("exposure severity = %v, want critical regardless of distance", sev["exp"])
	}
	if rep.Overall != SeverityCritical {
		t.Errorf("Overall = %v, want critical", rep.Overall)
	}
}

func TestAnalyzeSortsWorstFirst(t *testing.T) {
	g := fixture(t)
	rep := Analyze(g, 0)
	for i := 1; i < len(rep.Impacted); i++ {
		if rep.Impacted[i].Severity > rep.Impacted[i-1].Severity {
			t.Fatalf("report not sorted by severity: %v before %v",
				rep.Impacted[i-1].Severity, rep.Impacted[i].Severity)
		}
	}
	if rep.Impacted[0].Severity != SeverityCritical {
		t.Errorf("first entry severity = %v, want critical", rep.Impacted[0].Severity)
	}
}

func TestAnalyzeLongestPath(t *testing.T) {
	g := fixture(t)
	rep := Analyze(g, 0)
	// src -> a -> b -> c -> exp is 4 edges.
	if rep.LongestPath != 4 {
		t.Errorf("LongestPath = %d, want 4", rep.LongestPath)
	}
}

func TestAnalyzeLeafNode(t *testing.T) {
	g := fixture(t)
	rep := Analyze(g, 4)
	if len(rep.Impacted) != 0 || rep.Overall != SeverityNone || rep.LongestPath != 0 {
		t.Errorf("leaf report = %+v, want empty", rep)
	}
}
