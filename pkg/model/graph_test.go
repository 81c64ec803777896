package model

import (
	"sort"
	"testing"
)

func chain(t *testing.T, n int) *Graph {
	t.Helper()
	g := NewGraph(n, n-1)
	for i := 0; i < n; i++ {
		g.AddNode(Node{Label: "n", UniqueID: string(rune('a' + i))})
	}
	for i := 0; i < n-1; i++ {
		g.AddEdge(Edge{From: NodeID(i), To: NodeID(i + 1)})
	}
	return g
}

func sorted(ids []NodeID) []NodeID {
	out := append([]NodeID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestAdjacency(t *testing.T) {
	g := NewGraph(3, 2)
	a := g.AddNode(Node{UniqueID: "a"})
	b := g.AddNode(Node{UniqueID: "b"})
	c := g.AddNode(Node{UniqueID: "c"})
	g.AddEdge(Edge{From: a, To: b})
	g.AddEdge(Edge{From: a, To: c})

	if got := g.Children(a); len(got) != 2 {
		t.Errorf("Children(a) = %v, want 2 entries", got)
	}
	if got := g.Parents(c); len(got) != 1 || got[0] != a {
		t.Errorf("Parents(c) = %v, want [a]", got)
	}
	if got := g.Parents(a); len(got) != 0 {
		t.Errorf("Parents(a) = %v, want empty", got)
	}
}

func TestByUniqueID(t *testing.T) {
	g := chain(t, 3)
	id, ok := g.ByUniqueID("b")
	if !ok || id != 1 {
		t.Errorf("ByUniqueID(b) = %d, %v", id, ok)
	}
	if _, ok := g.ByUniqueID("nope"); ok {
		t.Error("ByUniqueID(nope) found a node")
	}
}

func TestClosures(t *testing.T) {
	// diamond plus a tail: a -> {b,c} -> d -> e
	g := NewGraph(5, 5)
	for i := 0; i < 5; i++ {
		g.AddNode(Node{UniqueID: string(rune('a' + i))})
	}
	g.AddEdge(Edge{From: 0, To: 1})
	g.AddEdge(Edge{From: 0, To: 2})
	g.AddEdge(Edge{From: 1, To: 3})
	g.AddEdge(Edge{From: 2, To: 3})
	g.AddEdge(Edge{From: 3, To: 4})

	desc := sorted(g.Descendants(0))
	want := []NodeID{1, 2, 3, 4}
	if len(desc) != len(want) {
		t.Fatalf("Descendants(a) = %v, want %v", desc, want)
	}
	for i := range want {
		if desc[i] != want[i] {
			t.Fatalf("Descendants(a) = %v, want %v", desc, want)
		}
	}

	anc := sorted(g.Ancestors(4))
	if len(anc) != 4 {
		t.Fatalf("Ancestors(e) = %v, want all four upstream nodes", anc)
	}

	// Closures exclude the start node even when reachable through the
	// diamond twice.
	for _, id := range g.Descendants(0) {
		if id == 0 {
			t.Fatal("Descendants includes the start node")
		}
	}
}

func TestClosureDeduplicates(t *testing.T) {
	g := NewGraph(3, 3)
	for i := 0; i < 3; i++ {
		g.AddNode(Node{UniqueID: string(rune('a' + i))})
	}
	g.AddEdge(Edge{From: 0, To: 2})
	g.AddEdge(Edge{From: 1, To: 2})
	g.AddEdge(Edge{From: 0, To: 1})

	desc := g.Descendants(0)
	if len(desc) != 2 {
		t.Fatalf("Descendants(a) = %v, want exactly b and c once each", desc)
	}
}
