package layout

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"pipescope/pkg/model"
)

// buildGraph constructs a graph from labeled edges over n nodes.
func buildGraph(t *testing.T, n int, edges [][2]int) *model.Graph {
	t.Helper()
	g := model.NewGraph(n, len(edges))
	for i := 0; i < n; i++ {
		g.AddNode(model.Node{Label: string(rune('a' + i)), UniqueID: string(rune('a' + i))})
	}
	for _, e := range edges {
		g.AddEdge(model.Edge{From: model.NodeID(e[0]), To: model.NodeID(e[1])})
	}
	return g
}

func TestComputeEmptyGraph(t *testing.T) {
	g := model.NewGraph(0, 0)
	l, err := Compute(g)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if l.LayerCount() != 0 {
		t.Errorf("LayerCount() = %d, want 0", l.LayerCount())
	}
	if len(l.Order()) != 0 {
		t.Errorf("Order() has %d entries, want 0", len(l.Order()))
	}
}

func TestComputeSingleNode(t *testing.T) {
	g := buildGraph(t, 1, nil)
	l, err := Compute(g)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if got := l.Coord(0); got != (Coord{Layer: 0, Pos: 0}) {
		t.Errorf("Coord(0) = %+v", got)
	}
}

func TestComputeRejectsCycle(t *testing.T) {
	g := buildGraph(t, 3, [][2]int{{0, 1}, {1, 2}, {2, 0}})
	_, err := Compute(g)
	if !errors.Is(err, ErrCyclic) {
		t.Fatalf("Compute() error = %v, want ErrCyclic", err)
	}
}

func TestComputeRejectsSelfLoop(t *testing.T) {
	g := buildGraph(t, 2, [][2]int{{0, 0}})
	_, err := Compute(g)
	if !errors.Is(err, ErrCyclic) {
		t.Fatalf("Compute() error = %v, want ErrCyclic", err)
	}
}

func TestComputeDiamond(t *testing.T) {
	// a -> b, a -> c, b -> d, c -> d
	g := buildGraph(t, 4, [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}})
	l, err := Compute(g)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if l.LayerCount() != 3 {
		t.Fatalf("LayerCount() = %d, want 3", l.LayerCount())
	}
	if got := l.Coord(0).Layer; got != 0 {
		t.Errorf("a at layer %d, want 0", got)
	}
	if got := l.Coord(3).Layer; got != 2 {
		t.Errorf("d at layer %d, want 2", got)
	}
	if l.Widest() != 2 {
		t.Errorf("Widest() = %d, want 2", l.Widest())
	}
}

func TestComputeLongestPathDominates(t *testing.T) {
	// a -> d directly and a -> b -> c -> d: d must sit past the long chain.
	g := buildGraph(t, 4, [][2]int{{0, 3}, {0, 1}, {1, 2}, {2, 3}})
	l, err := Compute(g)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if got := l.Coord(3).Layer; got != 3 {
		t.Errorf("d at layer %d, want 3", got)
	}
}

func TestIndexOfMatchesOrder(t *testing.T) {
	g := buildGraph(t, 5, [][2]int{{0, 2}, {1, 2}, {2, 3}, {2, 4}})
	l, err := Compute(g)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	for i, id := range l.Order() {
		if got := l.IndexOf(id); got != i {
			t.Errorf("IndexOf(%d) = %d, want %d", id, got, i)
		}
	}
}

// randomDAG draws a graph whose edges always point from a lower to a
// higher node index, which guarantees acyclicity.
func randomDAG(t *rapid.T) *model.Graph {
	n := rapid.IntRange(1, 40).Draw(t, "n")
	g := model.NewGraph(n, n*2)
	for i := 0; i < n; i++ {
		g.AddNode(model.Node{Label: "n", UniqueID: "n"})
	}
	if n < 2 {
		return g
	}
	edgeCount := rapid.IntRange(0, n*2).Draw(t, "edges")
	for i := 0; i < edgeCount; i++ {
		from := rapid.IntRange(0, n-2).Draw(t, "from")
		to := rapid.IntRange(from+1, n-1).Draw(t, "to")
		g.AddEdge(model.Edge{From: model.NodeID(from), To: model.NodeID(to)})
	}
	return g
}

func TestComputeCoordinatesUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomDAG(t)
		l, err := Compute(g)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		seen := make(map[Coord]model.NodeID)
		for i := 0; i < g.Len(); i++ {
			c := l.Coord(model.NodeID(i))
			if prev, dup := seen[c]; dup {
				t.Fatalf("nodes %d and %d share coordinate %+v", prev, i, c)
			}
			seen[c] = model.NodeID(i)
		}
	})
}

func TestComputeEdgesPointForward(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomDAG(t)
		l, err := Compute(g)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		for _, e := range g.Edges() {
			lf, lt := l.Coord(e.From).Layer, l.Coord(e.To).Layer
			if lf >= lt {
				t.Fatalf("edge %d->%d has layers %d >= %d", e.From, e.To, lf, lt)
			}
		}
	})
}

func TestComputeDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomDAG(t)
		first, err := Compute(g)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		second, err := Compute(g)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		if !reflect.DeepEqual(first.Order(), second.Order()) {
			t.Fatalf("Order() differs across runs: %v vs %v", first.Order(), second.Order())
		}
	})
}

func TestComputeLayersDense(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := randomDAG(t)
		l, err := Compute(g)
		if err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
		for i := 0; i < l.LayerCount(); i++ {
			if len(l.Layer(i)) == 0 {
				t.Fatalf("layer %d is empty", i)
			}
		}
		total := 0
		for i := 0; i < l.LayerCount(); i++ {
			total += len(l.Layer(i))
		}
		if total != g.Len() {
			t.Fatalf("layers hold %d nodes, graph has %d", total, g.Len())
		}
	})
}
