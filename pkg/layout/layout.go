// Package layout turns an acyclic dependency graph into stable on-screen
// coordinates using the classic layered approach: longest-path layer
// assignment followed by barycenter crossing reduction.
package layout

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"pipescope/pkg/model"
)

// ErrCyclic is returned when the input graph contains a cycle. Layering is
// undefined for cyclic input; the caller is expected to have rejected it.
var ErrCyclic = errors.New("layout: graph contains a cycle")

// Coord is a node's place in the layered layout: Layer is the visual
// column (0 = sources), Pos the row within that column.
type Coord struct {
	Layer int
	Pos   int
}

// Layout maps every node of one graph to a Coord, and exposes the
// per-layer draw order. Immutable once computed.
type Layout struct {
	coords []Coord
	layers [][]model.NodeID
	widest int
	order  []model.NodeID // flat layer-major traversal order
}

// Coord returns the coordinates for id.
func (l *Layout) Coord(id model.NodeID) Coord { return l.coords[id] }

// LayerCount returns the number of layers.
func (l *Layout) LayerCount() int { return len(l.layers) }

// Layer returns the node IDs of layer i in top-to-bottom draw order.
func (l *Layout) Layer(i int) []model.NodeID { return l.layers[i] }

// Widest returns the size of the largest layer.
func (l *Layout) Widest() int { return l.widest }

// Order returns all nodes layer by layer, position by position. This is
// the traversal order used by selection cycling.
func (l *Layout) Order() []model.NodeID { return l.order }

// IndexOf returns a node's index within Order.
func (l *Layout) IndexOf(id model.NodeID) int {
	c := l.coords[id]
	idx := 0
	for i := 0; i < c.Layer; i++ {
		idx += len(l.layers[i])
	}
	return idx + c.Pos
}

const barycenterPasses = 3

// Compute lays out g. Deterministic for a fixed graph. Returns ErrCyclic
// for cyclic input; an empty graph yields an empty layout.
func Compute(g *model.Graph) (*Layout, error) {
	n := g.Len()
	l := &Layout{coords: make([]Coord, n)}
	if n == 0 {
		return l, nil
	}

	dg := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		dg.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges() {
		if e.From == e.To {
			return nil, fmt.Errorf("%w: self-loop on node %d", ErrCyclic, e.From)
		}
		dg.SetEdge(dg.NewEdge(simple.Node(e.From), simple.Node(e.To)))
	}

	sorted, err := topo.Sort(dg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCyclic, err)
	}

	// Longest-path layering: each node sits one past its latest-finishing
	// predecessor, which keeps layer(u) < layer(v) along every edge and
	// minimizes the number of layers.
	layerOf := make([]int, n)
	maxLayer := 0
	for _, gn := range sorted {
		v := model.NodeID(gn.ID())
		for _, u := range g.Parents(v) {
			if layerOf[u]+1 > layerOf[v] {
				layerOf[v] = layerOf[u] + 1
			}
		}
		if layerOf[v] > maxLayer {
			maxLayer = layerOf[v]
		}
	}

	layers := make([][]model.NodeID, maxLayer+1)
	for _, gn := range sorted {
		v := model.NodeID(gn.ID())
		layers[layerOf[v]] = append(layers[layerOf[v]], v)
	}

	// Iterated barycenter crossing reduction. This is a heuristic, not an
	// optimal crossing minimizer: a few alternating sweeps settle the
	// visual order, with stable sorting preserving relative order on ties.
	for pass := 0; pass < barycenterPasses; pass++ {
		for i := 1; i < len(layers); i++ {
			reorderByBarycenter(layers[i], layers[i-1], g.Parents)
		}
		for i := len(layers) - 2; i >= 0; i-- {
			reorderByBarycenter(layers[i], layers[i+1], g.Children)
		}
	}

	for li, layer := range layers {
		for pos, id := range layer {
			l.coords[id] = Coord{Layer: li, Pos: pos}
		}
		if len(layer) > l.widest {
			l.widest = len(layer)
		}
		l.order = append(l.order, layer...)
	}
	l.layers = layers
	return l, nil
}

// reorderByBarycenter re-sorts layer by the mean position of each node's
// neighbors in the adjacent, already-ordered layer. Nodes with no neighbor
// there keep their current position as sort weight, so they stay put
// relative to the rest.
func reorderByBarycenter(layer, adjacent []model.NodeID, neighbors func(model.NodeID) []model.NodeID) {
	if len(layer) < 2 {
		return
	}
	adjPos := make(map[model.NodeID]int, len(adjacent))
	for i, id := range adjacent {
		adjPos[id] = i
	}

	weights := make(map[model.NodeID]float64, len(layer))
	for i, id := range layer {
		sum, count := 0.0, 0
		for _, nb := range neighbors(id) {
			if p, ok := adjPos[nb]; ok {
				sum += float64(p)
				count++
			}
		}
		if count == 0 {
			weights[id] = float64(i)
		} else {
			weights[id] = sum / float64(count)
		}
	}
	sort.SliceStable(layer, func(a, b int) bool {
		return weights[layer[a]] < weights[layer[b]]
	})
}
