// Package model defines the core data types shared across pipescope:
// the arena-indexed dependency graph and per-node run statuses.
package model

// NodeID is a dense index into the Graph's node table. IDs are assigned
// in insertion order and stay valid for the lifetime of the Graph.
type NodeID int

// NodeType tags what kind of pipeline artifact a node is.
type NodeType string

const (
	TypeModel      NodeType = "model"
	TypeSource     NodeType = "source"
	TypeSeed       NodeType = "seed"
	TypeSnapshot   NodeType = "snapshot"
	TypeTest       NodeType = "test"
	TypeExposure   NodeType = "exposure"
	TypeAnalysis   NodeType = "analysis"
	TypeUnresolved NodeType = "unresolved"
)

// AllNodeTypes lists every node type in display order.
var AllNodeTypes = []NodeType{
	TypeModel, TypeSource, TypeSeed, TypeSnapshot,
	TypeTest, TypeExposure, TypeAnalysis, TypeUnresolved,
}

// EdgeType tags the relation an edge encodes.
type EdgeType string

const (
	EdgeRef    EdgeType = "ref"    // downstream node references upstream node
	EdgeSource EdgeType = "source" // model reads from a declared source
	EdgeTest   EdgeType = "test"   // test attached to a node
)

// Node is one pipeline artifact. Path and Description are optional;
// nodes without a Path group under a type-based sentinel.
type Node struct {
	Type        NodeType
	Label       string // human name, e.g. "stg_orders"
	UniqueID    string // stable identifier, e.g. "model.shop.stg_orders"
	Path        string // storage path relative to the project, e.g. "models/staging/stg_orders.sql"
	Description string
}

// Edge is a directed dependency From -> To: To depends on From.
type Edge struct {
	Type EdgeType
	From NodeID
	To   NodeID
}

// Graph is the immutable, arena-indexed dependency graph. Nodes and edges
// live in flat tables; relationships are NodeID references, never pointers.
// The graph is built once by the loader and only read afterwards, so it is
// safe to share across the render loop without synchronization.
type Graph struct {
	nodes    []Node
	edges    []Edge
	children [][]NodeID // adjacency by edge direction (From -> To)
	parents  [][]NodeID // reverse adjacency
	byUID    map[string]NodeID
}

// NewGraph returns an empty graph with capacity hints.
func NewGraph(nodeHint, edgeHint int) *Graph {
	return &Graph{
		nodes: make([]Node, 0, nodeHint),
		edges: make([]Edge, 0, edgeHint),
		byUID: make(map[string]NodeID, nodeHint),
	}
}

// AddNode appends a node and returns its ID. Intended for the loader and
// for test fixtures; the interactive core never calls it after load.
func (g *Graph) AddNode(n Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.children = append(g.children, nil)
	g.parents = append(g.parents, nil)
	if n.UniqueID != "" {
		g.byUID[n.UniqueID] = id
	}
	return id
}

// AddEdge appends a directed edge From -> To. Endpoints must be valid IDs.
func (g *Graph) AddEdge(e Edge) {
	g.edges = append(g.edges, e)
	g.children[e.From] = append(g.children[e.From], e.To)
	g.parents[e.To] = append(g.parents[e.To], e.From)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node for id. The pointer aliases the arena; callers
// must treat it as read-only.
func (g *Graph) Node(id NodeID) *Node { return &g.nodes[id] }

// Edges returns the edge table. Read-only.
func (g *Graph) Edges() []Edge { return g.edges }

// Children returns the nodes that depend on id. Read-only.
func (g *Graph) Children(id NodeID) []NodeID { return g.children[id] }

// Parents returns the nodes id depends on. Read-only.
func (g *Graph) Parents(id NodeID) []NodeID { return g.parents[id] }

// ByUniqueID resolves a stable identifier string to its NodeID.
func (g *Graph) ByUniqueID(uid string) (NodeID, bool) {
	id, ok := g.byUID[uid]
	return id, ok
}

// Ancestors returns the transitive upstream closure of id, excluding id.
func (g *Graph) Ancestors(id NodeID) []NodeID {
	return g.closure(id, g.Parents)
}

// Descendants returns the transitive downstream closure of id, excluding id.
func (g *Graph) Descendants(id NodeID) []NodeID {
	return g.closure(id, g.Children)
}

func (g *Graph) closure(start NodeID, next func(NodeID) []NodeID) []NodeID {
	seen := make(map[NodeID]bool, 16)
	var out []NodeID
	queue := append([]NodeID(nil), next(start)...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		queue = append(queue, next(id)...)
	}
	return out
}
