// Package analysis computes downstream impact reports: given a changed
// node, which nodes are affected, how far away they are, and how bad it
// would be.
package analysis

import (
	"sort"

	"pipescope/pkg/model"
)

// Severity grades how badly a downstream node is affected.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "none"
	}
}

// Impacted is one affected downstream node.
type Impacted struct {
	ID       model.NodeID
	Distance int // shortest dependency distance from the source
	Severity Severity
}

// Report is the full impact picture for one source node.
type Report struct {
	Source      model.NodeID
	Impacted    []Impacted
	Overall     Severity
	LongestPath int // longest downstream chain length, in edges
}

// Analyze walks the downstream closure of source and grades each reached
// node. Distances are shortest-path (BFS); results sort by severity
// descending, then distance, then label, so the report reads worst-first.
func Analyze(g *model.Graph, source model.NodeID) *Report {
	dist := map[model.NodeID]int{source: 0}
	queue := []model.NodeID{source}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range g.Children(id) {
			if _, seen := dist[child]; seen {
				continue
			}
			dist[child] = dist[id] + 1
			queue = append(queue, child)
		}
	}

	rep := &Report{Source: source}
	for id, d := range dist {
		if id == source {
			continue
		}
		sev := severityFor(g.Node(id), d)
		rep.Impacted = append(rep.Impacted, Impacted{ID: id, Distance: d, Severity: sev})
		if sev > rep.Overall {
			rep.Overall = sev
		}
	}
	sort.Slice(rep.Impacted, func(i, j int) bool {
		a, b := rep.Impacted[i], rep.Impacted[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return g.Node(a.ID).Label < g.Node(b.ID).Label
	})

	rep.LongestPath = longestDownstreamPath(g, source)
	return rep
}

// severityFor grades one impacted node. Exposures are always critical:
// they are what stakeholders actually look at. Otherwise proximity
// dominates.
func severityFor(n *model.Node, distance int) Severity {
	if n.Type == model.TypeExposure {
		return SeverityCritical
	}
	switch distance {
	case 1:
		return SeverityHigh
	case 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// longestDownstreamPath returns the length in edges of the longest chain
// starting at source. Memoized DFS; the graph is acyclic by the time
// analysis runs.
func longestDownstreamPath(g *model.Graph, source model.NodeID) int {
	memo := make(map[model.NodeID]int)
	var depth func(model.NodeID) int
	depth = func(id model.NodeID) int {
		if d, ok := memo[id]; ok {
			return d
		}
		best := 0
		for _, child := range g.Children(id) {
			if d := depth(child) + 1; d > best {
				best = d
			}
		}
		memo[id] = best
		return best
	}
	return depth(source)
}
