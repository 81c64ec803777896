// groups.go - Directory-style grouping of nodes and its flattened
// projection through the collapse set.
package ui

import (
	"path/filepath"

	"pipescope/pkg/model"
)

// Sentinel group keys for nodes without a storage path, plus the label for
// nodes that live at the project root.
const (
	GroupExposures  = "(exposures)"
	GroupUnresolved = "(unresolved)"
	GroupOther      = "(other)"
	GroupRoot       = "(root)"
)

// NodeGroup is one directory's worth of nodes, in display order.
type NodeGroup struct {
	Key     string // grouping key, a directory or a sentinel
	Label   string
	Members []model.NodeID
}

// DisplayEntry is one row of the flattened group list: either a group
// header or a node.
type DisplayEntry struct {
	IsHeader bool
	Group    int          // index into the groups slice when IsHeader
	Node     model.NodeID // valid when !IsHeader
}

// groupKey derives the grouping key for a node: its storage path's parent
// directory, or a type-based sentinel when it has none.
func groupKey(n *model.Node) string {
	if n.Path != "" {
		dir := filepath.Dir(n.Path)
		if dir == "." || dir == "/" {
			return GroupRoot
		}
		return dir
	}
	switch n.Type {
	case model.TypeExposure:
		return GroupExposures
	case model.TypeUnresolved:
		return GroupUnresolved
	default:
		return GroupOther
	}
}

// buildGroups partitions nodes by group key, preserving first-seen group
// order. Groups are built once per graph load and stay stable afterwards.
func buildGroups(order []model.NodeID, g *model.Graph) []NodeGroup {
	var groups []NodeGroup
	index := make(map[string]int)
	for _, id := range order {
		key := groupKey(g.Node(id))
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, NodeGroup{Key: key, Label: key})
		}
		groups[gi].Members = append(groups[gi].Members, id)
	}
	return groups
}

// buildDisplayList flattens groups into display rows, hiding members of
// collapsed groups.
func buildDisplayList(groups []NodeGroup, collapsed map[string]bool) []DisplayEntry {
	var out []DisplayEntry
	for gi, grp := range groups {
		out = append(out, DisplayEntry{IsHeader: true, Group: gi})
		if collapsed[grp.Key] {
			continue
		}
		for _, id := range grp.Members {
			out = append(out, DisplayEntry{Node: id})
		}
	}
	return out
}

// groupOf returns the index of the group containing id, or -1.
func groupOf(groups []NodeGroup, id model.NodeID) int {
	for gi, grp := range groups {
		for _, member := range grp.Members {
			if member == id {
				return gi
			}
		}
	}
	return -1
}
