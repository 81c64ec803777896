// filter.go - Display filters by node type and run status. Filtering is
// presentation only: layout coordinates, selection cycling, and search all
// operate on the full graph.
package ui

import (
	"strings"

	"pipescope/pkg/model"
)

// visible reports whether a node passes the active filters. The selected
// node is always visible so the cursor never points at a blank spot.
func (m *Model) visible(id model.NodeID) bool {
	if id == m.selected {
		return true
	}
	n := m.graph.Node(id)
	if !m.enabledTypes[n.Type] {
		return false
	}
	if m.statusFilter != nil {
		if m.store.Status(n.UniqueID).Kind != *m.statusFilter {
			return false
		}
	}
	return true
}

// toggleTypeFilter flips visibility for one node type.
func (m *Model) toggleTypeFilter(t model.NodeType) {
	m.enabledTypes[t] = !m.enabledTypes[t]
}

// applyFilterExpr parses the filter prompt input. Accepted forms:
//
//	type:model          hide everything except the named type
//	status:error        show only nodes with that run status
//	(empty)             clear all filters
//
// Unrecognized input is reported and leaves filters untouched.
func (m *Model) applyFilterExpr(expr string) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		m.clearFilters()
		m.setStatus("filters cleared", false)
		return
	}
	field, value, ok := strings.Cut(expr, ":")
	if !ok {
		m.setStatus("filter must be type:<name> or status:<name>", true)
		return
	}
	value = strings.ToLower(strings.TrimSpace(value))
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "type":
		for _, t := range model.AllNodeTypes {
			if string(t) == value {
				for _, other := range model.AllNodeTypes {
					m.enabledTypes[other] = other == t
				}
				m.setStatus("showing only "+value, false)
				return
			}
		}
		m.setStatus("unknown node type "+value, true)
	case "status":
		kind, ok := statusKindByName(value)
		if !ok {
			m.setStatus("unknown status "+value, true)
			return
		}
		m.statusFilter = &kind
		m.setStatus("showing only status "+value, false)
	default:
		m.setStatus("filter must be type:<name> or status:<name>", true)
	}
}

// clearFilters restores full visibility.
func (m *Model) clearFilters() {
	for _, t := range model.AllNodeTypes {
		m.enabledTypes[t] = true
	}
	m.statusFilter = nil
}

func statusKindByName(name string) (model.StatusKind, bool) {
	for _, k := range []model.StatusKind{
		model.StatusNeverRun, model.StatusSuccess, model.StatusError,
		model.StatusSkipped, model.StatusStale,
	} {
		if strings.EqualFold(k.String(), name) {
			return k, true
		}
	}
	return 0, false
}
