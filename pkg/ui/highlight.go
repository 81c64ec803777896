// highlight.go - Dependency path highlighting and the downstream impact
// report attached to it.
package ui

import (
	"pipescope/pkg/analysis"
	"pipescope/pkg/model"
)

// togglePathHighlight highlights the selected node's full dependency path
// (ancestors, the node, descendants) and computes its impact report.
// Toggling on the same source clears the highlight; toggling on a new
// source replaces it. Idempotent per source: re-highlighting an already
// highlighted selection turns it off, never double-applies.
func (m *Model) togglePathHighlight() {
	if m.selected < 0 {
		return
	}
	if m.highlightSource == m.selected && len(m.highlight) > 0 {
		m.clearHighlight()
		return
	}
	m.highlight = make(map[model.NodeID]bool, 16)
	m.highlight[m.selected] = true
	for _, id := range m.graph.Ancestors(m.selected) {
		m.highlight[id] = true
	}
	for _, id := range m.graph.Descendants(m.selected) {
		m.highlight[id] = true
	}
	m.highlightSource = m.selected
	m.impact = analysis.Analyze(m.graph, m.selected)
}

// clearHighlight removes the highlight and its report.
func (m *Model) clearHighlight() {
	m.highlight = make(map[model.NodeID]bool)
	m.highlightSource = -1
	m.impact = nil
}

// dimmed reports whether a node should render dimmed because a highlight
// is active and the node is outside it.
func (m *Model) dimmed(id model.NodeID) bool {
	return len(m.highlight) > 0 && !m.highlight[id]
}
