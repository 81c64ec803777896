// search.go - Incremental case-insensitive substring search over node
// labels and unique IDs.
package ui

import (
	"strings"

	"pipescope/pkg/model"
)

// searchMatches returns the nodes whose label or unique ID contains the
// query, case-insensitively, in layout order. The empty query matches
// every node.
func (m *Model) searchMatches(query string) []model.NodeID {
	q := strings.ToLower(query)
	out := make([]model.NodeID, 0, m.graph.Len())
	for _, id := range m.layout.Order() {
		n := m.graph.Node(id)
		if q == "" ||
			strings.Contains(strings.ToLower(n.Label), q) ||
			strings.Contains(strings.ToLower(n.UniqueID), q) {
			out = append(out, id)
		}
	}
	return out
}

// refreshSearch recomputes results for the current query and moves the
// selection to the first match. Keyed on every edit so results track the
// query live.
func (m *Model) refreshSearch() {
	m.searchResults = m.searchMatches(m.searchInput.Value())
	m.searchCursor = 0
	if len(m.searchResults) > 0 {
		m.selectNode(m.searchResults[0], true)
	}
}

// stepSearch moves to the next or previous match, wrapping.
func (m *Model) stepSearch(delta int) {
	n := len(m.searchResults)
	if n == 0 {
		return
	}
	m.searchCursor = (m.searchCursor + delta + n) % n
	m.selectNode(m.searchResults[m.searchCursor], true)
}

// enterSearch switches to search mode with a cleared query.
func (m *Model) enterSearch() {
	m.mode = ModeSearch
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.refreshSearch()
}

// leaveSearch returns to normal mode. The selection made while searching
// is kept; the result list is dropped.
func (m *Model) leaveSearch() {
	m.mode = ModeNormal
	m.searchInput.Blur()
	m.searchResults = nil
	m.searchCursor = 0
}
