// navigation.go - Selection cycling, spatial navigation over the layered
// canvas, and group collapse handling.
package ui

import "pipescope/pkg/model"

// selectNode makes id the current selection, keeping the cycle index, the
// left-panel cursor, and (optionally) the viewport in sync. Selecting a
// node inside a collapsed group expands that group.
func (m *Model) selectNode(id model.NodeID, recenter bool) {
	m.selected = id
	m.cycleIdx = m.layout.IndexOf(id)

	if gi := groupOf(m.groups, id); gi >= 0 {
		if m.collapsed[m.groups[gi].Key] {
			delete(m.collapsed, m.groups[gi].Key)
			m.rebuildDisplay()
		}
	}
	for i, e := range m.display {
		if !e.IsHeader && e.Node == id {
			m.displayCursor = i
			break
		}
	}
	if recenter {
		m.centerOnSelected()
	}
}

// clearSelection drops the selection without moving the viewport.
func (m *Model) clearSelection() {
	m.selected = -1
	m.cycleIdx = -1
}

// cycleNext advances the selection through layout order, wrapping at the
// end. With no selection it starts at the first node.
func (m *Model) cycleNext() {
	n := m.graph.Len()
	if n == 0 {
		return
	}
	idx := (m.cycleIdx + 1) % n
	m.selectNode(m.layout.Order()[idx], true)
}

// cyclePrev steps the selection backwards, wrapping at the start.
func (m *Model) cyclePrev() {
	n := m.graph.Len()
	if n == 0 {
		return
	}
	idx := m.cycleIdx - 1
	if idx < 0 {
		idx = n - 1
	}
	m.selectNode(m.layout.Order()[idx], true)
}

// navigateHorizontal moves the selection to the nearest node in the
// adjacent layer (delta -1 left, +1 right), measured by position within
// the layer. No-op at the boundary or without a selection.
func (m *Model) navigateHorizontal(delta int) {
	if m.selected < 0 {
		return
	}
	c := m.layout.Coord(m.selected)
	target := c.Layer + delta
	if target < 0 || target >= m.layout.LayerCount() {
		return
	}
	layer := m.layout.Layer(target)
	if len(layer) == 0 {
		return
	}
	best := layer[0]
	bestDist := abs(m.layout.Coord(best).Pos - c.Pos)
	for _, id := range layer[1:] {
		if d := abs(m.layout.Coord(id).Pos - c.Pos); d < bestDist {
			best, bestDist = id, d
		}
	}
	m.selectNode(best, true)
}

// navigateVertical moves the selection within the current layer, wrapping
// top to bottom.
func (m *Model) navigateVertical(delta int) {
	if m.selected < 0 {
		return
	}
	c := m.layout.Coord(m.selected)
	layer := m.layout.Layer(c.Layer)
	if len(layer) < 2 {
		return
	}
	pos := (c.Pos + delta + len(layer)) % len(layer)
	m.selectNode(layer[pos], true)
}

// moveDisplayCursor moves the left-panel cursor, selecting node rows as it
// lands on them.
func (m *Model) moveDisplayCursor(delta int) {
	if len(m.display) == 0 {
		return
	}
	m.displayCursor += delta
	if m.displayCursor < 0 {
		m.displayCursor = 0
	}
	if m.displayCursor >= len(m.display) {
		m.displayCursor = len(m.display) - 1
	}
	if e := m.display[m.displayCursor]; !e.IsHeader {
		m.selected = e.Node
		m.cycleIdx = m.layout.IndexOf(e.Node)
		m.centerOnSelected()
	}
}

// toggleCursorRow collapses or expands the group under the cursor, or
// selects the node row there.
func (m *Model) toggleCursorRow() {
	if m.displayCursor >= len(m.display) {
		return
	}
	e := m.display[m.displayCursor]
	if e.IsHeader {
		key := m.groups[e.Group].Key
		if m.collapsed[key] {
			delete(m.collapsed, key)
		} else {
			m.collapsed[key] = true
		}
		m.rebuildDisplay()
		return
	}
	m.selectNode(e.Node, true)
}

// toggleSelectedGroup collapses or expands the group containing the
// current selection, re-pointing the list cursor at the group header when
// collapsing or at the selected node's row when expanding.
func (m *Model) toggleSelectedGroup() {
	if m.selected < 0 {
		return
	}
	gi := groupOf(m.groups, m.selected)
	if gi < 0 {
		return
	}
	key := m.groups[gi].Key
	nowCollapsed := !m.collapsed[key]
	if nowCollapsed {
		m.collapsed[key] = true
	} else {
		delete(m.collapsed, key)
	}
	m.rebuildDisplay()

	for i, e := range m.display {
		if nowCollapsed && e.IsHeader && e.Group == gi {
			m.displayCursor = i
			return
		}
		if !nowCollapsed && !e.IsHeader && e.Node == m.selected {
			m.displayCursor = i
			return
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
