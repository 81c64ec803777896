// hittest.go - World-space geometry shared by the canvas renderer and
// mouse hit testing, plus viewport and zoom handling.
package ui

import "pipescope/pkg/model"

// Base cell dimensions at zoom 1.0, with floors that keep node boxes
// legible at minimum zoom.
const (
	baseBoxWidth  = 20
	baseBoxHeight = 3
	baseGapX      = 6
	baseGapY      = 1

	minBoxWidth  = 9
	minBoxHeight = 3
	minGapX      = 2
	minGapY      = 1
)

func scaled(base, floor int, zoom float64) int {
	v := int(float64(base) * zoom)
	if v < floor {
		return floor
	}
	return v
}

func (m *Model) boxWidth() int  { return scaled(baseBoxWidth, minBoxWidth, m.zoom) }
func (m *Model) boxHeight() int { return scaled(baseBoxHeight, minBoxHeight, m.zoom) }
func (m *Model) gapX() int      { return scaled(baseGapX, minGapX, m.zoom) }
func (m *Model) gapY() int      { return scaled(baseGapY, minGapY, m.zoom) }

// nodeBox returns a node's axis-aligned box in world space. Layers run
// left to right, positions top to bottom.
func (m *Model) nodeBox(id model.NodeID) (x, y, w, h int) {
	c := m.layout.Coord(id)
	w, h = m.boxWidth(), m.boxHeight()
	x = c.Layer * (w + m.gapX())
	y = c.Pos * (h + m.gapY())
	return x, y, w, h
}

// nodeWorldCenter returns the center of a node's box in world space.
func (m *Model) nodeWorldCenter(id model.NodeID) (cx, cy int) {
	x, y, w, h := m.nodeBox(id)
	return x + w/2, y + h/2
}

// hitTest maps a terminal coordinate back to the node drawn there, going
// through the canvas origin, the viewport offset, and the current zoom.
func (m *Model) hitTest(screenX, screenY int) (model.NodeID, bool) {
	wx := screenX - m.canvasOriginX + m.viewX
	wy := screenY - m.canvasOriginY + m.viewY
	if wx < 0 || wy < 0 {
		return 0, false
	}
	for i := 0; i < m.graph.Len(); i++ {
		id := model.NodeID(i)
		x, y, w, h := m.nodeBox(id)
		if wx >= x && wx < x+w && wy >= y && wy < y+h {
			return id, true
		}
	}
	return 0, false
}

// pan shifts the viewport by whole cells.
func (m *Model) pan(dx, dy int) {
	m.viewX += dx
	m.viewY += dy
}

// setZoom clamps and applies a new zoom factor.
func (m *Model) setZoom(z float64) {
	if z < m.cfg.UI.MinZoom {
		z = m.cfg.UI.MinZoom
	}
	if z > m.cfg.UI.MaxZoom {
		z = m.cfg.UI.MaxZoom
	}
	m.zoom = z
}

func (m *Model) zoomIn()  { m.setZoom(m.zoom * 1.25) }
func (m *Model) zoomOut() { m.setZoom(m.zoom / 1.25) }

// centerOnSelected sets the viewport offset so the selected node's center
// lands at the midpoint of the last known drawable rectangle. Before the
// first draw there is no rectangle, so fall back to a small fixed offset
// from the node center. No-op without a selection.
func (m *Model) centerOnSelected() {
	if m.selected < 0 {
		return
	}
	cx, cy := m.nodeWorldCenter(m.selected)
	if m.canvasWidth > 0 && m.canvasHeight > 0 {
		m.viewX = cx - m.canvasWidth/2
		m.viewY = cy - m.canvasHeight/2
		return
	}
	m.viewX = cx - fallbackCenterOffsetX
	m.viewY = cy - fallbackCenterOffsetY
}

const (
	fallbackCenterOffsetX = 10
	fallbackCenterOffsetY = 4
)
