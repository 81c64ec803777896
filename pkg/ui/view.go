// view.go - Rendering: header, grouped list panel, the layered canvas,
// footer, and the modal overlays.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"pipescope/pkg/model"
)

const (
	panelWidth   = 34
	headerHeight = 1
	footerHeight = 2
)

// recalcCanvas derives the drawable canvas rectangle from the terminal
// size. Called on every resize; hit testing reads the same numbers.
func (m *Model) recalcCanvas() {
	m.canvasOriginX = panelWidth + 1
	m.canvasOriginY = headerHeight
	m.canvasWidth = m.width - panelWidth - 1
	m.canvasHeight = m.height - headerHeight - footerHeight
	if m.canvasWidth < 0 {
		m.canvasWidth = 0
	}
	if m.canvasHeight < 0 {
		m.canvasHeight = 0
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPanel(),
		m.theme.Dim.Render("│"),
		m.renderCanvas(),
	)
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	if overlay := m.renderOverlay(); overlay != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
	}
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.theme.Header.Render(" pipescope ")
	info := fmt.Sprintf("%d nodes · %d edges · %d layers",
		m.graph.Len(), m.graph.EdgeCount(), m.layout.LayerCount())
	right := m.theme.Dim.Render(info)
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

// renderPanel draws the grouped node list with a scrolling window around
// the cursor.
func (m *Model) renderPanel() string {
	rows := make([]string, 0, m.canvasHeight)

	// Window the display list around the cursor.
	top := 0
	if m.displayCursor >= m.canvasHeight {
		top = m.displayCursor - m.canvasHeight + 1
	}

	for i := top; i < len(m.display) && len(rows) < m.canvasHeight; i++ {
		e := m.display[i]
		cursor := " "
		if i == m.displayCursor {
			cursor = m.theme.Renderer.NewStyle().Foreground(m.theme.Primary).Render(">")
		}
		var line string
		switch {
		case e.IsHeader:
			grp := m.groups[e.Group]
			marker := "▾"
			if m.collapsed[grp.Key] {
				marker = "▸"
			}
			line = cursor + m.theme.Header.Render(marker+" "+truncate(grp.Label, panelWidth-4))
		default:
			n := m.graph.Node(e.Node)
			status := m.store.Status(n.UniqueID)
			dot := m.theme.Renderer.NewStyle().
				Foreground(m.theme.statusColor(status.Kind)).Render("●")
			label := truncate(n.Label, panelWidth-6)
			switch {
			case e.Node == m.selected:
				line = cursor + " " + dot + " " + m.theme.Selected.Render(label)
			case !m.visible(e.Node) || m.dimmed(e.Node):
				line = cursor + " " + dot + " " + m.theme.Dim.Render(label)
			default:
				line = cursor + " " + dot + " " + label
			}
		}
		rows = append(rows, padTo(line, panelWidth))
	}
	for len(rows) < m.canvasHeight {
		rows = append(rows, strings.Repeat(" ", panelWidth))
	}

	if m.impact != nil && len(rows) >= 3 {
		rows[len(rows)-2] = padTo(m.theme.Header.Render("impact: ")+
			fmt.Sprintf("%d nodes", len(m.impact.Impacted)), panelWidth)
		rows[len(rows)-1] = padTo(m.theme.Dim.Render(fmt.Sprintf("overall %s · chain %d",
			m.impact.Overall, m.impact.LongestPath)), panelWidth)
	}
	return strings.Join(rows, "\n")
}

// cell is one canvas character with its style resolved.
type cell struct {
	ch    string
	style lipgloss.Style
}

// renderCanvas rasterizes the world-space node boxes and edges into the
// visible canvas rectangle.
func (m *Model) renderCanvas() string {
	w, h := m.canvasWidth, m.canvasHeight
	if w <= 0 || h <= 0 {
		return ""
	}
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{ch: " ", style: m.theme.Base}
		}
	}

	put := func(wx, wy int, ch string, st lipgloss.Style) {
		sx, sy := wx-m.viewX, wy-m.viewY
		if sx < 0 || sy < 0 || sx >= w || sy >= h {
			return
		}
		grid[sy][sx] = cell{ch: ch, style: st}
	}

	// Edges first so boxes draw over them.
	for _, e := range m.graph.Edges() {
		if !m.visible(e.From) || !m.visible(e.To) {
			continue
		}
		st := m.theme.Dim
		if m.highlight[e.From] && m.highlight[e.To] {
			st = m.theme.Renderer.NewStyle().Foreground(m.theme.Primary)
		} else if m.dimmed(e.From) || m.dimmed(e.To) {
			continue
		}
		m.drawEdge(e.From, e.To, put, st)
	}

	for i := 0; i < m.graph.Len(); i++ {
		id := model.NodeID(i)
		if !m.visible(id) {
			continue
		}
		m.drawNode(id, put)
	}

	rows := make([]string, h)
	for y := 0; y < h; y++ {
		var sb strings.Builder
		for x := 0; x < w; x++ {
			c := grid[y][x]
			if c.ch == " " {
				sb.WriteString(" ")
			} else {
				sb.WriteString(c.style.Render(c.ch))
			}
		}
		rows[y] = sb.String()
	}
	return strings.Join(rows, "\n")
}

// drawEdge draws an elbow connector from the right edge of the parent box
// to the left edge of the child box.
func (m *Model) drawEdge(from, to model.NodeID, put func(int, int, string, lipgloss.Style), st lipgloss.Style) {
	x1, y1, w1, h1 := m.nodeBox(from)
	x2, y2, _, h2 := m.nodeBox(to)
	sx, sy := x1+w1, y1+h1/2
	ex, ey := x2-1, y2+h2/2
	if ex < sx {
		return // overlapping columns after zoom floors; skip the connector
	}
	midX := sx + (ex-sx)/2
	for x := sx; x <= midX; x++ {
		put(x, sy, "─", st)
	}
	step := 1
	if ey < sy {
		step = -1
	}
	for y := sy; y != ey; y += step {
		put(midX, y, "│", st)
	}
	for x := midX; x <= ex; x++ {
		put(x, ey, "─", st)
	}
	put(ex, ey, "▶", st)
}

// drawNode draws one node box with its status-colored border and label.
func (m *Model) drawNode(id model.NodeID, put func(int, int, string, lipgloss.Style)) {
	x, y, w, h := m.nodeBox(id)
	n := m.graph.Node(id)
	status := m.store.Status(n.UniqueID)

	borderStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.statusColor(status.Kind))
	textStyle := m.theme.Base
	switch {
	case id == m.selected:
		borderStyle = m.theme.Renderer.NewStyle().Foreground(m.theme.Primary).Bold(true)
		textStyle = m.theme.Selected
	case m.dimmed(id):
		borderStyle = m.theme.Dim
		textStyle = m.theme.Dim
	case n.Type == model.TypeSource:
		textStyle = m.theme.Renderer.NewStyle().Foreground(m.theme.Source)
	case n.Type == model.TypeExposure:
		textStyle = m.theme.Renderer.NewStyle().Foreground(m.theme.Exposure)
	}

	put(x, y, "┌", borderStyle)
	put(x+w-1, y, "┐", borderStyle)
	put(x, y+h-1, "└", borderStyle)
	put(x+w-1, y+h-1, "┘", borderStyle)
	for i := 1; i < w-1; i++ {
		put(x+i, y, "─", borderStyle)
		put(x+i, y+h-1, "─", borderStyle)
	}
	for i := 1; i < h-1; i++ {
		put(x, y+i, "│", borderStyle)
		put(x+w-1, y+i, "│", borderStyle)
	}

	label := truncate(n.Label, w-2)
	ly := y + h/2
	for i, r := range splitCells(label) {
		put(x+1+i, ly, r, textStyle)
	}
	if h >= 5 {
		kind := truncate(string(n.Type), w-2)
		for i, r := range splitCells(kind) {
			put(x+1+i, y+1, r, m.theme.Dim)
		}
	}
}

func (m *Model) renderFooter() string {
	if m.mode == ModeSearch {
		count := fmt.Sprintf(" %d/%d ", m.searchCursor+1, len(m.searchResults))
		if len(m.searchResults) == 0 {
			count = " no matches "
		}
		return m.searchInput.View() + m.theme.Dim.Render(count)
	}
	if m.mode == ModeFilterInput {
		return m.filterInput.View()
	}

	var parts []string
	if m.selected >= 0 {
		n := m.graph.Node(m.selected)
		parts = append(parts, m.theme.Header.Render(n.Label),
			m.theme.Dim.Render(n.UniqueID))
	}
	if m.run.Phase == RunRunning {
		parts = append(parts, m.theme.Renderer.NewStyle().
			Foreground(m.theme.Stale).Render("run in progress (o to view)"))
	}
	if m.statusMsg != "" {
		st := m.theme.Dim
		if m.statusIsErr {
			st = m.theme.Renderer.NewStyle().Foreground(m.theme.Error)
		}
		parts = append(parts, st.Render(m.statusMsg))
	}
	line1 := strings.Join(parts, "  ")
	line2 := m.theme.Footer.Render(
		"tab next · hjkl move · / search · p path · f filter · r run · d detail · q quit")
	return padTo(line1, m.width) + "\n" + truncate(line2, m.width)
}

// renderOverlay returns the active modal overlay, or "" in normal modes.
func (m *Model) renderOverlay() string {
	switch {
	case m.showDetail:
		return m.overlayBox("description", m.detailView.View())
	case m.mode == ModeRunMenu:
		return m.overlayBox("run", m.renderRunMenu())
	case m.mode == ModeRunConfirm:
		return m.overlayBox("confirm", m.renderRunConfirm())
	case m.mode == ModeRunOutput:
		return m.overlayBox(m.runOutputTitle(), m.renderRunOutput())
	case m.mode == ModeContextMenu:
		return m.overlayBox("actions", m.renderContextMenu())
	}
	return ""
}

func (m *Model) overlayBox(title, content string) string {
	box := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1)
	return box.Render(m.theme.Header.Render(title) + "\n\n" + content)
}

func (m *Model) renderRunMenu() string {
	label := "?"
	if m.selected >= 0 {
		label = m.graph.Node(m.selected).Label
	}
	rows := []string{
		fmt.Sprintf("command:  %s", m.runMenu.kind.Subcommand()),
		fmt.Sprintf("scope:    %s", scopeNames[m.runMenu.scope]),
		fmt.Sprintf("wrapper:  %v", m.runMenu.useWrapper),
	}
	for i := range rows {
		if i == m.menuCursor {
			rows[i] = m.theme.Selected.Render("> " + rows[i])
		} else {
			rows[i] = "  " + rows[i]
		}
	}
	return "target: " + label + "\n\n" + strings.Join(rows, "\n") +
		"\n\n" + m.theme.Dim.Render("j/k move · h/l change · enter confirm · esc cancel")
}

func (m *Model) renderRunConfirm() string {
	req, ok := m.buildRequest()
	if !ok {
		return "nothing selected"
	}
	return "about to execute:\n\n  " +
		m.theme.Header.Render(req.String()) +
		"\n\n" + m.theme.Dim.Render("y/enter run · n/esc back")
}

func (m *Model) runOutputTitle() string {
	switch m.run.Phase {
	case RunRunning:
		return "running: " + m.run.Request.String()
	case RunFinished:
		if m.run.Success {
			return "finished ok: " + m.run.Request.String()
		}
		return "failed: " + m.run.Request.String()
	default:
		return "output"
	}
}

func (m *Model) outputVisibleLines() int {
	v := m.height - 8
	if v < 3 {
		v = 3
	}
	return v
}

func (m *Model) renderRunOutput() string {
	visible := m.outputVisibleLines()
	top := m.outputScroll
	if m.outputFollow {
		top = len(m.run.Output) - visible
		if top < 0 {
			top = 0
		}
	}
	end := top + visible
	if end > len(m.run.Output) {
		end = len(m.run.Output)
	}
	lines := make([]string, 0, visible+1)
	width := m.width - 8
	if width < 20 {
		width = 20
	}
	for _, l := range m.run.Output[top:end] {
		lines = append(lines, truncate(l, width))
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.Dim.Render("(no output yet)"))
	}
	hint := "j/k scroll · G follow · esc close"
	return strings.Join(lines, "\n") + "\n\n" + m.theme.Dim.Render(hint)
}

func (m *Model) renderContextMenu() string {
	rows := make([]string, len(contextActions))
	for i, a := range contextActions {
		if i == m.ctxCursor {
			rows[i] = m.theme.Selected.Render("> " + a)
		} else {
			rows[i] = "  " + a
		}
	}
	return strings.Join(rows, "\n")
}

// toggleDetail opens or closes the rendered-description overlay for the
// selected node.
func (m *Model) toggleDetail() {
	if m.showDetail {
		m.showDetail = false
		return
	}
	if m.selected < 0 {
		return
	}
	n := m.graph.Node(m.selected)
	desc := n.Description
	if desc == "" {
		desc = "_no description_"
	}
	status := m.store.Status(n.UniqueID)
	facts := fmt.Sprintf("- type: %s\n- status: %s\n- upstream: %d\n- downstream: %d",
		n.Type, status.Kind, len(m.graph.Ancestors(m.selected)), len(m.graph.Descendants(m.selected)))
	if n.Path != "" {
		facts += "\n- path: " + n.Path
	}
	md := fmt.Sprintf("# %s\n\n`%s`\n\n%s\n\n%s", n.Label, n.UniqueID, facts, desc)
	out, err := glamour.Render(md, "dark")
	if err != nil {
		out = desc
	}
	vw, vh := m.width-8, m.height-6
	if vw > 80 {
		vw = 80
	}
	if vw < 20 {
		vw = 20
	}
	if vh > 20 {
		vh = 20
	}
	if vh < 5 {
		vh = 5
	}
	m.detailView = viewport.New(vw, vh)
	m.detailView.SetContent(out)
	m.showDetail = true
}

// truncate cuts s to at most w display cells, appending an ellipsis when
// anything was cut.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}

// padTo right-pads s with spaces to exactly w display cells.
func padTo(s string, w int) string {
	gap := w - lipgloss.Width(s)
	if gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// splitCells splits a string into single display cells for character-wise
// placement on the grid.
func splitCells(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
