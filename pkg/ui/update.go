// update.go - The event loop: every message is interpreted relative to
// the current Mode, with one handler per mode.
package ui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"pipescope/pkg/runner"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.recalcCanvas()
		return m, nil

	case runTickMsg:
		m.drainRunMessages()
		if m.run.Phase == RunRunning {
			return m, runTickCmd()
		}
		return m, nil

	case artifactChangedMsg:
		if err := m.store.Reload(m.graph); err != nil {
			m.setStatus("artifact reload failed: "+err.Error(), true)
		} else {
			m.setStatus("run statuses refreshed", false)
		}
		return m, watchArtifactCmd(m.watch)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		switch m.mode {
		case ModeNormal:
			return m, m.handleNormalKey(msg)
		case ModeSearch:
			return m, m.handleSearchKey(msg)
		case ModeRunMenu:
			return m, m.handleRunMenuKey(msg)
		case ModeRunConfirm:
			return m, m.handleRunConfirmKey(msg)
		case ModeRunOutput:
			return m, m.handleRunOutputKey(msg)
		case ModeContextMenu:
			return m, m.handleContextMenuKey(msg)
		case ModeFilterInput:
			return m, m.handleFilterKey(msg)
		}
	}
	return m, nil
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.watch != nil {
			m.watch.Stop()
		}
		return tea.Quit

	case "tab", "n":
		m.cycleNext()
	case "shift+tab", "N":
		m.cyclePrev()

	case "h", "left":
		m.navigateHorizontal(-1)
	case "l", "right":
		m.navigateHorizontal(1)
	case "k", "up":
		m.navigateVertical(-1)
	case "j", "down":
		m.navigateVertical(1)

	case "ctrl+n":
		m.moveDisplayCursor(1)
	case "ctrl+p":
		m.moveDisplayCursor(-1)
	case "enter":
		m.toggleCursorRow()
	case "z":
		m.toggleSelectedGroup()

	case "shift+left":
		m.pan(-panStep, 0)
	case "shift+right":
		m.pan(panStep, 0)
	case "shift+up":
		m.pan(0, -panStep)
	case "shift+down":
		m.pan(0, panStep)
	case "c":
		m.centerOnSelected()

	case "+", "=":
		m.zoomIn()
	case "-":
		m.zoomOut()
	case "0":
		m.setZoom(1.0)

	case "/":
		m.enterSearch()
		return nil

	case "p":
		m.togglePathHighlight()

	case "f":
		m.mode = ModeFilterInput
		m.filterInput.SetValue("")
		m.filterInput.Focus()
	case "F":
		m.clearFilters()
		m.setStatus("filters cleared", false)

	case "r":
		if m.selected >= 0 {
			m.mode = ModeRunMenu
			m.menuCursor = 0
		} else {
			m.setStatus("select a node first", true)
		}
	case "o":
		if m.run.Phase != RunIdle {
			m.mode = ModeRunOutput
		} else {
			m.setStatus("no run yet", true)
		}

	case "m":
		if m.selected >= 0 {
			m.mode = ModeContextMenu
			m.ctxCursor = 0
		}

	case "d":
		m.toggleDetail()
	case "y":
		m.yankSelected()

	case "esc":
		switch {
		case m.showDetail:
			m.showDetail = false
		case len(m.highlight) > 0:
			m.clearHighlight()
		case m.statusMsg != "":
			m.setStatus("", false)
		default:
			m.clearSelection()
		}
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.leaveSearch()
		return nil
	case "enter":
		m.leaveSearch()
		return nil
	case "ctrl+n", "down":
		m.stepSearch(1)
		return nil
	case "ctrl+p", "up":
		m.stepSearch(-1)
		return nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.refreshSearch()
	return cmd
}

// Run menu rows, addressed by menuCursor.
const (
	menuRowKind = iota
	menuRowScope
	menuRowWrapper
	menuRowCount
)

func (m *Model) handleRunMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
	case "j", "down":
		m.menuCursor = (m.menuCursor + 1) % menuRowCount
	case "k", "up":
		m.menuCursor = (m.menuCursor + menuRowCount - 1) % menuRowCount
	case "h", "left":
		m.adjustMenuRow(-1)
	case "l", "right", " ":
		m.adjustMenuRow(1)
	case "enter":
		m.mode = ModeRunConfirm
	}
	return nil
}

func (m *Model) adjustMenuRow(delta int) {
	switch m.menuCursor {
	case menuRowKind:
		if m.runMenu.kind == runner.KindRun {
			m.runMenu.kind = runner.KindTest
		} else {
			m.runMenu.kind = runner.KindRun
		}
	case menuRowScope:
		n := len(scopeNames)
		m.runMenu.scope = runner.Scope((int(m.runMenu.scope) + delta + n) % n)
	case menuRowWrapper:
		m.runMenu.useWrapper = !m.runMenu.useWrapper
	}
}

func (m *Model) handleRunConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "n":
		m.mode = ModeRunMenu
	case "y", "enter":
		req, ok := m.buildRequest()
		if !ok {
			m.mode = ModeNormal
			m.setStatus("selection gone, run cancelled", true)
			return nil
		}
		m.mode = ModeRunOutput
		return m.startRun(req)
	}
	return nil
}

func (m *Model) handleRunOutputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		// The run keeps going in the background; ticks keep draining.
		m.mode = ModeNormal
	case "j", "down":
		m.outputFollow = false
		m.outputScroll++
		m.clampOutputScroll()
	case "k", "up":
		m.outputFollow = false
		if m.outputScroll > 0 {
			m.outputScroll--
		}
	case "g":
		m.outputFollow = false
		m.outputScroll = 0
	case "G":
		m.outputFollow = true
	}
	return nil
}

// Context menu actions, addressed by ctxCursor.
var contextActions = []string{
	"run this node",
	"test this node",
	"highlight dependency path",
	"copy unique id",
	"show description",
	"collapse group",
}

func (m *Model) handleContextMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "m":
		m.mode = ModeNormal
	case "j", "down":
		m.ctxCursor = (m.ctxCursor + 1) % len(contextActions)
	case "k", "up":
		m.ctxCursor = (m.ctxCursor + len(contextActions) - 1) % len(contextActions)
	case "enter":
		return m.runContextAction()
	}
	return nil
}

func (m *Model) runContextAction() tea.Cmd {
	m.mode = ModeNormal
	switch m.ctxCursor {
	case 0, 1:
		if m.ctxCursor == 0 {
			m.runMenu.kind = runner.KindRun
		} else {
			m.runMenu.kind = runner.KindTest
		}
		m.mode = ModeRunMenu
		m.menuCursor = menuRowScope
	case 2:
		m.togglePathHighlight()
	case 3:
		m.yankSelected()
	case 4:
		m.toggleDetail()
	case 5:
		m.toggleSelectedGroup()
	}
	return nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.filterInput.Blur()
		return nil
	case "enter":
		m.mode = ModeNormal
		m.filterInput.Blur()
		m.applyFilterExpr(m.filterInput.Value())
		return nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return cmd
}

const panStep = 4

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.mode != ModeNormal {
		return nil
	}
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if id, ok := m.hitTest(msg.X, msg.Y); ok {
			m.selectNode(id, false)
		}
	case msg.Button == tea.MouseButtonWheelUp:
		m.pan(0, -panStep/2)
	case msg.Button == tea.MouseButtonWheelDown:
		m.pan(0, panStep/2)
	}
	return nil
}

// yankSelected copies the selected node's unique ID to the clipboard.
func (m *Model) yankSelected() {
	if m.selected < 0 {
		return
	}
	uid := m.graph.Node(m.selected).UniqueID
	if err := clipboard.WriteAll(uid); err != nil {
		m.setStatus("clipboard unavailable: "+err.Error(), true)
		return
	}
	m.setStatus("copied "+uid, false)
}

// clampOutputScroll keeps the scroll offset inside the output buffer.
func (m *Model) clampOutputScroll() {
	maxTop := len(m.run.Output) - m.outputVisibleLines()
	if maxTop < 0 {
		maxTop = 0
	}
	if m.outputScroll > maxTop {
		m.outputScroll = maxTop
	}
}
