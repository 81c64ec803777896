// Package ui implements the interactive terminal application: a layered
// canvas of the pipeline graph on the right, a grouped node list on the
// left, and modal overlays for search, runs, filters, and node details.
package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pipescope/pkg/analysis"
	"pipescope/pkg/config"
	"pipescope/pkg/layout"
	"pipescope/pkg/model"
	"pipescope/pkg/runner"
	"pipescope/pkg/watcher"
)

// Mode is the closed set of input modes. Update dispatches on it
// exhaustively; every key event is interpreted relative to the mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeRunMenu
	ModeRunConfirm
	ModeRunOutput
	ModeContextMenu
	ModeFilterInput
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeSearch:
		return "search"
	case ModeRunMenu:
		return "run-menu"
	case ModeRunConfirm:
		return "run-confirm"
	case ModeRunOutput:
		return "run-output"
	case ModeContextMenu:
		return "context-menu"
	case ModeFilterInput:
		return "filter"
	default:
		return "unknown"
	}
}

// Store is the slice of the run-status store the UI needs. The concrete
// implementation lives in internal/runstore.
type Store interface {
	Status(uid string) model.RunStatus
	Reload(g *model.Graph) error
	ArtifactPath() string
}

// Model is the whole application state. It owns the immutable graph and
// layout, the mutable interaction state, and the in-flight run.
type Model struct {
	graph      *model.Graph
	layout     *layout.Layout
	store      Store
	watch      *watcher.Watcher
	cfg        config.Config
	theme      Theme
	projectDir string

	mode  Mode
	ready bool

	width  int
	height int

	// Selection and keyboard cycling. selected is -1 when nothing is
	// selected; cycleIdx indexes layout.Order().
	selected model.NodeID
	cycleIdx int

	// Grouped left panel.
	groups        []NodeGroup
	collapsed     map[string]bool
	display       []DisplayEntry
	displayCursor int

	// Viewport over the world-space canvas.
	viewX, viewY                int
	zoom                        float64
	canvasOriginX, canvasOriginY int
	canvasWidth, canvasHeight   int

	// Search.
	searchInput   textinput.Model
	searchResults []model.NodeID
	searchCursor  int

	// Display filters. enabledTypes never hides the selected node's row;
	// filtering is presentation only and never touches layout.
	enabledTypes map[model.NodeType]bool
	statusFilter *model.StatusKind
	filterInput  textinput.Model

	// Path highlight and its impact report.
	highlight       map[model.NodeID]bool
	highlightSource model.NodeID
	impact          *analysis.Report

	// Run lifecycle.
	run          RunState
	runMenu      runMenuState
	menuCursor   int
	outputScroll int
	outputFollow bool

	// Context menu for the node under the cursor.
	ctxCursor int

	// Detail overlay (rendered description).
	showDetail bool
	detailView viewport.Model

	statusMsg   string
	statusIsErr bool
}

// New assembles the application model around an already loaded graph and
// its computed layout.
func New(g *model.Graph, l *layout.Layout, store Store, w *watcher.Watcher, cfg config.Config, projectDir string) *Model {
	si := textinput.New()
	si.Prompt = "/"
	si.Placeholder = "search"
	si.CharLimit = 128

	fi := textinput.New()
	fi.Prompt = "filter: "
	fi.CharLimit = 64

	m := &Model{
		graph:        g,
		layout:       l,
		store:        store,
		watch:        w,
		cfg:          cfg,
		theme:        DefaultTheme(lipgloss.DefaultRenderer()),
		projectDir:   projectDir,
		selected:     -1,
		cycleIdx:     -1,
		collapsed:    make(map[string]bool),
		zoom:         1.0,
		searchInput:  si,
		filterInput:  fi,
		enabledTypes: make(map[model.NodeType]bool),
		highlight:    make(map[model.NodeID]bool),
		outputFollow: true,
		runMenu:      runMenuState{kind: runner.KindRun, useWrapper: true},
	}
	m.highlightSource = -1

	for _, t := range model.AllNodeTypes {
		m.enabledTypes[t] = true
	}
	for _, name := range cfg.UI.HiddenTypes {
		for _, t := range model.AllNodeTypes {
			if string(t) == name {
				m.enabledTypes[t] = false
			}
		}
	}

	m.groups = buildGroups(l.Order(), g)
	m.rebuildDisplay()
	return m
}

// rebuildDisplay recomputes the flattened left-panel rows and clamps the
// cursor into range.
func (m *Model) rebuildDisplay() {
	m.display = buildDisplayList(m.groups, m.collapsed)
	if m.displayCursor >= len(m.display) {
		m.displayCursor = len(m.display) - 1
	}
	if m.displayCursor < 0 {
		m.displayCursor = 0
	}
}

// setStatus records a transient footer message.
func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsErr = isErr
}

// Init starts the artifact watcher subscription.
func (m *Model) Init() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	return watchArtifactCmd(m.watch)
}
