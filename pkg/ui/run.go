// run.go - Run lifecycle: the RunMenu selections, the live run state, and
// the per-tick non-blocking drain of runner messages.
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pipescope/pkg/runner"
)

// RunPhase is the lifecycle of the current (or last) run.
type RunPhase int

const (
	RunIdle RunPhase = iota
	RunRunning
	RunFinished
)

// RunState tracks one external invocation. A fresh start discards the
// previous state entirely; there is no backward transition.
type RunState struct {
	Phase   RunPhase
	Request runner.Request
	Output  []string
	Success bool

	ch <-chan tea.Msg
}

// runMenuState holds the RunMenu's pending choices until confirmation.
type runMenuState struct {
	kind       runner.Kind
	scope      runner.Scope
	useWrapper bool
}

// scopeNames indexes runner.Scope for menu rendering.
var scopeNames = []string{
	"this node only",
	"with ancestors (+x)",
	"with descendants (x+)",
	"with both (+x+)",
}

// runTickMsg drives the drain loop while a run is active.
type runTickMsg time.Time

const runTickInterval = 80 * time.Millisecond

func runTickCmd() tea.Cmd {
	return tea.Tick(runTickInterval, func(t time.Time) tea.Msg {
		return runTickMsg(t)
	})
}

// buildRequest materializes the menu choices into an immutable request
// for the currently selected node.
func (m *Model) buildRequest() (runner.Request, bool) {
	if m.selected < 0 {
		return runner.Request{}, false
	}
	n := m.graph.Node(m.selected)
	return runner.Request{
		Kind:       m.runMenu.kind,
		Scope:      m.runMenu.scope,
		Label:      n.Label,
		WorkDir:    m.projectDir,
		UseWrapper: m.runMenu.useWrapper,
		Program:    m.cfg.Command.Program,
		Wrapper:    m.cfg.Command.Wrapper,
	}, true
}

// startRun hands the request to the runner, discarding any previous run
// state, and starts the drain ticker.
func (m *Model) startRun(req runner.Request) tea.Cmd {
	m.run = RunState{
		Phase:   RunRunning,
		Request: req,
		ch:      runner.Spawn(req),
	}
	m.outputScroll = 0
	m.outputFollow = true
	return runTickCmd()
}

// drainRunMessages performs one non-blocking drain of everything the
// runner has produced so far. Called once per tick; never blocks the
// render loop.
func (m *Model) drainRunMessages() {
	if m.run.Phase != RunRunning || m.run.ch == nil {
		return
	}
	for {
		select {
		case msg, ok := <-m.run.ch:
			if !ok {
				// Channel torn down without a terminal message: treat as
				// a failed completion, never leave the run hanging.
				m.finishRun(false, "command stream disconnected")
				return
			}
			switch v := msg.(type) {
			case runner.OutputMsg:
				m.run.Output = append(m.run.Output, v.Line)
			case runner.SpawnErrorMsg:
				m.finishRun(false, v.Err)
				return
			case runner.DoneMsg:
				m.finishRun(v.Success, "")
				return
			}
		default:
			return
		}
	}
}

// finishRun transitions to Finished and reloads run statuses from the
// artifact store, merging new results over old ones.
func (m *Model) finishRun(success bool, note string) {
	if note != "" {
		m.run.Output = append(m.run.Output, note)
	}
	m.run.Phase = RunFinished
	m.run.Success = success
	m.run.ch = nil

	if err := m.store.Reload(m.graph); err != nil {
		m.setStatus(fmt.Sprintf("status reload failed: %v", err), true)
	}
}
