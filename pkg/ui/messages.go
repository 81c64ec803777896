// messages.go - Messages produced outside the key/mouse event stream.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"pipescope/pkg/watcher"
)

// artifactChangedMsg signals that the run-results artifact was rewritten
// on disk by something other than us.
type artifactChangedMsg struct{}

// watchArtifactCmd blocks on the watcher's change channel and re-arms
// itself after every delivery.
func watchArtifactCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return artifactChangedMsg{}
	}
}
