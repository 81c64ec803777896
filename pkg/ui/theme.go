package ui

import (
	"github.com/charmbracelet/lipgloss"

	"pipescope/pkg/model"
)

// Theme holds the adaptive color palette and the derived styles shared by
// every view. All styles are created through the theme's renderer so tests
// can use a color-stripped renderer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor

	// Run status colors
	Success  lipgloss.AdaptiveColor
	Error    lipgloss.AdaptiveColor
	Skipped  lipgloss.AdaptiveColor
	Stale    lipgloss.AdaptiveColor
	NeverRun lipgloss.AdaptiveColor

	// Node type accents
	Source   lipgloss.AdaptiveColor
	Exposure lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Dim      lipgloss.Style
}

// DefaultTheme builds the standard palette on the given renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"},
		Secondary: lipgloss.AdaptiveColor{Light: "#02A877", Dark: "#02BF87"},
		Muted:     lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"},
		Highlight: lipgloss.AdaptiveColor{Light: "#F2E7FE", Dark: "#3B3360"},
		Border:    lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"},

		Success:  lipgloss.AdaptiveColor{Light: "#188746", Dark: "#36C26E"},
		Error:    lipgloss.AdaptiveColor{Light: "#C5303E", Dark: "#ED567A"},
		Skipped:  lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"},
		Stale:    lipgloss.AdaptiveColor{Light: "#B08F26", Dark: "#E5C07B"},
		NeverRun: lipgloss.AdaptiveColor{Light: "#6E6E6E", Dark: "#888888"},

		Source:   lipgloss.AdaptiveColor{Light: "#1E6FD9", Dark: "#61AFEF"},
		Exposure: lipgloss.AdaptiveColor{Light: "#A626A4", Dark: "#C678DD"},
	}

	t.Base = r.NewStyle()
	t.Selected = r.NewStyle().Bold(true).Foreground(t.Primary).Background(t.Highlight)
	t.Header = r.NewStyle().Bold(true).Foreground(t.Primary)
	t.Footer = r.NewStyle().Foreground(t.Muted)
	t.Dim = r.NewStyle().Foreground(t.Muted)
	return t
}

// statusColor maps a run status to its theme color.
func (t Theme) statusColor(kind model.StatusKind) lipgloss.AdaptiveColor {
	switch kind {
	case model.StatusSuccess:
		return t.Success
	case model.StatusError:
		return t.Error
	case model.StatusSkipped:
		return t.Skipped
	case model.StatusStale:
		return t.Stale
	default:
		return t.NeverRun
	}
}
