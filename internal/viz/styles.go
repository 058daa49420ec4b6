package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are derived from a Theme on every render so that switching themes
// takes effect immediately.
type Styles struct {
	Canvas    lipgloss.Style
	Stats     lipgloss.Style
	Header    lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Graph     lipgloss.Style
	Help      lipgloss.Style
	Running   lipgloss.Style
	Paused    lipgloss.Style
	Recording lipgloss.Style
	Done      lipgloss.Style
	Failed    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Text),
		Stats: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		Header:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		Label:     lipgloss.NewStyle().Foreground(t.Muted).Width(13),
		Value:     lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Graph:     lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		Help:      lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		Running:   lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		Paused:    lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		Recording: lipgloss.NewStyle().Foreground(t.Error).Bold(true).Blink(true),
		Done:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Failed:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}

// ProgressBar renders a progress bar
func ProgressBar(percent float64, width int, t Theme) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case percent > 0.8:
		return lipgloss.NewStyle().Foreground(t.Success).Render(bar)
	case percent > 0.4:
		return lipgloss.NewStyle().Foreground(t.Warning).Render(bar)
	}
	return lipgloss.NewStyle().Foreground(t.Error).Render(bar)
}
