// Package tui implements the UI driver (C8): a bubbletea full-screen
// event loop over a finite set of modal states, grounded on cklxx-elephant.ai's
// cmd/alex/tui_chat package (Model-Update-View, lipgloss rendering,
// viewport/textinput sub-models) since the teacher itself (linear-fuse) is
// a FUSE filesystem with no TUI of its own — see SPEC_FULL.md §4.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

	styleStatusBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.Color("24")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	styleDone = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)

	styleOverdue = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleToday   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleUpcoming = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	styleDirty = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))

	styleHeader = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("245"))

	styleHelpKey  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	styleHelpDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	styleModalBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")).Padding(0, 1)
)

// dateStyle picks a color based on a row's start date relative to today:
// overdue (red), today (amber), future (neutral), or done (dim strike).
func dateStyle(startDate, today string, isDone bool) lipgloss.Style {
	if isDone {
		return styleDone
	}
	switch {
	case startDate == "":
		return styleUpcoming
	case startDate < today:
		return styleOverdue
	case startDate == today:
		return styleToday
	default:
		return styleUpcoming
	}
}
