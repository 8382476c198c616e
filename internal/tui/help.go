package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
		m.mode = ModeBrowse
	}
	return m, nil
}

func (m *Model) viewHelp() string {
	full := m.help.FullHelpView(m.keys.FullHelp())
	return styleModalBorder.Render(styleHeader.Render("Keybindings") + "\n\n" + full + "\n\nesc to close")
}
