package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// updateSearch drives the live search box: every keystroke updates
// Filters.Search immediately so the filtered list reflows as the user
// types, matching original_source/gh_task_viewer.py's incremental search
// mode. Enter or Escape both return to browse; Escape additionally clears
// the term.
func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = ModeBrowse
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.vm.Filters.Search = ""
		m.search.SetValue("")
		m.search.Blur()
		m.mode = ModeBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.vm.Filters.Search = m.search.Value()
	return m, cmd
}

func (m *Model) viewSearchOverlay() string {
	return "Search: " + m.search.View()
}
