package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arjunpatel/ghboard/internal/edit"
)

// updateDateFilter edits Filters.DateMax, the ISO date upper bound on
// start_date (spec.md §6 C6). Enter commits after validating the date
// parses; an empty value clears the bound.
func (m *Model) updateDateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		val := m.dateFilter.Value()
		if val != "" {
			if err := edit.ValidateDate(val); err != nil {
				m.setStatus("invalid date filter: "+val, true)
				return m, nil
			}
		}
		m.vm.Filters.DateMax = val
		m.dateFilter.Blur()
		m.mode = ModeBrowse
		return m, nil
	case tea.KeyEsc:
		m.dateFilter.Blur()
		m.mode = ModeBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.dateFilter, cmd = m.dateFilter.Update(msg)
	return m, cmd
}

func (m *Model) viewDateFilterOverlay() string {
	return "Date max (YYYY-MM-DD): " + m.dateFilter.View()
}
