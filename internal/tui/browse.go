package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arjunpatel/ghboard/internal/store"
)

// updateBrowse handles key input while in the main list view, grounded on
// original_source/gh_task_viewer.py:run_ui's top-level key switch
// (today/hide-done/project-cycle/search/date-filter/refresh handlers),
// reshaped per spec.md §9 into explicit Mode transitions instead of
// setting nonlocal flags.
func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.saveUIState()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.vm.MoveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.vm.MoveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Edit):
		row, ok := m.vm.SelectedRow()
		if !ok {
			return m, nil
		}
		m.openTaskEditor(row)
		return m, nil

	case key.Matches(msg, m.keys.Detail):
		row, ok := m.vm.SelectedRow()
		if !ok {
			return m, nil
		}
		m.openDetail(row)
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.search.SetValue(m.vm.Filters.Search)
		m.search.Focus()
		return m, nil

	case key.Matches(msg, m.keys.DateFilter):
		m.mode = ModeDateFilter
		m.dateFilter.SetValue(m.vm.Filters.DateMax)
		m.dateFilter.Focus()
		return m, nil

	case key.Matches(msg, m.keys.ClearFilters):
		m.vm.Filters = m.vm.Filters.Cleared()
		return m, nil

	case key.Matches(msg, m.keys.HideDone):
		m.vm.Filters.HideDone = !m.vm.Filters.HideDone
		m.saveUIState()
		return m, nil

	case key.Matches(msg, m.keys.CycleProject):
		m.vm.CycleProject()
		return m, nil

	case key.Matches(msg, m.keys.IterationMode):
		m.vm.Filters.IterationMode = !m.vm.Filters.IterationMode
		return m, nil

	case key.Matches(msg, m.keys.IncludeCreated):
		m.vm.Filters.IncludeCreated = !m.vm.Filters.IncludeCreated
		return m, nil

	case key.Matches(msg, m.keys.IncludeUnassigned):
		m.includeUnassigned = !m.includeUnassigned
		m.saveUIState()
		if m.syncing {
			return m, nil
		}
		m.setStatus("Refreshing with unassigned items...", false)
		return m, m.startSyncCmd()

	case key.Matches(msg, m.keys.Refresh):
		if m.syncing {
			m.setStatus("Refresh already in progress", false)
			return m, nil
		}
		m.setStatus("Refreshing...", false)
		return m, m.startSyncCmd()

	case key.Matches(msg, m.keys.Add):
		m.openAdd()
		return m, nil

	case key.Matches(msg, m.keys.StartStop):
		row, ok := m.vm.SelectedRow()
		if !ok {
			return m, nil
		}
		return m, m.toggleTimerCmd(row)

	case key.Matches(msg, m.keys.SessionEditor):
		row, ok := m.vm.SelectedRow()
		if !ok {
			return m, nil
		}
		return m, m.openSessionEditorCmd(row.URL)

	case key.Matches(msg, m.keys.Report):
		m.mode = ModeReport
		return m, m.loadReportCmd()

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil
	}
	return m, nil
}

// toggleTimerCmd starts a session for row if none is running, or stops the
// running one, per spec.md §5 "exactly one open session per URL."
func (m *Model) toggleTimerCmd(row store.TaskRow) tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if m.activeURLs[row.URL] {
			_ = st.StopSession(ctx, row.URL, store.Now())
		} else {
			_, _ = st.StartSession(ctx, row.URL, row.ProjectTitle, row.Labels, store.Now())
		}
		return nil
	}
}

func (m *Model) viewBrowse() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("ghboard") + "  ")
	b.WriteString(m.filterSummary())
	b.WriteString("\n")
	switch m.mode {
	case ModeSearch:
		b.WriteString(m.viewSearchOverlay() + "\n")
	case ModeDateFilter:
		b.WriteString(m.viewDateFilterOverlay() + "\n")
	default:
		b.WriteString("\n")
	}

	rows := m.vm.Apply()
	today := time.Now().Format("2006-01-02")

	if len(rows) == 0 {
		b.WriteString("  (no items match the current filters)\n")
	}

	height := m.height - 6
	if height < 3 {
		height = 3
	}
	start := 0
	if m.vm.Selected >= height {
		start = m.vm.Selected - height + 1
	}
	end := start + height
	if end > len(rows) {
		end = len(rows)
	}

	for i := start; i < end; i++ {
		r := rows[i]
		line := m.renderRow(r, today)
		if i == m.vm.Selected {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatusBar())
	return b.String()
}

func (m *Model) renderRow(r store.TaskRow, today string) string {
	dur := ""
	if snap, ok := m.snapshots[r.URL]; ok && snap.Total > 0 {
		dur = " (" + formatDuration(snap.Total) + ")"
	}
	marker := "  "
	if m.activeURLs[r.URL] {
		marker = "▶ "
	}
	ds := dateStyle(r.StartDate, today, r.IsDone)
	date := r.StartDate
	if date == "" {
		date = "----------"
	}
	dirty := ""
	if r.StatusDirty || r.PriorityDirty {
		dirty = styleDirty.Render(" *")
	}
	title := r.Title
	if r.IsDone {
		title = styleDone.Render(title)
	}
	return fmt.Sprintf("%s%-10s  %-18s  %-14s  %s%s%s",
		marker, ds.Render(date), truncate(r.ProjectTitle, 18), truncate(r.Status, 14), title, dirty, dur)
}

func (m *Model) filterSummary() string {
	f := m.vm.Filters
	var parts []string
	if f.HideDone {
		parts = append(parts, "hide-done")
	}
	if f.Project != "" {
		parts = append(parts, "project="+f.Project)
	}
	if f.Search != "" {
		parts = append(parts, "search=\""+f.Search+"\"")
	}
	if f.DateMax != "" {
		parts = append(parts, "date<="+f.DateMax)
	}
	if f.IterationMode {
		parts = append(parts, "iteration-mode")
	}
	if f.IncludeCreated {
		parts = append(parts, "+authored")
	}
	if m.includeUnassigned {
		parts = append(parts, "+unassigned")
	}
	if len(parts) == 0 {
		return styleHeader.Render("no filters")
	}
	return styleHeader.Render(strings.Join(parts, "  "))
}

func (m *Model) viewStatusBar() string {
	line := m.statusLine
	if m.syncing && m.progressMsg != "" {
		line = m.progressMsg
	}
	style := styleStatusBar
	if m.statusIsError {
		style = style.Copy().Foreground(lipgloss.Color("203"))
	}
	help := m.help.View(m.keys)
	return style.Width(m.width).Render(line) + "\n" + help
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

// formatDuration renders a second count as "1h23m" / "45m", the compact
// form used throughout the browse list and report views.
func formatDuration(totalSeconds int64) string {
	if totalSeconds <= 0 {
		return "0m"
	}
	d := time.Duration(totalSeconds) * time.Second
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
