package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arjunpatel/ghboard/internal/store"
)

// openDetail populates the scrollable read-only detail pane for row,
// grounded on original_source/gh_task_viewer.py:run_ui's detail overlay
// (every field the task carries, plus its full option lists; session
// history is not shown here).
func (m *Model) openDetail(row store.TaskRow) {
	m.detail.url = row.URL
	m.detail.viewport.SetContent(renderDetailBody(row))
	m.detail.viewport.GotoTop()
	m.mode = ModeDetail
}

func renderDetailBody(r store.TaskRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", styleTitle.Render(r.Title), r.URL)
	fmt.Fprintf(&b, "Project:   %s (#%d)\n", r.ProjectTitle, r.ProjectNumber)
	fmt.Fprintf(&b, "Repo:      %s\n", r.Repo)
	fmt.Fprintf(&b, "Status:    %s\n", r.Status)
	fmt.Fprintf(&b, "Priority:  %s\n", r.Priority)
	fmt.Fprintf(&b, "Start:     %s (%s)\n", r.StartDate, r.StartField)
	fmt.Fprintf(&b, "End:       %s (%s)\n", r.EndDate, r.EndField)
	fmt.Fprintf(&b, "Focus:     %s (%s)\n", r.FocusDate, r.FocusField)
	if r.IterationTitle != "" {
		fmt.Fprintf(&b, "Iteration: %s (starts %s, %dd)\n", r.IterationTitle, r.IterationStart, r.IterationDuration)
	}
	fmt.Fprintf(&b, "Assignees: %s\n", strings.Join(r.AssigneeLogins, ", "))
	fmt.Fprintf(&b, "Labels:    %s\n", strings.Join(r.Labels, ", "))
	fmt.Fprintf(&b, "Assigned to me: %v   Created by me: %v\n", r.AssignedToMe, r.CreatedByMe)
	fmt.Fprintf(&b, "Updated:   %s\n", r.UpdatedAt)
	if len(r.StatusOptions) > 0 {
		b.WriteString("\nStatus options:\n")
		for _, o := range r.StatusOptions {
			b.WriteString("  - " + o.Name + "\n")
		}
	}
	if len(r.PriorityOptions) > 0 {
		b.WriteString("\nPriority options:\n")
		for _, o := range r.PriorityOptions {
			b.WriteString("  - " + o.Name + "\n")
		}
	}
	return b.String()
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Detail), key.Matches(msg, m.keys.Quit):
		m.mode = ModeBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.detail.viewport, cmd = m.detail.viewport.Update(msg)
	return m, cmd
}

func (m *Model) viewDetail() string {
	return styleModalBorder.Render(m.detail.viewport.View()) + "\n" + styleHelpDesc.Render("esc/space to close, ↑/↓ to scroll")
}
