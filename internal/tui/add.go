package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// addState holds the single-field form for adding an existing issue/PR to
// a project board by URL (spec.md §2 C8 "add" modal state;
// CreateProjectItem is spec'd in §4.2).
type addState struct {
	input     textinput.Model
	projectID string
}

func (m *Model) openAdd() {
	row, ok := m.vm.SelectedRow()
	projectID := ""
	if ok {
		projectID = row.ProjectID
	}
	if projectID == "" {
		m.setStatus("select a row from the target project first", true)
		return
	}
	in := textinput.New()
	in.Placeholder = "https://github.com/org/repo/issues/123"
	in.CharLimit = 300
	in.Focus()
	m.add = addState{input: in, projectID: projectID}
	m.mode = ModeAdd
}

func (m *Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.add.input.Blur()
		m.mode = ModeBrowse
		return m, nil
	case tea.KeyEnter:
		url := m.add.input.Value()
		if url == "" {
			m.setStatus("enter an issue or pull request URL", true)
			return m, nil
		}
		m.mode = ModeBrowse
		m.setStatus("adding "+url+"...", false)
		return m, m.createItemCmd(m.add.projectID, url)
	}
	var cmd tea.Cmd
	m.add.input, cmd = m.add.input.Update(msg)
	return m, cmd
}

func (m *Model) viewAdd() string {
	return styleModalBorder.Render(styleHeader.Render("Add item to project") + "\n\n" + m.add.input.View() + "\n\nenter to add, esc to cancel")
}

type createItemResultMsg struct {
	url string
	err error
}

func (m *Model) createItemCmd(projectID, url string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		contentID, err := client.ResolveContentID(ctx, url)
		if err != nil {
			return createItemResultMsg{url: url, err: err}
		}
		if _, err := client.CreateProjectItem(ctx, projectID, contentID); err != nil {
			return createItemResultMsg{url: url, err: err}
		}
		return createItemResultMsg{url: url}
	}
}

func (m *Model) handleCreateItemResult(msg createItemResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("add item failed for %s: %v", msg.url, msg.err), true)
		return m, nil
	}
	m.setStatus("added "+msg.url+"; refresh to see it", false)
	return m, nil
}
