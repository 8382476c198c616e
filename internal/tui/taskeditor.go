package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arjunpatel/ghboard/internal/ghclient"
	"github.com/arjunpatel/ghboard/internal/store"
)

// editorSubState is the task editor's own state machine, spec.md §4.4:
// "States: list, edit-date-calendar, priority-select, status-select,
// edit-labels, edit-assignees, edit-comment, iteration-select."
type editorSubState int

const (
	editorList editorSubState = iota
	editorDateCalendar
	editorPrioritySelect
	editorStatusSelect
	editorLabels
	editorAssignees
	editorComment
	editorIterationSelect
)

var editorFieldNames = []string{
	"Status", "Priority", "Start date", "End date", "Focus date",
	"Iteration", "Labels", "Assignees", "Add comment",
}

// taskEditorState is one editor per task, per spec.md §4.4.
type taskEditorState struct {
	row        store.TaskRow
	sub        editorSubState
	listCursor int
	itemCursor int

	dateField store.DateField
	dateInput textinput.Model

	selectCursor int

	labelsLoading bool
	labelChoices  []ghclient.Option
	labelSelected map[string]bool
	generation    int

	assigneesLoading bool
	assigneeChoices  []ghclient.RepoUser
	assigneeSelected map[string]bool

	commentInput textinput.Model
}

func (m *Model) openTaskEditor(row store.TaskRow) {
	m.taskEditor = &taskEditorState{row: row, sub: editorList}
	m.mode = ModeTaskEditor
}

func (m *Model) updateTaskEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	te := m.taskEditor
	if te == nil {
		m.mode = ModeBrowse
		return m, nil
	}
	switch te.sub {
	case editorList:
		return m.updateEditorList(msg)
	case editorStatusSelect:
		return m.updateEditorOptionSelect(msg, te.row.StatusOptions, m.commitStatus)
	case editorPrioritySelect:
		return m.updateEditorOptionSelect(msg, te.row.PriorityOptions, m.commitPriority)
	case editorIterationSelect:
		return m.updateEditorOptionSelect(msg, te.row.IterationOptions, m.commitIteration)
	case editorDateCalendar:
		return m.updateEditorDate(msg)
	case editorLabels:
		return m.updateEditorLabels(msg)
	case editorAssignees:
		return m.updateEditorAssignees(msg)
	case editorComment:
		return m.updateEditorComment(msg)
	}
	return m, nil
}

func (m *Model) updateEditorList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	te := m.taskEditor
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeBrowse
		m.taskEditor = nil
		return m, nil
	case tea.KeyUp:
		if te.listCursor > 0 {
			te.listCursor--
		}
		return m, nil
	case tea.KeyDown:
		if te.listCursor < len(editorFieldNames)-1 {
			te.listCursor++
		}
		return m, nil
	case tea.KeyEnter:
		return m.enterEditorField()
	}
	return m, nil
}

func (m *Model) enterEditorField() (tea.Model, tea.Cmd) {
	te := m.taskEditor
	switch te.listCursor {
	case 0:
		te.sub = editorStatusSelect
		te.selectCursor = optionIndex(te.row.StatusOptions, te.row.StatusOptionID)
	case 1:
		te.sub = editorPrioritySelect
		te.selectCursor = optionIndex(te.row.PriorityOptions, te.row.PriorityOptionID)
	case 2:
		te.sub = editorDateCalendar
		te.dateField = store.StartDateField
		te.dateInput = newDateInput(te.row.StartDate)
	case 3:
		te.sub = editorDateCalendar
		te.dateField = store.EndDateField
		te.dateInput = newDateInput(te.row.EndDate)
	case 4:
		te.sub = editorDateCalendar
		te.dateField = store.FocusDateField
		te.dateInput = newDateInput(te.row.FocusDate)
	case 5:
		te.sub = editorIterationSelect
		te.selectCursor = optionIndex(te.row.IterationOptions, te.row.IterationOptionID)
	case 6:
		te.sub = editorLabels
		te.itemCursor = 0
		te.labelsLoading = true
		te.generation++
		te.labelSelected = map[string]bool{}
		for _, l := range te.row.Labels {
			te.labelSelected[l] = true
		}
		return m, m.loadLabelsCmd(te.row.Repo, te.generation)
	case 7:
		te.sub = editorAssignees
		te.itemCursor = 0
		te.assigneesLoading = true
		te.generation++
		te.assigneeSelected = map[string]bool{}
		for _, l := range te.row.AssigneeLogins {
			te.assigneeSelected[l] = true
		}
		return m, m.loadAssigneesCmd(te.row.Repo, te.generation)
	case 8:
		te.sub = editorComment
		te.commentInput = textinput.New()
		te.commentInput.Placeholder = "comment body"
		te.commentInput.CharLimit = 2000
		te.commentInput.Focus()
	}
	return m, nil
}

func newDateInput(value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = "YYYY-MM-DD"
	in.CharLimit = 10
	in.SetValue(value)
	in.Focus()
	return in
}

func optionIndex(opts []store.Option, id string) int {
	for i, o := range opts {
		if o.ID == id {
			return i
		}
	}
	return 0
}

// --- Status / Priority / Iteration select ---

func (m *Model) updateEditorOptionSelect(msg tea.KeyMsg, opts []store.Option, commit func(store.Option)) (tea.Model, tea.Cmd) {
	te := m.taskEditor
	switch msg.Type {
	case tea.KeyEsc:
		te.sub = editorList
		return m, nil
	case tea.KeyUp:
		if te.selectCursor > 0 {
			te.selectCursor--
		}
		return m, nil
	case tea.KeyDown:
		if te.selectCursor < len(opts)-1 {
			te.selectCursor++
		}
		return m, nil
	case tea.KeyEnter:
		if te.selectCursor >= 0 && te.selectCursor < len(opts) {
			commit(opts[te.selectCursor])
		}
		te.sub = editorList
		m.mode = ModeBrowse
		m.taskEditor = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) commitStatus(opt store.Option) {
	te := m.taskEditor
	r := te.row
	m.coord.EditStatus(context.Background(), r.URL, r.ProjectID, r.ItemID, r.StatusFieldID, "Status", opt.Name, opt.ID, r.Status, r.StatusOptionID)
	m.setStatus("Updating status...", false)
}

func (m *Model) commitPriority(opt store.Option) {
	te := m.taskEditor
	r := te.row
	m.coord.EditPriority(context.Background(), r.URL, r.ProjectID, r.ItemID, r.PriorityFieldID, "Priority", opt.Name, opt.ID, r.Priority, r.PriorityOptionID)
	m.setStatus("Updating priority...", false)
}

func (m *Model) commitIteration(opt store.Option) {
	te := m.taskEditor
	r := te.row
	m.coord.EditIteration(context.Background(), r.URL, r.ProjectID, r.ItemID, "", r.IterationField, opt.ID, opt.Name, "", 0,
		r.IterationOptionID, r.IterationTitle, r.IterationStart, r.IterationDuration)
	m.setStatus("Updating iteration...", false)
}

// --- Date ---

func (m *Model) updateEditorDate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	te := m.taskEditor
	switch msg.Type {
	case tea.KeyEsc:
		te.sub = editorList
		return m, nil
	case tea.KeyEnter:
		r := te.row
		value := te.dateInput.Value()
		var fieldName, prior, priorField string
		switch te.dateField {
		case store.EndDateField:
			fieldName, prior, priorField = r.EndField, r.EndDate, r.EndField
		case store.FocusDateField:
			fieldName, prior, priorField = r.FocusField, r.FocusDate, r.FocusField
		default:
			fieldName, prior, priorField = r.StartField, r.StartDate, r.StartField
		}
		// fieldID is always unknown here: date fields carry only their
		// display name on TaskRow, so the coordinator resolves (and caches)
		// the node id from fieldName on first use.
		if err := m.coord.EditDate(context.Background(), r.URL, r.ProjectID, r.ItemID, "", te.dateField, fieldName, value, priorField, prior); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Updating date...", false)
		m.mode = ModeBrowse
		m.taskEditor = nil
		return m, nil
	}
	var cmd tea.Cmd
	te.dateInput, cmd = te.dateInput.Update(msg)
	return m, cmd
}

// --- Labels ---

type labelsLoadedMsg struct {
	generation int
	choices    []ghclient.Option
	err        error
}

func (m *Model) loadLabelsCmd(repo string, generation int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		choices, err := client.ListRepoLabels(ctx, repo, 0)
		return labelsLoadedMsg{generation: generation, choices: choices, err: err}
	}
}

func (m *Model) handleLabelsLoaded(msg labelsLoadedMsg) (tea.Model, tea.Cmd) {
	te := m.taskEditor
	if te == nil || msg.generation != te.generation {
		return m, nil
	}
	te.labelsLoading = false
	if msg.err != nil {
		m.setStatus("loading labels failed: "+msg.err.Error(), true)
		return m, nil
	}
	// Keep unknown labels already on the task so the user can retain them
	// (spec.md §4.4 "Unknown labels already on the task are retained").
	known := map[string]bool{}
	for _, c := range msg.choices {
		known[c.Name] = true
	}
	choices := append([]ghclient.Option{}, msg.choices...)
	for _, l := range te.row.Labels {
		if !known[l] {
			choices = append(choices, ghclient.Option{ID: "", Name: l})
		}
	}
	te.labelChoices = choices
	return m, nil
}

func (m *Model) updateEditorLabels(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	te := m.taskEditor
	switch msg.Type {
	case tea.KeyEsc:
		te.sub = editorList
		return m, nil
	case tea.KeyUp:
		if te.itemCursor > 0 {
			te.itemCursor--
		}
		return m, nil
	case tea.KeyDown:
		if te.itemCursor < len(te.labelChoices)-1 {
			te.itemCursor++
		}
		return m, nil
	case tea.KeySpace:
		if te.itemCursor >= 0 && te.itemCursor < len(te.labelChoices) {
			name := te.labelChoices[te.itemCursor].Name
			te.labelSelected[name] = !te.labelSelected[name]
		}
		return m, nil
	case tea.KeyEnter:
		if te.labelsLoading {
			m.setStatus("labels still loading", true)
			return m, nil
		}
		var names, ids []string
		for _, c := range te.labelChoices {
			if te.labelSelected[c.Name] {
				names = append(names, c.Name)
				ids = append(ids, c.ID)
			}
		}
		r := te.row
		m.coord.EditLabels(context.Background(), r.URL, r.ContentNodeID, names, ids, r.Labels)
		m.setStatus("Updating labels...", false)
		m.mode = ModeBrowse
		m.taskEditor = nil
		return m, nil
	}
	return m, nil
}

// --- Assignees ---

type assigneesLoadedMsg struct {
	generation int
	choices    []ghclient.RepoUser
	err        error
}

func (m *Model) loadAssigneesCmd(repo string, generation int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		choices, err := client.ListRepoAssignees(ctx, repo, 0)
		return assigneesLoadedMsg{generation: generation, choices: choices, err: err}
	}
}

func (m *Model) handleAssigneesLoaded(msg assigneesLoadedMsg) (tea.Model, tea.Cmd) {
	te := m.taskEditor
	if te == nil || msg.generation != te.generation {
		return m, nil
	}
	te.assigneesLoading = false
	if msg.err != nil {
		m.setStatus("loading assignees failed: "+msg.err.Error(), true)
		return m, nil
	}
	te.assigneeChoices = msg.choices
	return m, nil
}

func (m *Model) updateEditorAssignees(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	te := m.taskEditor
	switch msg.Type {
	case tea.KeyEsc:
		te.sub = editorList
		return m, nil
	case tea.KeyUp:
		if te.itemCursor > 0 {
			te.itemCursor--
		}
		return m, nil
	case tea.KeyDown:
		if te.itemCursor < len(te.assigneeChoices)-1 {
			te.itemCursor++
		}
		return m, nil
	case tea.KeySpace:
		if te.itemCursor >= 0 && te.itemCursor < len(te.assigneeChoices) {
			login := te.assigneeChoices[te.itemCursor].Login
			te.assigneeSelected[login] = !te.assigneeSelected[login]
		}
		return m, nil
	case tea.KeyEnter:
		if te.assigneesLoading {
			m.setStatus("assignees still loading", true)
			return m, nil
		}
		var ids, logins []string
		for _, c := range te.assigneeChoices {
			if te.assigneeSelected[c.Login] {
				ids = append(ids, c.ID)
				logins = append(logins, c.Login)
			}
		}
		r := te.row
		m.coord.EditAssignees(context.Background(), r.URL, r.ContentNodeID, ids, logins, r.AssigneeUserIDs, r.AssigneeLogins)
		m.setStatus("Updating assignees...", false)
		m.mode = ModeBrowse
		m.taskEditor = nil
		return m, nil
	}
	return m, nil
}

// --- Comment ---

func (m *Model) updateEditorComment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	te := m.taskEditor
	switch msg.Type {
	case tea.KeyEsc:
		te.sub = editorList
		return m, nil
	case tea.KeyEnter:
		body := te.commentInput.Value()
		r := te.row
		if err := m.coord.AddComment(context.Background(), r.URL, r.ContentNodeID, body); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Posting comment...", false)
		m.mode = ModeBrowse
		m.taskEditor = nil
		return m, nil
	}
	var cmd tea.Cmd
	te.commentInput, cmd = te.commentInput.Update(msg)
	return m, cmd
}

// --- Rendering ---

func (m *Model) viewTaskEditor() string {
	te := m.taskEditor
	if te == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", styleTitle.Render(te.row.Title), te.row.URL)

	switch te.sub {
	case editorList:
		for i, name := range editorFieldNames {
			line := fmt.Sprintf("  %s", name)
			if i == te.listCursor {
				line = styleSelected.Render(fmt.Sprintf("> %s", name))
			}
			b.WriteString(line + "\n")
		}
	case editorStatusSelect:
		b.WriteString(renderOptionList("Status", te.row.StatusOptions, te.selectCursor))
	case editorPrioritySelect:
		b.WriteString(renderOptionList("Priority", te.row.PriorityOptions, te.selectCursor))
	case editorIterationSelect:
		b.WriteString(renderOptionList("Iteration", te.row.IterationOptions, te.selectCursor))
	case editorDateCalendar:
		b.WriteString("Date (YYYY-MM-DD): " + te.dateInput.View())
	case editorLabels:
		if te.labelsLoading {
			b.WriteString("loading labels...")
		} else {
			for i, c := range te.labelChoices {
				mark := "[ ]"
				if te.labelSelected[c.Name] {
					mark = "[x]"
				}
				line := fmt.Sprintf("  %s %s", mark, c.Name)
				if i == te.itemCursor {
					line = styleSelected.Render(line)
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\nspace to toggle, enter to save")
		}
	case editorAssignees:
		if te.assigneesLoading {
			b.WriteString("loading assignees...")
		} else {
			for i, c := range te.assigneeChoices {
				mark := "[ ]"
				if te.assigneeSelected[c.Login] {
					mark = "[x]"
				}
				line := fmt.Sprintf("  %s %s", mark, c.Login)
				if i == te.itemCursor {
					line = styleSelected.Render(line)
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\nspace to toggle, enter to save")
		}
	case editorComment:
		b.WriteString("Comment: " + te.commentInput.View())
	}

	b.WriteString("\n\nesc to go back")
	return styleModalBorder.Render(b.String())
}

func renderOptionList(title string, opts []store.Option, cursor int) string {
	var b strings.Builder
	b.WriteString(styleHeader.Render(title) + "\n")
	for i, o := range opts {
		line := "  " + o.Name
		if i == cursor {
			line = styleSelected.Render("> " + o.Name)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
