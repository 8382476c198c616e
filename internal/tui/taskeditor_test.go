package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arjunpatel/ghboard/internal/ghclient"
	"github.com/arjunpatel/ghboard/internal/store"
)

func taskEditorTestRow(url string) store.TaskRow {
	return store.TaskRow{
		OwnerType: "org", Owner: "acme", ProjectID: "PVT_1", ProjectNumber: 1, ProjectTitle: "Roadmap",
		Title: "Ship the thing", URL: url, ItemID: "item-1", ContentNodeID: "I_1", Repo: "acme/repo",
		Status: "Todo", StatusOptionID: "opt-todo",
		StatusOptions: []store.Option{{ID: "opt-todo", Name: "Todo"}, {ID: "opt-done", Name: "Done"}},
		Labels:        []string{"bug"},
		UpdatedAt:     "2026-07-20T10:00:00Z", LastSeenAt: "2026-07-20T10:00:00Z",
	}
}

func TestEnterEditorFieldStatusOpensSelectAtCurrentOption(t *testing.T) {
	m := newTestModel(t)
	row := taskEditorTestRow("https://github.com/acme/repo/issues/1")
	seedTestRow(t, m, row.URL)
	m.openTaskEditor(row)

	m.taskEditor.listCursor = 0
	updated, _ := m.enterEditorField()
	mm := updated.(*Model)
	if mm.taskEditor.sub != editorStatusSelect {
		t.Fatalf("sub = %v, want editorStatusSelect", mm.taskEditor.sub)
	}
	if mm.taskEditor.selectCursor != 0 {
		t.Fatalf("selectCursor = %d, want 0 (Todo is StatusOptions[0])", mm.taskEditor.selectCursor)
	}
}

func TestLeavingLabelsPreservesListCursor(t *testing.T) {
	m := newTestModel(t)
	row := taskEditorTestRow("https://github.com/acme/repo/issues/2")
	seedTestRow(t, m, row.URL)
	m.openTaskEditor(row)

	m.taskEditor.listCursor = 6 // "Labels" field
	updated, _ := m.enterEditorField()
	mm := updated.(*Model)
	if mm.taskEditor.sub != editorLabels {
		t.Fatalf("sub = %v, want editorLabels", mm.taskEditor.sub)
	}

	mm.taskEditor.itemCursor = 2 // simulate the user moving within the labels list
	updated, _ = mm.updateEditorLabels(tea.KeyMsg{Type: tea.KeyEsc})
	mm = updated.(*Model)
	if mm.taskEditor.sub != editorList {
		t.Fatalf("sub after esc = %v, want editorList", mm.taskEditor.sub)
	}
	if mm.taskEditor.listCursor != 6 {
		t.Fatalf("listCursor = %d, want 6 (unchanged by the labels sub-editor)", mm.taskEditor.listCursor)
	}
}

func TestOptionIndexFindsSelectedOption(t *testing.T) {
	opts := []store.Option{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	if got := optionIndex(opts, "b"); got != 1 {
		t.Fatalf("optionIndex(b) = %d, want 1", got)
	}
	if got := optionIndex(opts, "missing"); got != 0 {
		t.Fatalf("optionIndex(missing) = %d, want 0 (default)", got)
	}
}

func TestUpdateEditorListEscClearsEditor(t *testing.T) {
	m := newTestModel(t)
	row := taskEditorTestRow("https://github.com/acme/repo/issues/3")
	seedTestRow(t, m, row.URL)
	m.openTaskEditor(row)

	updated, _ := m.updateEditorList(tea.KeyMsg{Type: tea.KeyEsc})
	mm := updated.(*Model)
	if mm.mode != ModeBrowse {
		t.Fatalf("mode = %v, want ModeBrowse", mm.mode)
	}
	if mm.taskEditor != nil {
		t.Fatalf("taskEditor should be nil after esc")
	}
}

func TestNewDateInputPrefillsValue(t *testing.T) {
	in := newDateInput("2026-07-29")
	if in.Value() != "2026-07-29" {
		t.Fatalf("Value() = %q, want %q", in.Value(), "2026-07-29")
	}
}

func TestHandleLabelsLoadedRetainsUnknownExistingLabels(t *testing.T) {
	m := newTestModel(t)
	row := taskEditorTestRow("https://github.com/acme/repo/issues/4")
	row.Labels = []string{"bug", "needs-triage"}
	seedTestRow(t, m, row.URL)
	m.openTaskEditor(row)
	m.taskEditor.sub = editorLabels
	m.taskEditor.generation = 1

	msg := labelsLoadedMsg{
		generation: 1,
		choices:    []ghclient.Option{{ID: "L_bug", Name: "bug"}},
	}
	updated, _ := m.handleLabelsLoaded(msg)
	mm := updated.(*Model)

	names := map[string]bool{}
	for _, c := range mm.taskEditor.labelChoices {
		names[c.Name] = true
	}
	if !names["bug"] || !names["needs-triage"] {
		t.Fatalf("labelChoices = %#v, want both fetched and retained-unknown labels", mm.taskEditor.labelChoices)
	}
}

func TestHandleLabelsLoadedIgnoresStaleGeneration(t *testing.T) {
	m := newTestModel(t)
	row := taskEditorTestRow("https://github.com/acme/repo/issues/5")
	seedTestRow(t, m, row.URL)
	m.openTaskEditor(row)
	m.taskEditor.sub = editorLabels
	m.taskEditor.generation = 2

	updated, _ := m.handleLabelsLoaded(labelsLoadedMsg{generation: 1, choices: []ghclient.Option{{ID: "L_x", Name: "x"}}})
	mm := updated.(*Model)
	if mm.taskEditor.labelChoices != nil {
		t.Fatalf("stale-generation labelsLoadedMsg should be ignored, got %#v", mm.taskEditor.labelChoices)
	}
}
