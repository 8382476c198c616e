package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func seedTestSession(t *testing.T, m *Model, url string) {
	t.Helper()
	_, err := m.st.StartSession(context.Background(), url, "Roadmap", []string{"bug"}, "2026-07-20T09:00:00Z")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := m.st.StopSession(context.Background(), url, "2026-07-20T10:00:00Z"); err != nil {
		t.Fatalf("StopSession: %v", err)
	}
}

func TestOpenSessionEditorLoadsSessions(t *testing.T) {
	m := newTestModel(t)
	url := "https://github.com/acme/repo/issues/1"
	seedTestSession(t, m, url)

	cmd := m.openSessionEditorCmd(url)
	if m.mode != ModeSessionEditor {
		t.Fatalf("mode = %v, want ModeSessionEditor", m.mode)
	}
	msg := cmd()
	loaded, ok := msg.(sessionsLoadedMsg)
	if !ok {
		t.Fatalf("loadSessionsCmd() returned %T, want sessionsLoadedMsg", msg)
	}
	if len(loaded.sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(loaded.sessions))
	}

	updated, _ := m.handleSessionsLoaded(loaded)
	mm := updated.(*Model)
	if mm.sessionEditor.loading {
		t.Fatalf("loading still true after handleSessionsLoaded")
	}
	if len(mm.sessionEditor.sessions) != 1 {
		t.Fatalf("sessionEditor.sessions not populated")
	}
}

func TestSessionEditorEscReturnsToBrowse(t *testing.T) {
	m := newTestModel(t)
	url := "https://github.com/acme/repo/issues/2"
	m.openSessionEditorCmd(url)

	updated, _ := m.updateSessionEditor(tea.KeyMsg{Type: tea.KeyEsc})
	mm := updated.(*Model)
	if mm.mode != ModeBrowse {
		t.Fatalf("mode after esc = %v, want ModeBrowse", mm.mode)
	}
	if mm.sessionEditor != nil {
		t.Fatalf("sessionEditor should be cleared after esc")
	}
}

func TestSessionEditorEditStartRejectsInvalidTimestamp(t *testing.T) {
	m := newTestModel(t)
	url := "https://github.com/acme/repo/issues/3"
	seedTestSession(t, m, url)
	m.openSessionEditorCmd(url)

	sessions, err := m.st.AllSessionsForTask(context.Background(), url)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("AllSessionsForTask() = %v, %v", sessions, err)
	}
	m.sessionEditor.sessions = sessions

	updated, _ := m.updateSessionList(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	mm := updated.(*Model)
	if mm.sessionEditor.sub != sessionEditStart {
		t.Fatalf("sub = %v, want sessionEditStart", mm.sessionEditor.sub)
	}

	mm.sessionEditor.input.SetValue("not-a-timestamp")
	updated, _ = mm.updateSessionEditField(tea.KeyMsg{Type: tea.KeyEnter}, true)
	mm = updated.(*Model)
	if mm.sessionEditor.sub != sessionEditStart {
		t.Fatalf("invalid timestamp should not leave sessionEditStart, sub = %v", mm.sessionEditor.sub)
	}
	if !mm.statusIsError || mm.statusLine != "Invalid start timestamp" {
		t.Fatalf("statusLine = %q (isError=%v), want \"Invalid start timestamp\"", mm.statusLine, mm.statusIsError)
	}
}
