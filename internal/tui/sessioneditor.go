package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arjunpatel/ghboard/internal/edit"
	"github.com/arjunpatel/ghboard/internal/store"
)

// sessionEditorSub is the session editor's own small state machine: a list
// of logged sessions for one task, with start/end rewrite per spec.md §8
// scenario 6 ("End must be after start" / "Invalid start timestamp").
type sessionEditorSub int

const (
	sessionList sessionEditorSub = iota
	sessionEditStart
	sessionEditEnd
)

type sessionEditorState struct {
	taskURL  string
	sessions []store.WorkSession
	cursor   int
	loading  bool
	sub      sessionEditorSub
	input    textinput.Model
}

// openSessionEditorCmd switches into the session editor for url and returns
// the command that loads its sessions.
func (m *Model) openSessionEditorCmd(url string) tea.Cmd {
	m.sessionEditor = &sessionEditorState{taskURL: url, loading: true}
	m.mode = ModeSessionEditor
	return m.loadSessionsCmd(url)
}

type sessionsLoadedMsg struct {
	url      string
	sessions []store.WorkSession
	err      error
}

func (m *Model) loadSessionsCmd(url string) tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sessions, err := st.AllSessionsForTask(ctx, url)
		return sessionsLoadedMsg{url: url, sessions: sessions, err: err}
	}
}

func (m *Model) handleSessionsLoaded(msg sessionsLoadedMsg) (tea.Model, tea.Cmd) {
	se := m.sessionEditor
	if se == nil || se.taskURL != msg.url {
		return m, nil
	}
	se.loading = false
	if msg.err != nil {
		m.setStatus("loading sessions failed: "+msg.err.Error(), true)
		return m, nil
	}
	se.sessions = msg.sessions
	if se.cursor >= len(se.sessions) {
		se.cursor = len(se.sessions) - 1
	}
	if se.cursor < 0 {
		se.cursor = 0
	}
	return m, nil
}

func (m *Model) updateSessionEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	se := m.sessionEditor
	if se == nil {
		m.mode = ModeBrowse
		return m, nil
	}
	switch se.sub {
	case sessionEditStart:
		return m.updateSessionEditField(msg, true)
	case sessionEditEnd:
		return m.updateSessionEditField(msg, false)
	}
	return m.updateSessionList(msg)
}

func (m *Model) updateSessionList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	se := m.sessionEditor
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeBrowse
		m.sessionEditor = nil
		return m, nil
	case tea.KeyUp:
		if se.cursor > 0 {
			se.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if se.cursor < len(se.sessions)-1 {
			se.cursor++
		}
		return m, nil
	}
	if se.cursor < 0 || se.cursor >= len(se.sessions) {
		return m, nil
	}
	sess := se.sessions[se.cursor]
	switch msg.String() {
	case "s":
		se.sub = sessionEditStart
		se.input = newSessionTimeInput(sess.StartedAt)
		return m, nil
	case "e":
		se.sub = sessionEditEnd
		se.input = newSessionTimeInput(sess.EndedAt)
		return m, nil
	case "d":
		st := m.st
		id := sess.ID
		url := se.taskURL
		return m, tea.Batch(func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			st.DeleteSession(ctx, id)
			return nil
		}, m.loadSessionsCmd(url))
	}
	return m, nil
}

func newSessionTimeInput(storedUTC string) textinput.Model {
	in := textinput.New()
	in.Placeholder = "2006-01-02 15:04"
	in.CharLimit = 40
	if storedUTC != "" {
		if t, err := time.Parse(store.TimestampLayout, storedUTC); err == nil {
			in.SetValue(t.Local().Format(edit.SessionTimestampLayout))
		}
	}
	in.Focus()
	return in
}

func (m *Model) updateSessionEditField(msg tea.KeyMsg, isStart bool) (tea.Model, tea.Cmd) {
	se := m.sessionEditor
	switch msg.Type {
	case tea.KeyEsc:
		se.sub = sessionList
		return m, nil
	case tea.KeyEnter:
		sess := se.sessions[se.cursor]
		raw := se.input.Value()

		var other time.Time
		var otherErr error
		if isStart {
			if sess.EndedAt != "" {
				other, otherErr = time.Parse(store.TimestampLayout, sess.EndedAt)
			}
		} else {
			other, otherErr = time.Parse(store.TimestampLayout, sess.StartedAt)
		}
		if otherErr != nil {
			m.setStatus("stored session timestamp is corrupt: "+otherErr.Error(), true)
			return m, nil
		}

		var newStart, newEnd string
		if isStart {
			_, formatted, err := edit.ValidateSessionStart(raw, other)
			if err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			newStart, newEnd = formatted, sess.EndedAt
		} else {
			_, formatted, err := edit.ValidateSessionEnd(raw, other)
			if err != nil {
				m.setStatus(err.Error(), true)
				return m, nil
			}
			newStart, newEnd = sess.StartedAt, formatted
		}

		st := m.st
		id := sess.ID
		url := se.taskURL
		se.sub = sessionList
		m.setStatus("session updated", false)
		return m, tea.Batch(func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := st.UpdateSessionTimes(ctx, id, newStart, newEnd); err != nil {
				return nil
			}
			return nil
		}, m.loadSessionsCmd(url))
	}
	var cmd tea.Cmd
	se.input, cmd = se.input.Update(msg)
	return m, cmd
}

func (m *Model) viewSessionEditor() string {
	se := m.sessionEditor
	if se == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", styleHeader.Render("Sessions"), se.taskURL)

	switch se.sub {
	case sessionEditStart:
		b.WriteString("New start (2006-01-02 15:04): " + se.input.View())
	case sessionEditEnd:
		b.WriteString("New end (2006-01-02 15:04): " + se.input.View())
	default:
		if se.loading {
			b.WriteString("loading sessions...")
		} else if len(se.sessions) == 0 {
			b.WriteString("no logged sessions for this task")
		} else {
			for i, sess := range se.sessions {
				line := renderSessionLine(sess)
				if i == se.cursor {
					line = styleSelected.Render(line)
				}
				b.WriteString(line + "\n")
			}
			b.WriteString("\ns: edit start  e: edit end  d: delete")
		}
	}
	b.WriteString("\n\nesc to go back")
	return styleModalBorder.Render(b.String())
}

func renderSessionLine(sess store.WorkSession) string {
	start := localOrRaw(sess.StartedAt)
	end := "running"
	if sess.EndedAt != "" {
		end = localOrRaw(sess.EndedAt)
	}
	return fmt.Sprintf("  %s -> %s", start, end)
}

func localOrRaw(stamp string) string {
	t, err := time.Parse(store.TimestampLayout, stamp)
	if err != nil {
		return stamp
	}
	return t.Local().Format(edit.SessionTimestampLayout)
}
