package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/arjunpatel/ghboard/internal/analytics"
	"github.com/arjunpatel/ghboard/internal/config"
	"github.com/arjunpatel/ghboard/internal/edit"
	"github.com/arjunpatel/ghboard/internal/events"
	"github.com/arjunpatel/ghboard/internal/ghclient"
	"github.com/arjunpatel/ghboard/internal/store"
	"github.com/arjunpatel/ghboard/internal/sync"
	"github.com/arjunpatel/ghboard/internal/uistate"
	"github.com/arjunpatel/ghboard/internal/viewmodel"
)

// Mode discriminates the UI's finite set of modal states (spec.md §2 C8,
// §9's "modal UI as an explicit state machine" redesign note). It replaces
// original_source/gh_task_viewer.py:run_ui's closures-over-nonlocal-flags
// (edit_mode, show_help, search_mode, ...) with a single tagged union.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeDateFilter
	ModeDetail
	ModeHelp
	ModeAdd
	ModeTaskEditor
	ModeSessionEditor
	ModeReport
)

// Model is the bubbletea model driving the whole application.
type Model struct {
	cfg    *config.Config
	st     *store.Store
	client *ghclient.Client
	engine *sync.Engine
	coord  *edit.Coordinator
	sink   *events.Sink

	vm *viewmodel.ViewModel

	uistatePath       string
	includeUnassigned bool
	mockFetch         bool

	width, height int
	mode          Mode
	statusLine    string
	statusIsError bool

	syncing      bool
	syncDone     chan sync.FetchResult
	progressDone int
	progressTot  int
	progressMsg  string

	search     textinput.Model
	dateFilter textinput.Model

	detail detailState
	help   help.Model
	keys   keyMap

	add addState

	taskEditor    *taskEditorState
	sessionEditor *sessionEditorState
	report        reportState

	activeURLs map[string]bool
	snapshots  map[string]analytics.TaskSnapshot

	quitting bool
}

// New constructs the top-level Model. sink should be a fresh events.Sink;
// the Model owns its lifetime.
func New(cfg *config.Config, st *store.Store, client *ghclient.Client, eng *sync.Engine, coord *edit.Coordinator, sink *events.Sink, uistatePath string, includeUnassigned, mockFetch bool) *Model {
	search := textinput.New()
	search.Placeholder = "search title, repo, status, project..."
	search.CharLimit = 200

	dateFilter := textinput.New()
	dateFilter.Placeholder = "YYYY-MM-DD"
	dateFilter.CharLimit = 10

	st2 := uistate.Load(uistatePath)

	m := &Model{
		cfg: cfg, st: st, client: client, engine: eng, coord: coord, sink: sink,
		vm:                viewmodel.New(nil),
		uistatePath:       uistatePath,
		includeUnassigned: includeUnassigned || st2.IncludeUnassigned,
		mockFetch:         mockFetch,
		mode:              ModeBrowse,
		syncDone:          make(chan sync.FetchResult, 1),
		search:            search,
		dateFilter:        dateFilter,
		help:              help.New(),
		keys:              defaultKeyMap(),
		activeURLs:        make(map[string]bool),
		snapshots:         make(map[string]analytics.TaskSnapshot),
	}
	m.vm.Filters.HideDone = st2.HideDone
	return m
}

// Init kicks off the initial row load, a background sync, the event
// listener, and the periodic ticker (spec.md §5 "a periodic ticker updates
// the status bar and drives the progress line").
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.reloadRowsCmd(),
		m.startSyncCmd(),
		waitForSyncResult(m.syncDone),
		waitForEvent(m.sink),
		tickCmd(),
		m.refreshActiveCmd(),
	)
}

// Update is the top-level message dispatcher. It handles process-wide
// messages itself and delegates key input to the handler for the current
// mode, matching spec.md §9's "reducer keyed on the current key binding."
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail.viewport.Width = msg.Width - 4
		m.detail.viewport.Height = msg.Height - 6
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.dispatchKey(msg)

	case rowsLoadedMsg:
		m.vm.SetRows(msg.rows)
		return m, nil

	case syncResultMsg:
		return m.handleSyncResult(msg)

	case eventMsg:
		return m.handleEvent(events.UpdateEvent(msg))

	case tickMsg:
		return m, tea.Batch(tickCmd(), m.refreshActiveCmd())

	case activeRefreshedMsg:
		m.activeURLs = msg.active
		m.snapshots = msg.snapshots
		return m, nil

	case labelsLoadedMsg:
		return m.handleLabelsLoaded(msg)

	case assigneesLoadedMsg:
		return m.handleAssigneesLoaded(msg)

	case sessionsLoadedMsg:
		return m.handleSessionsLoaded(msg)

	case reportLoadedMsg:
		m.report.periods = msg.periods
		m.report.byProject = msg.byProject
		m.report.byLabel = msg.byLabel
		return m, nil

	case createItemResultMsg:
		return m.handleCreateItemResult(msg)
	}
	return m, nil
}

func (m *Model) dispatchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeBrowse:
		return m.updateBrowse(msg)
	case ModeSearch:
		return m.updateSearch(msg)
	case ModeDateFilter:
		return m.updateDateFilter(msg)
	case ModeDetail:
		return m.updateDetail(msg)
	case ModeHelp:
		return m.updateHelp(msg)
	case ModeAdd:
		return m.updateAdd(msg)
	case ModeTaskEditor:
		return m.updateTaskEditor(msg)
	case ModeSessionEditor:
		return m.updateSessionEditor(msg)
	case ModeReport:
		return m.updateReport(msg)
	}
	return m, nil
}

// View dispatches rendering by mode. Search and date-filter are drawn by the
// browse view itself; help, detail, add, the two editors and the report
// replace the browse list entirely.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case ModeHelp:
		return m.viewHelp()
	case ModeDetail:
		return m.viewDetail()
	case ModeAdd:
		return m.viewAdd()
	case ModeTaskEditor:
		return m.viewTaskEditor()
	case ModeSessionEditor:
		return m.viewSessionEditor()
	case ModeReport:
		return m.viewReport()
	default:
		return m.viewBrowse()
	}
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusLine = msg
	m.statusIsError = isError
}

func (m *Model) saveUIState() {
	uistate.Save(m.uistatePath, uistate.State{
		HideDone:          m.vm.Filters.HideDone,
		TodayOnly:         m.vm.Filters.Today != "",
		IncludeUnassigned: m.includeUnassigned,
	})
}

// --- Messages ---

type rowsLoadedMsg struct{ rows []store.TaskRow }

type syncResultMsg struct {
	result sync.FetchResult
	err    error
}

type eventMsg events.UpdateEvent

type tickMsg time.Time

type activeRefreshedMsg struct {
	active    map[string]bool
	snapshots map[string]analytics.TaskSnapshot
}

// --- Commands ---

func (m *Model) reloadRowsCmd() tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rows, err := st.Load(ctx, store.LoadFilter{})
		if err != nil {
			return rowsLoadedMsg{}
		}
		return rowsLoadedMsg{rows: rows}
	}
}

func waitForEvent(sink *events.Sink) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-sink.Events()
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func waitForSyncResult(ch chan sync.FetchResult) tea.Cmd {
	return func() tea.Msg {
		result, ok := <-ch
		if !ok {
			return nil
		}
		return syncResultMsg{result: result}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) refreshActiveCmd() tea.Cmd {
	st := m.st
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		urls, err := st.ActiveTaskURLs(ctx)
		if err != nil {
			return nil
		}
		active := make(map[string]bool, len(urls))
		for _, u := range urls {
			active[u] = true
		}
		snap := make(map[string]analytics.TaskSnapshot, len(urls))
		if len(urls) > 0 {
			allURLs := urls
			sessions, err := st.SessionsBetween(ctx, "0000-01-01T00:00:00Z", time.Now().Add(24*time.Hour).Format(store.TimestampLayout))
			if err == nil {
				snap = analytics.TaskDurationSnapshot(sessions, allURLs, time.Now())
			}
		}
		return activeRefreshedMsg{active: active, snapshots: snap}
	}
}

func (m *Model) startSyncCmd() tea.Cmd {
	return func() tea.Msg {
		m.syncing = true
		go func() {
			ctx := context.Background()
			var result sync.FetchResult
			if m.mockFetch {
				result = sync.FetchResult{Rows: sync.GenerateMockTasks(m.cfg)}
			} else {
				r, err := m.engine.Fetch(ctx, m.cfg, m.includeUnassigned, func(done, total int, status string) {
					m.sink.Send(events.NewProgressTick(done, total, status))
				})
				if err != nil {
					result = sync.FetchResult{Partial: true, Message: err.Error()}
				} else {
					result = r
				}
			}
			m.syncDone <- result
		}()
		return nil
	}
}

func (m *Model) handleSyncResult(msg syncResultMsg) (tea.Model, tea.Cmd) {
	m.syncing = false
	result := msg.result
	if len(result.Rows) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := m.st.UpsertMany(ctx, result.Rows); err != nil {
			cancel()
			m.setStatus(fmt.Sprintf("sync commit failed: %v", err), true)
			return m, waitForSyncResult(m.syncDone)
		}
		cancel()
	}
	if result.Partial {
		m.setStatus(result.Message, true)
	} else {
		m.setStatus(fmt.Sprintf("Synced %d rows at %s", len(result.Rows), humanize.Time(time.Now())), false)
	}
	return m, tea.Batch(m.reloadRowsCmd(), waitForSyncResult(m.syncDone))
}

func (m *Model) handleEvent(e events.UpdateEvent) (tea.Model, tea.Cmd) {
	switch e.Kind {
	case events.StatusLine:
		isErr := containsFold(e.Message, "fail") || containsFold(e.Message, "refused") || containsFold(e.Message, "error")
		m.setStatus(e.Message, isErr)
		return m, waitForEvent(m.sink)
	case events.RowChanged:
		return m, tea.Batch(m.reloadRowsCmd(), waitForEvent(m.sink))
	case events.ProgressTick:
		m.progressDone, m.progressTot, m.progressMsg = e.Done, e.Total, e.Message
		return m, waitForEvent(m.sink)
	}
	return m, waitForEvent(m.sink)
}

func containsFold(haystack, needle string) bool {
	hl, nl := []rune(haystack), []rune(needle)
	if len(nl) == 0 {
		return true
	}
	lower := func(rs []rune) []rune {
		out := make([]rune, len(rs))
		for i, r := range rs {
			if r >= 'A' && r <= 'Z' {
				r += 32
			}
			out[i] = r
		}
		return out
	}
	hl, nl = lower(hl), lower(nl)
	for i := 0; i+len(nl) <= len(hl); i++ {
		match := true
		for j := range nl {
			if hl[i+j] != nl[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// detailState holds the scroll position for the detail pane.
type detailState struct {
	viewport viewport.Model
	url      string
}
