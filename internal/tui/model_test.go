package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arjunpatel/ghboard/internal/config"
	"github.com/arjunpatel/ghboard/internal/discovery"
	"github.com/arjunpatel/ghboard/internal/edit"
	"github.com/arjunpatel/ghboard/internal/events"
	"github.com/arjunpatel/ghboard/internal/ghclient"
	"github.com/arjunpatel/ghboard/internal/store"
	"github.com/arjunpatel/ghboard/internal/sync"
)

// newTestModel builds a Model wired to a temp-dir SQLite store and an empty
// discovery cache, with no network calls made: tests here only exercise the
// Update/View dispatch, never the sync/edit goroutines.
func newTestModel(t *testing.T) *Model {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "ghboard.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cache, err := discovery.Load(filepath.Join(dir, "discovery.json"))
	if err != nil {
		t.Fatalf("discovery.Load: %v", err)
	}

	client := ghclient.New("test-token", ghclient.DefaultOptions())
	engine := sync.NewEngine(client, cache)
	sink := events.NewSink(8)
	coord := edit.NewCoordinator(st, client, sink)

	cfg := &config.Config{User: "octocat"}
	uistatePath := filepath.Join(dir, "uistate.json")

	m := New(cfg, st, client, engine, coord, sink, uistatePath, false, true)
	m.width, m.height = 120, 40
	return m
}

func seedTestRow(t *testing.T, m *Model, url string) store.TaskRow {
	t.Helper()
	row := store.TaskRow{
		OwnerType: "org", Owner: "acme", ProjectID: "PVT_1", ProjectNumber: 1, ProjectTitle: "Roadmap",
		Title: "Ship the thing", URL: url, ItemID: "item-1", ContentNodeID: "I_1", Repo: "acme/repo",
		Status: "In Progress", StatusOptionID: "opt-in-progress",
		Labels:    []string{"bug"},
		UpdatedAt: "2026-07-20T10:00:00Z", LastSeenAt: "2026-07-20T10:00:00Z",
	}
	if err := m.st.UpsertMany(context.Background(), []store.TaskRow{row}); err != nil {
		t.Fatalf("seed row: %v", err)
	}
	m.vm.SetRows([]store.TaskRow{row})
	return row
}

func TestNewModelStartsInBrowseMode(t *testing.T) {
	m := newTestModel(t)
	if m.mode != ModeBrowse {
		t.Fatalf("mode = %v, want ModeBrowse", m.mode)
	}
	if m.quitting {
		t.Fatalf("new model should not be quitting")
	}
}

func TestWindowSizeMsgResizesSubviews(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	mm := updated.(*Model)
	if mm.width != 100 || mm.height != 50 {
		t.Fatalf("width/height = %d/%d, want 100/50", mm.width, mm.height)
	}
	if mm.detail.viewport.Width != 96 {
		t.Fatalf("detail viewport width = %d, want 96", mm.detail.viewport.Width)
	}
}

func TestDispatchKeyRoutesByMode(t *testing.T) {
	m := newTestModel(t)
	seedTestRow(t, m, "https://github.com/acme/repo/issues/1")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	mm := updated.(*Model)
	if mm.mode != ModeSearch {
		t.Fatalf("after '/': mode = %v, want ModeSearch", mm.mode)
	}

	updated, _ = mm.Update(tea.KeyMsg{Type: tea.KeyEsc})
	mm = updated.(*Model)
	if mm.mode != ModeBrowse {
		t.Fatalf("after esc: mode = %v, want ModeBrowse", mm.mode)
	}
}

func TestQuitKeySetsQuittingAndReturnsQuitCmd(t *testing.T) {
	m := newTestModel(t)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	mm := updated.(*Model)
	if !mm.quitting {
		t.Fatalf("quitting = false, want true")
	}
	if cmd == nil {
		t.Fatalf("expected a quit cmd, got nil")
	}
}
