package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the browse-mode key set, grounded on cklxx-elephant.ai's
// tui_chat handleKeyPress switch but reshaped into bubbles/key bindings so
// the help overlay (ModeHelp) can render ShortHelp/FullHelp directly.
type keyMap struct {
	Up, Down       key.Binding
	Enter          key.Binding
	Escape         key.Binding
	Quit           key.Binding
	Refresh        key.Binding
	Search         key.Binding
	DateFilter     key.Binding
	ClearFilters   key.Binding
	HideDone       key.Binding
	CycleProject   key.Binding
	IterationMode  key.Binding
	IncludeCreated key.Binding
	IncludeUnassigned key.Binding
	Detail         key.Binding
	Help           key.Binding
	Add            key.Binding
	Edit           key.Binding
	StartStop      key.Binding
	SessionEditor  key.Binding
	Report         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:             key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/confirm")),
		Escape:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back/cancel")),
		Quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Refresh:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		DateFilter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "date filter")),
		ClearFilters:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		HideDone:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hide done")),
		CycleProject:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle project")),
		IterationMode:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "iteration mode")),
		IncludeCreated: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "include authored")),
		IncludeUnassigned: key.NewBinding(key.WithKeys("U"), key.WithHelp("shift+u", "include unassigned")),
		Detail:         key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "detail")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Add:            key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "add item")),
		Edit:           key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		StartStop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start/stop timer")),
		SessionEditor:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "sessions")),
		Report:         key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "report")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Search, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Escape, k.Detail},
		{k.Search, k.DateFilter, k.ClearFilters, k.HideDone, k.CycleProject},
		{k.IterationMode, k.IncludeCreated, k.IncludeUnassigned},
		{k.Add, k.Edit, k.StartStop, k.SessionEditor, k.Report},
		{k.Refresh, k.Help, k.Quit},
	}
}
