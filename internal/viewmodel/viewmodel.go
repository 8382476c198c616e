// Package viewmodel holds the in-memory, filtered view over the synced
// task rows that the TUI renders from. It replaces
// original_source/gh_task_viewer.py:run_ui's closures over mutable
// outer-scope variables (show_today_only, hide_done, project_cycle,
// search_term, ...) with an explicit struct and a pure Apply method, per
// spec.md §9's redesign note calling for exactly that change.
package viewmodel

import (
	"sort"
	"strings"

	"github.com/arjunpatel/ghboard/internal/store"
)

// Filters narrows the row snapshot down to what the UI currently shows.
// Empty-string fields mean "no constraint"; bool fields default to
// permissive (false = don't filter), except IncludeCreated, whose false
// default drops rows the user authored but isn't assigned to.
type Filters struct {
	Today          string // ISO date; non-empty restricts to rows whose StartDate equals it
	NoDate         bool   // when Today is set, also keep rows with an empty StartDate
	HideDone       bool
	Project        string
	Search         string
	DateMax        string // ISO date upper bound on StartDate, inclusive; empty = no bound
	IterationMode  bool   // sort/group by iteration title instead of start date
	IncludeCreated bool   // keep rows the user authored but isn't assigned to
}

// Cleared returns the zero-value Filters, i.e. "no constraints at all",
// used by the TUI's clear-filters key to reset browsing in one step.
func (f Filters) Cleared() Filters {
	return Filters{}
}

// ViewModel is the mutable state the TUI reads each render: the full
// fetched snapshot, the active filters, and the current selection.
type ViewModel struct {
	Rows     []store.TaskRow
	Filters  Filters
	Selected int
}

// New builds a ViewModel over a freshly loaded row snapshot.
func New(rows []store.TaskRow) *ViewModel {
	return &ViewModel{Rows: rows}
}

// SetRows replaces the snapshot (after a sync or store reload), clamping
// the selection into range.
func (vm *ViewModel) SetRows(rows []store.TaskRow) {
	vm.Rows = rows
	vm.clampSelection(len(vm.Apply()))
}

// Apply recomputes the filtered, sorted row list from the current
// snapshot and filters. It performs no mutation and has no hidden state,
// grounded on apply_filters/filtered_rows but reshaped into a pure
// function of (Rows, Filters).
func (vm *ViewModel) Apply() []store.TaskRow {
	return apply(vm.Rows, vm.Filters)
}

func apply(rows []store.TaskRow, f Filters) []store.TaskRow {
	out := make([]store.TaskRow, 0, len(rows))
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	for _, r := range rows {
		if f.HideDone && r.IsDone {
			continue
		}
		if f.Project != "" && r.ProjectTitle != f.Project {
			continue
		}
		if f.Today != "" {
			keep := r.StartDate == f.Today
			if !keep && f.NoDate && r.StartDate == "" {
				keep = true
			}
			if !keep {
				continue
			}
		}
		if f.DateMax != "" && r.StartDate != "" && r.StartDate > f.DateMax {
			continue
		}
		if !f.IncludeCreated && r.CreatedByMe && !r.AssignedToMe {
			continue
		}
		if needle != "" && !matchesSearch(r, needle) {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProjectTitle != out[j].ProjectTitle {
			return out[i].ProjectTitle < out[j].ProjectTitle
		}
		if f.IterationMode && out[i].IterationTitle != out[j].IterationTitle {
			return out[i].IterationTitle < out[j].IterationTitle
		}
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate < out[j].StartDate
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func matchesSearch(r store.TaskRow, needle string) bool {
	fields := []string{r.Title, r.Repo, r.Status, r.ProjectTitle}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Projects lists the distinct project titles present in the current
// snapshot, in first-seen order, grounded on projects_list.
func (vm *ViewModel) Projects() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range vm.Rows {
		if seen[r.ProjectTitle] {
			continue
		}
		seen[r.ProjectTitle] = true
		out = append(out, r.ProjectTitle)
	}
	return out
}

// CycleProject advances Filters.Project through Projects(), wrapping to
// "no filter" after the last one, grounded on run_ui's project_cycle
// nonlocal-mutation handler.
func (vm *ViewModel) CycleProject() {
	projs := vm.Projects()
	if len(projs) == 0 {
		vm.Filters.Project = ""
		return
	}
	if vm.Filters.Project == "" {
		vm.Filters.Project = projs[0]
		return
	}
	for i, p := range projs {
		if p == vm.Filters.Project {
			if i+1 < len(projs) {
				vm.Filters.Project = projs[i+1]
			} else {
				vm.Filters.Project = ""
			}
			return
		}
	}
	vm.Filters.Project = projs[0]
}

// MoveSelection shifts Selected by delta, clamped into the filtered
// row range.
func (vm *ViewModel) MoveSelection(delta int) {
	n := len(vm.Apply())
	vm.Selected += delta
	vm.clampSelection(n)
}

func (vm *ViewModel) clampSelection(n int) {
	if n == 0 {
		vm.Selected = 0
		return
	}
	if vm.Selected < 0 {
		vm.Selected = 0
	}
	if vm.Selected >= n {
		vm.Selected = n - 1
	}
}

// SelectedRow returns the row at Selected in the current filtered view,
// or false if the view is empty.
func (vm *ViewModel) SelectedRow() (store.TaskRow, bool) {
	rows := vm.Apply()
	if vm.Selected < 0 || vm.Selected >= len(rows) {
		return store.TaskRow{}, false
	}
	return rows[vm.Selected], true
}
