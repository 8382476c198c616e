package store

import (
	"strconv"
	"strings"
)

// Option is one entry in a single-select or iteration field's option list.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskRow is one item (issue, PR, or draft) from one project, keyed by the
// tuple (OwnerType, Owner, ProjectNumber, Title, URL, StartField,
// StartDate) per spec.md §3.
type TaskRow struct {
	ID int64

	OwnerType     string
	Owner         string
	ProjectID     string
	ProjectNumber int
	ProjectTitle  string

	Title         string
	URL           string
	ItemID        string
	ContentNodeID string
	Repo          string

	StartField string
	StartDate  string
	EndField   string
	EndDate    string
	FocusField string
	FocusDate  string

	IterationField     string
	IterationOptionID  string
	IterationTitle     string
	IterationStart     string
	IterationDuration  int
	IterationOptions   []Option

	Status                  string
	StatusFieldID           string
	StatusOptionID          string
	StatusOptions           []Option
	StatusDirty             bool
	StatusPendingOptionID   string

	Priority                  string
	PriorityFieldID           string
	PriorityOptionID          string
	PriorityOptions           []Option
	PriorityDirty             bool
	PriorityPendingOptionID   string

	AssigneeFieldID string
	AssigneeUserIDs []string
	AssigneeLogins  []string
	AssignedToMe    bool
	CreatedByMe     bool

	Labels     []string
	UpdatedAt  string
	IsDone     bool
	LastSeenAt string
}

// Key returns the unique task identity tuple as a single comparable string.
func (t TaskRow) Key() string {
	return t.OwnerType + "\x00" + t.Owner + "\x00" +
		strconv.Itoa(t.ProjectNumber) + "\x00" + t.Title + "\x00" +
		t.URL + "\x00" + t.StartField + "\x00" + t.StartDate
}

// LoadFilter narrows Load's result set at the SQL layer; further filtering
// (search, hide-done, etc.) happens in internal/viewmodel.
type LoadFilter struct {
	TodayOnly     bool
	Today         string // ISO date, defaults to time.Now() if empty and TodayOnly set
	DateMax       string // ISO date upper bound on start_date, inclusive; empty = no bound
	IncludeStale  bool   // include rows whose last_seen_at predates the latest sync
}

// WorkSession is a half-open interval [StartedAt, EndedAt) attributed to
// one task URL. EndedAt == "" means the session is currently running.
type WorkSession struct {
	ID           string
	TaskURL      string
	ProjectTitle string
	Labels       []string
	StartedAt    string
	EndedAt      string
}

// TimerEvent is an append-only audit record of a start/stop action.
type TimerEvent struct {
	ID        string
	TaskURL   string
	At        string
	EventType string // "start" or "stop"
}

// doneWords are matched case-insensitively against a status string to
// decide IsDone, per spec.md §3 and original_source/gh_task_viewer.py.
var doneWords = []string{"done", "complete", "closed", "merged", "finished", "✅", "✔"}

// IsDoneStatus reports whether status text indicates a completed item.
func IsDoneStatus(status string) bool {
	if status == "" {
		return false
	}
	low := strings.ToLower(status)
	for _, w := range doneWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}
