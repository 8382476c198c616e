package sync

import (
	"time"

	"github.com/arjunpatel/ghboard/internal/config"
	"github.com/arjunpatel/ghboard/internal/store"
)

var mockProjects = []string{"Alpha", "Beta", "Gamma"}
var mockStatuses = []string{"Todo", "In Progress", "Done", "Blocked"}

// GenerateMockTasks synthesizes a small fixed board, used when the
// MOCK_FETCH environment variable is set so the TUI can be exercised
// without network access. Grounded on
// original_source/gh_task_viewer.py:generate_mock_tasks (three projects,
// a 7-day date spread, statuses cycling deterministically per item).
func GenerateMockTasks(cfg *config.Config) []store.TaskRow {
	now := time.Now()
	syncedAt := now.Format(store.TimestampLayout)

	var rows []store.TaskRow
	for pi, project := range mockProjects {
		for dOff := -2; dOff <= 4; dOff++ {
			date := now.AddDate(0, 0, dOff).Format("2006-01-02")
			status := mockStatuses[(pi+dOff+2)%len(mockStatuses)]
			rows = append(rows, store.TaskRow{
				OwnerType:      "user",
				Owner:          cfg.User,
				ProjectNumber:  pi + 1,
				ProjectTitle:   project,
				Title:          "Mock item " + date,
				URL:            "https://example.invalid/mock/" + project + "/" + date,
				StartField:     "Start",
				StartDate:      date,
				Status:         status,
				AssigneeLogins: []string{cfg.User},
				AssignedToMe:   true,
				UpdatedAt:      syncedAt,
				LastSeenAt:     syncedAt,
				IsDone:         store.IsDoneStatus(status),
			})
		}
	}
	return rows
}
