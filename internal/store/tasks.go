package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertMany inserts or updates rows by their unique task key. On conflict,
// every mutable column is overwritten with the new value (including
// updated_at and last_seen_at); inserted rows start with *_dirty = 0,
// matching spec.md §4.1.
func (s *Store) UpsertMany(ctx context.Context, rows []TaskRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertTaskSQL)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx,
				r.OwnerType, r.Owner, r.ProjectID, r.ProjectNumber, r.ProjectTitle,
				r.Title, r.URL, r.ItemID, r.ContentNodeID, nullIfEmpty(r.Repo),
				r.StartField, r.StartDate, r.EndField, r.EndDate, r.FocusField, r.FocusDate,
				r.IterationField, r.IterationOptionID, r.IterationTitle, r.IterationStart, r.IterationDuration,
				marshalOptionsOrEmpty(r.IterationOptions),
				nullIfEmpty(r.Status), r.StatusFieldID, r.StatusOptionID, marshalOptionsOrEmpty(r.StatusOptions),
				nullIfEmpty(r.Priority), r.PriorityFieldID, r.PriorityOptionID, marshalOptionsOrEmpty(r.PriorityOptions),
				r.AssigneeFieldID, marshalStringsOrEmpty(r.AssigneeUserIDs), marshalStringsOrEmpty(r.AssigneeLogins),
				boolToInt(r.AssignedToMe), boolToInt(r.CreatedByMe),
				marshalStringsOrEmpty(r.Labels), r.UpdatedAt, boolToInt(r.IsDone), r.LastSeenAt,
			); err != nil {
				return fmt.Errorf("upsert task %s: %w", r.URL, err)
			}
		}
		return nil
	})
}

const upsertTaskSQL = `
INSERT INTO tasks (
  owner_type, owner, project_id, project_number, project_title,
  title, url, item_id, content_node_id, repo,
  start_field, start_date, end_field, end_date, focus_field, focus_date,
  iteration_field, iteration_option_id, iteration_title, iteration_start, iteration_duration, iteration_options,
  status, status_field_id, status_option_id, status_options,
  priority, priority_field_id, priority_option_id, priority_options,
  assignee_field_id, assignee_user_ids, assignee_logins,
  assigned_to_me, created_by_me,
  labels, updated_at, is_done, last_seen_at
) VALUES (?,?,?,?,?, ?,?,?,?,?, ?,?,?,?,?,?, ?,?,?,?,?,?, ?,?,?,?, ?,?,?,?, ?,?,?, ?,?, ?,?,?,?)
ON CONFLICT(owner_type, owner, project_number, title, url, start_field, start_date) DO UPDATE SET
  project_id = excluded.project_id,
  project_title = excluded.project_title,
  item_id = excluded.item_id,
  content_node_id = excluded.content_node_id,
  repo = excluded.repo,
  end_field = excluded.end_field,
  end_date = excluded.end_date,
  focus_field = excluded.focus_field,
  focus_date = excluded.focus_date,
  iteration_field = excluded.iteration_field,
  iteration_option_id = excluded.iteration_option_id,
  iteration_title = excluded.iteration_title,
  iteration_start = excluded.iteration_start,
  iteration_duration = excluded.iteration_duration,
  iteration_options = excluded.iteration_options,
  status = excluded.status,
  status_field_id = excluded.status_field_id,
  status_option_id = excluded.status_option_id,
  status_options = excluded.status_options,
  priority = excluded.priority,
  priority_field_id = excluded.priority_field_id,
  priority_option_id = excluded.priority_option_id,
  priority_options = excluded.priority_options,
  assignee_field_id = excluded.assignee_field_id,
  assignee_user_ids = excluded.assignee_user_ids,
  assignee_logins = excluded.assignee_logins,
  assigned_to_me = excluded.assigned_to_me,
  created_by_me = excluded.created_by_me,
  labels = excluded.labels,
  updated_at = excluded.updated_at,
  is_done = excluded.is_done,
  last_seen_at = excluded.last_seen_at
`

const selectTaskColumns = `
  id, owner_type, owner, project_id, project_number, project_title,
  title, url, item_id, content_node_id, repo,
  start_field, start_date, end_field, end_date, focus_field, focus_date,
  iteration_field, iteration_option_id, iteration_title, iteration_start, iteration_duration, iteration_options,
  status, status_field_id, status_option_id, status_options, status_dirty, status_pending_option_id,
  priority, priority_field_id, priority_option_id, priority_options, priority_dirty, priority_pending_option_id,
  assignee_field_id, assignee_user_ids, assignee_logins, assigned_to_me, created_by_me,
  labels, updated_at, is_done, last_seen_at
`

// Load returns tasks matching filter, ordered by project title then start
// date then title (original_source/gh_task_viewer.py:TaskDB.load order).
func (s *Store) Load(ctx context.Context, filter LoadFilter) ([]TaskRow, error) {
	query := "SELECT " + selectTaskColumns + " FROM tasks WHERE 1=1"
	var args []any

	if filter.TodayOnly {
		today := filter.Today
		if today == "" {
			today = time.Now().Format("2006-01-02")
		}
		query += " AND start_date = ?"
		args = append(args, today)
	}
	if filter.DateMax != "" {
		query += " AND (start_date = '' OR start_date <= ?)"
		args = append(args, filter.DateMax)
	}
	if !filter.IncludeStale {
		// Hide rows the most recent sync didn't touch (spec.md §9's
		// reconciliation open question, resolved as tombstone-by-
		// last_seen_at in SPEC_FULL.md §9): a row survives a sync run
		// that no longer observes it, but stays invisible by default.
		query += " AND last_seen_at = (SELECT MAX(last_seen_at) FROM tasks)"
	}

	query += " ORDER BY project_title, start_date, title"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	var out []TaskRow
	for rows.Next() {
		r, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row scanner) (TaskRow, error) {
	var r TaskRow
	var repo, status, priority sql.NullString
	var iterOptsRaw, statusOptsRaw, priorityOptsRaw string
	var assigneeUserIDsRaw, assigneeLoginsRaw, labelsRaw string
	var statusDirty, priorityDirty, assignedToMe, createdByMe, isDone int

	err := row.Scan(
		&r.ID, &r.OwnerType, &r.Owner, &r.ProjectID, &r.ProjectNumber, &r.ProjectTitle,
		&r.Title, &r.URL, &r.ItemID, &r.ContentNodeID, &repo,
		&r.StartField, &r.StartDate, &r.EndField, &r.EndDate, &r.FocusField, &r.FocusDate,
		&r.IterationField, &r.IterationOptionID, &r.IterationTitle, &r.IterationStart, &r.IterationDuration, &iterOptsRaw,
		&status, &r.StatusFieldID, &r.StatusOptionID, &statusOptsRaw, &statusDirty, &r.StatusPendingOptionID,
		&priority, &r.PriorityFieldID, &r.PriorityOptionID, &priorityOptsRaw, &priorityDirty, &r.PriorityPendingOptionID,
		&r.AssigneeFieldID, &assigneeUserIDsRaw, &assigneeLoginsRaw, &assignedToMe, &createdByMe,
		&labelsRaw, &r.UpdatedAt, &isDone, &r.LastSeenAt,
	)
	if err != nil {
		return TaskRow{}, fmt.Errorf("scan task row: %w", err)
	}

	r.Repo = repo.String
	r.Status = status.String
	r.Priority = priority.String
	r.IterationOptions = unmarshalOptions(iterOptsRaw)
	r.StatusOptions = unmarshalOptions(statusOptsRaw)
	r.PriorityOptions = unmarshalOptions(priorityOptsRaw)
	r.AssigneeUserIDs = unmarshalStrings(assigneeUserIDsRaw)
	r.AssigneeLogins = unmarshalStrings(assigneeLoginsRaw)
	r.Labels = unmarshalStrings(labelsRaw)
	r.StatusDirty = statusDirty != 0
	r.PriorityDirty = priorityDirty != 0
	r.AssignedToMe = assignedToMe != 0
	r.CreatedByMe = createdByMe != 0
	r.IsDone = isDone != 0
	return r, nil
}

// --- Status field class ---

// StageStatus writes the optimistic local value and marks it dirty/pending,
// per spec.md §4.4 step 2.
func (s *Store) StageStatus(ctx context.Context, url, status, optionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, status_dirty = 1, status_pending_option_id = ? WHERE url = ?`,
		status, optionID, url)
	return err
}

// CommitStatus writes the canonical post-write value and clears the
// pending shadow, per spec.md §4.4 step 4.
func (s *Store) CommitStatus(ctx context.Context, url, status, optionID string, isDone bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, status_option_id = ?, status_dirty = 0, status_pending_option_id = '', is_done = ? WHERE url = ?`,
		status, optionID, boolToInt(isDone), url)
	return err
}

// ResetStatus restores the prior canonical value on remote failure, per
// spec.md §4.4 step 5.
func (s *Store) ResetStatus(ctx context.Context, url, priorStatus, priorOptionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, status_option_id = ?, status_dirty = 0, status_pending_option_id = '' WHERE url = ?`,
		priorStatus, priorOptionID, url)
	return err
}

// --- Priority field class ---

func (s *Store) StagePriority(ctx context.Context, url, priority, optionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET priority = ?, priority_dirty = 1, priority_pending_option_id = ? WHERE url = ?`,
		priority, optionID, url)
	return err
}

func (s *Store) CommitPriority(ctx context.Context, url, priority, optionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET priority = ?, priority_option_id = ?, priority_dirty = 0, priority_pending_option_id = '' WHERE url = ?`,
		priority, optionID, url)
	return err
}

func (s *Store) ResetPriority(ctx context.Context, url, priorPriority, priorOptionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET priority = ?, priority_option_id = ?, priority_dirty = 0, priority_pending_option_id = '' WHERE url = ?`,
		priorPriority, priorOptionID, url)
	return err
}

// --- Labels (no dirty shadow: labels commit immediately, matching the
// original's label editor which has no optimistic/pending state of its
// own beyond the loading flag tracked by the edit coordinator) ---

func (s *Store) UpdateLabels(ctx context.Context, url string, labels []string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET labels = ? WHERE url = ?`,
		marshalStringsOrEmpty(labels), url)
	return err
}

// --- Assignees ---

func (s *Store) UpdateAssignees(ctx context.Context, url string, userIDs, logins []string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET assignee_user_ids = ?, assignee_logins = ? WHERE url = ?`,
		marshalStringsOrEmpty(userIDs), marshalStringsOrEmpty(logins), url)
	return err
}

// --- Dates (start/end/focus) ---

// DateField identifies which of the three date columns a write targets.
type DateField int

const (
	StartDateField DateField = iota
	EndDateField
	FocusDateField
)

func (d DateField) column() (valueCol, fieldCol string) {
	switch d {
	case EndDateField:
		return "end_date", "end_field"
	case FocusDateField:
		return "focus_date", "focus_field"
	default:
		return "start_date", "start_field"
	}
}

func (s *Store) UpdateDate(ctx context.Context, url string, field DateField, fieldName, isoDate string) error {
	valueCol, fieldCol := field.column()
	query := fmt.Sprintf(`UPDATE tasks SET %s = ?, %s = ? WHERE url = ?`, valueCol, fieldCol)
	_, err := s.db.ExecContext(ctx, query, isoDate, fieldName, url)
	return err
}

func (s *Store) ResetDate(ctx context.Context, url string, field DateField, priorFieldName, priorDate string) error {
	return s.UpdateDate(ctx, url, field, priorFieldName, priorDate)
}

// --- Iteration ---

func (s *Store) UpdateIteration(ctx context.Context, url, optionID, title, start string, duration int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET iteration_option_id = ?, iteration_title = ?, iteration_start = ?, iteration_duration = ? WHERE url = ?`,
		optionID, title, start, duration, url)
	return err
}

func (s *Store) ResetIteration(ctx context.Context, url, priorOptionID, priorTitle, priorStart string, priorDuration int) error {
	return s.UpdateIteration(ctx, url, priorOptionID, priorTitle, priorStart, priorDuration)
}

// --- Reconciliation (tombstone-by-last_seen_at, see SPEC_FULL.md §9) ---

// TouchSeen stamps every row in urls with the given sync timestamp.
func (s *Store) TouchSeen(ctx context.Context, urls []string, seenAt string) error {
	if len(urls) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE tasks SET last_seen_at = ? WHERE url = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, u := range urls {
			if _, err := stmt.ExecContext(ctx, seenAt, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
