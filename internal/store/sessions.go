package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// StartSession stops any session already open for url (a task can have at
// most one running timer, spec.md §5) and opens a new one, recording a
// "start" timer event.
func (s *Store) StartSession(ctx context.Context, url, projectTitle string, labels []string, startedAt string) (WorkSession, error) {
	var session WorkSession
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := stopOpenSessionsTx(ctx, tx, url, startedAt); err != nil {
			return err
		}

		session = WorkSession{
			ID:           uuid.NewString(),
			TaskURL:      url,
			ProjectTitle: projectTitle,
			Labels:       labels,
			StartedAt:    startedAt,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_sessions (id, task_url, project_title, labels, started_at, ended_at) VALUES (?,?,?,?,?,NULL)`,
			session.ID, session.TaskURL, session.ProjectTitle, marshalStringsOrEmpty(session.Labels), session.StartedAt,
		); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}

		if err := insertTimerEventTx(ctx, tx, url, startedAt, "start"); err != nil {
			return err
		}
		return nil
	})
	return session, err
}

// StopSession closes the currently open session for url, if any, recording
// a "stop" timer event. It is a no-op if no session is open.
func (s *Store) StopSession(ctx context.Context, url, endedAt string) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		return stopOpenSessionsTx(ctx, tx, url, endedAt)
	})
}

func stopOpenSessionsTx(ctx context.Context, tx *sql.Tx, url, endedAt string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE work_sessions SET ended_at = ? WHERE task_url = ? AND ended_at IS NULL`,
		endedAt, url)
	if err != nil {
		return fmt.Errorf("stop open session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return insertTimerEventTx(ctx, tx, url, endedAt, "stop")
}

func insertTimerEventTx(ctx context.Context, tx *sql.Tx, url, at, eventType string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO timer_events (id, task_url, at, event_type) VALUES (?,?,?,?)`,
		uuid.NewString(), url, at, eventType)
	if err != nil {
		return fmt.Errorf("insert timer event: %w", err)
	}
	return nil
}

// UpdateSessionTimes edits a session's recorded boundaries directly (the
// session editor UI, spec.md §5.3); ended_at may be empty to reopen it.
func (s *Store) UpdateSessionTimes(ctx context.Context, id, startedAt, endedAt string) error {
	var endedArg any
	if endedAt != "" {
		endedArg = endedAt
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE work_sessions SET started_at = ?, ended_at = ? WHERE id = ?`,
		startedAt, endedArg, id)
	return err
}

// DeleteSession removes a logged session entirely.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM work_sessions WHERE id = ?`, id)
	return err
}

// ActiveTaskURLs returns the task URLs with a currently open session.
func (s *Store) ActiveTaskURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_url FROM work_sessions WHERE ended_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("query active sessions: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// SessionsBetween returns every work session that overlaps [from, until),
// the raw material internal/analytics aggregates over. A session with
// EndedAt == "" is still running and is reported as open; internal/analytics
// counts such a session as running until "now".
func (s *Store) SessionsBetween(ctx context.Context, from, until string) ([]WorkSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_url, project_title, labels, started_at, COALESCE(ended_at, '')
		   FROM work_sessions
		  WHERE started_at < ? AND (ended_at IS NULL OR ended_at > ?)
		  ORDER BY started_at`,
		until, from)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []WorkSession
	for rows.Next() {
		var sess WorkSession
		var labelsRaw string
		if err := rows.Scan(&sess.ID, &sess.TaskURL, &sess.ProjectTitle, &labelsRaw, &sess.StartedAt, &sess.EndedAt); err != nil {
			return nil, err
		}
		sess.Labels = unmarshalStrings(labelsRaw)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// AllSessionsForTask returns every session (open or closed) recorded for a
// single task URL, most recent first, for the per-task detail view.
func (s *Store) AllSessionsForTask(ctx context.Context, url string) ([]WorkSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_url, project_title, labels, started_at, COALESCE(ended_at, '')
		   FROM work_sessions WHERE task_url = ? ORDER BY started_at DESC`,
		url)
	if err != nil {
		return nil, fmt.Errorf("query task sessions: %w", err)
	}
	defer rows.Close()

	var out []WorkSession
	for rows.Next() {
		var sess WorkSession
		var labelsRaw string
		if err := rows.Scan(&sess.ID, &sess.TaskURL, &sess.ProjectTitle, &labelsRaw, &sess.StartedAt, &sess.EndedAt); err != nil {
			return nil, err
		}
		sess.Labels = unmarshalStrings(labelsRaw)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// TaskDurationSnapshot sums closed-session seconds per task URL. Open
// sessions are excluded here. The browse view does not call it: its live
// per-task totals come from internal/analytics.TaskDurationSnapshot.
func (s *Store) TaskDurationSnapshot(ctx context.Context, from, until string) (map[string]int64, error) {
	sessions, err := s.SessionsBetween(ctx, from, until)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(sessions))
	for _, sess := range sessions {
		if sess.EndedAt == "" {
			continue
		}
		start, err := parseTimestamp(sess.StartedAt)
		if err != nil {
			continue
		}
		end, err := parseTimestamp(sess.EndedAt)
		if err != nil {
			continue
		}
		if end.After(start) {
			out[sess.TaskURL] += int64(end.Sub(start).Seconds())
		}
	}
	return out, nil
}
