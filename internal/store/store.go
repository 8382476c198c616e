// Package store implements the embedded relational persistence layer:
// schema migration, idempotent task upsert, work-session and timer-event
// bookkeeping, and the raw accessors the analytics engine aggregates over.
//
// Grounded on the teacher's internal/db/store.go (modernc.org/sqlite, WAL,
// go:embed schema) for the Go shape, and on
// original_source/gh_task_viewer.py's TaskDB for the additive migration
// algorithm and upsert semantics (spec.md §4.1).
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// canonicalTaskColumns is the full column set a freshly created tasks table
// has. Open() diffs an existing table against this list to decide whether
// additive migration is needed.
var canonicalTaskColumns = []string{
	"id", "owner_type", "owner", "project_id", "project_number", "project_title",
	"title", "url", "item_id", "content_node_id", "repo",
	"start_field", "start_date", "end_field", "end_date", "focus_field", "focus_date",
	"iteration_field", "iteration_option_id", "iteration_title", "iteration_start", "iteration_duration", "iteration_options",
	"status", "status_field_id", "status_option_id", "status_options", "status_dirty", "status_pending_option_id",
	"priority", "priority_field_id", "priority_option_id", "priority_options", "priority_dirty", "priority_pending_option_id",
	"assignee_field_id", "assignee_user_ids", "assignee_logins", "assigned_to_me", "created_by_me",
	"labels", "updated_at", "is_done", "last_seen_at",
}

// columnDefaults supplies a literal SQL default for any canonical column
// missing from an older table layout during additive migration.
var columnDefaults = map[string]string{
	"id": "NULL", "owner_type": "''", "owner": "''", "project_id": "''",
	"project_number": "0", "project_title": "''", "title": "''", "url": "''",
	"item_id": "''", "content_node_id": "''", "repo": "NULL",
	"start_field": "''", "start_date": "''", "end_field": "''", "end_date": "''",
	"focus_field": "''", "focus_date": "''",
	"iteration_field": "''", "iteration_option_id": "''", "iteration_title": "''",
	"iteration_start": "''", "iteration_duration": "0", "iteration_options": "'[]'",
	"status": "NULL", "status_field_id": "''", "status_option_id": "''",
	"status_options": "'[]'", "status_dirty": "0", "status_pending_option_id": "''",
	"priority": "NULL", "priority_field_id": "''", "priority_option_id": "''",
	"priority_options": "'[]'", "priority_dirty": "0", "priority_pending_option_id": "''",
	"assignee_field_id": "''", "assignee_user_ids": "'[]'", "assignee_logins": "'[]'",
	"assigned_to_me": "0", "created_by_me": "0",
	"labels": "'[]'", "updated_at": "datetime('now')", "is_done": "0",
	"last_seen_at": "datetime('now')",
}

// Store wraps the SQLite connection. It is written from the UI goroutine and
// also from internal/edit's background goroutines, which commit or roll back
// their edits on the store directly rather than handing rows back.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at path, running the additive
// schema migration protocol of spec.md §4.1.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	escaped := strings.ReplaceAll(path, " ", "%20")
	dsn := "file:" + escaped
	if path != ":memory:" {
		dsn += "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for callers (e.g. analytics) that
// need to run read-only aggregate queries directly.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate implements the additive migration protocol: create the canonical
// schema if no tasks table exists; otherwise diff columns and, if any
// canonical column is missing, rename-copy-drop. work_sessions,
// timer_events and all indexes are always ensured to exist.
func (s *Store) migrate(ctx context.Context) error {
	cols, err := s.existingTaskColumns(ctx)
	if err != nil {
		return fmt.Errorf("inspect tasks table: %w", err)
	}

	if cols == nil {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	missing := missingColumns(cols)
	if len(missing) == 0 {
		return s.ensureAuxiliaryObjects(ctx)
	}

	return s.migrateAdditive(ctx, cols)
}

func (s *Store) existingTaskColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info(tasks)")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid, notnull, pk int
			name, ctype      string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func missingColumns(existing []string) []string {
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}
	var missing []string
	for _, c := range canonicalTaskColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// migrateAdditive renames the old tasks table aside, creates the canonical
// schema, and copies every old column across (defaulting the rest), then
// drops the renamed table. Insertion uses INSERT OR IGNORE to survive
// duplicated unique keys that might appear once defaulted columns collide.
func (s *Store) migrateAdditive(ctx context.Context, existing []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "ALTER TABLE tasks RENAME TO tasks_old"); err != nil {
		return fmt.Errorf("rename old tasks table: %w", err)
	}

	createStmt, restStmt := splitTasksCreate(schemaSQL)
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("create new tasks table: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}
	selectCols := make([]string, 0, len(canonicalTaskColumns))
	for _, c := range canonicalTaskColumns {
		if c == "id" {
			continue
		}
		if have[c] {
			selectCols = append(selectCols, c)
		} else {
			selectCols = append(selectCols, columnDefaults[c])
		}
	}
	insertCols := make([]string, 0, len(canonicalTaskColumns)-1)
	for _, c := range canonicalTaskColumns {
		if c != "id" {
			insertCols = append(insertCols, c)
		}
	}

	copySQL := fmt.Sprintf(
		"INSERT OR IGNORE INTO tasks (%s) SELECT %s FROM tasks_old",
		strings.Join(insertCols, ", "), strings.Join(selectCols, ", "),
	)
	if _, err := tx.ExecContext(ctx, copySQL); err != nil {
		return fmt.Errorf("copy old task rows: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE tasks_old"); err != nil {
		return fmt.Errorf("drop old tasks table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, restStmt); err != nil {
		return fmt.Errorf("create auxiliary objects: %w", err)
	}

	return tx.Commit()
}

func (s *Store) ensureAuxiliaryObjects(ctx context.Context) error {
	_, rest := splitTasksCreate(schemaSQL)
	if _, err := s.db.ExecContext(ctx, rest); err != nil {
		return fmt.Errorf("ensure auxiliary objects: %w", err)
	}
	return nil
}

// splitTasksCreate splits the embedded schema into the "CREATE TABLE tasks"
// statement and everything else (indexes, work_sessions, timer_events),
// since additive migration only ever recreates the tasks table itself.
func splitTasksCreate(schema string) (createTasks string, rest string) {
	const marker = "-- END TASKS TABLE"
	idx := strings.Index(schema, marker)
	if idx < 0 {
		return schema, ""
	}
	return schema[:idx], schema[idx+len(marker):]
}

// WithTx runs fn inside a transaction, rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
