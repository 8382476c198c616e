package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAndClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpenCreatesCanonicalSchema(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cols, err := s.existingTaskColumns(ctx)
	if err != nil {
		t.Fatalf("existingTaskColumns: %v", err)
	}
	if len(missingColumns(cols)) != 0 {
		t.Errorf("freshly created table missing columns: %v", missingColumns(cols))
	}
}

func TestMigrateAdditiveAddsMissingColumns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", "file:"+dbPath)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_type TEXT NOT NULL,
		owner TEXT NOT NULL,
		project_number INTEGER NOT NULL,
		project_title TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		start_field TEXT NOT NULL,
		start_date TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create legacy schema: %v", err)
	}
	_, err = db.Exec(`INSERT INTO tasks (owner_type, owner, project_number, project_title, title, url, start_field, start_date, updated_at)
		VALUES ('org', 'acme', 1, 'Roadmap', 'Ship it', 'https://github.com/acme/repo/issues/1', 'start', '2026-01-01', '2026-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}
	db.Close()

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open on legacy db failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rows, err := s.Load(ctx, LoadFilter{})
	if err != nil {
		t.Fatalf("Load after migration: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after migration, got %d", len(rows))
	}
	if rows[0].Title != "Ship it" {
		t.Errorf("Title = %q, want %q", rows[0].Title, "Ship it")
	}
	if len(rows[0].Labels) != 0 {
		t.Errorf("Labels should default empty, got %v", rows[0].Labels)
	}
	if len(rows[0].StatusOptions) != 0 {
		t.Errorf("StatusOptions should default empty, got %v", rows[0].StatusOptions)
	}
}

// TestMigrateAdditivePreservesExistingItemID guards against
// canonicalTaskColumns/columnDefaults silently dropping a present column's
// data during the rewrite: the legacy table here already has item_id
// populated but is still missing another canonical column (labels), so
// migrateAdditive runs, and item_id must survive the copy unchanged.
func TestMigrateAdditivePreservesExistingItemID(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", "file:"+dbPath)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_type TEXT NOT NULL,
		owner TEXT NOT NULL,
		project_number INTEGER NOT NULL,
		project_title TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		item_id TEXT NOT NULL,
		start_field TEXT NOT NULL,
		start_date TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create legacy schema: %v", err)
	}
	_, err = db.Exec(`INSERT INTO tasks (owner_type, owner, project_number, project_title, title, url, item_id, start_field, start_date, updated_at)
		VALUES ('org', 'acme', 1, 'Roadmap', 'Ship it', 'https://github.com/acme/repo/issues/1', 'PVTI_existing', 'start', '2026-01-01', '2026-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}
	db.Close()

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open on legacy db failed: %v", err)
	}
	defer s.Close()

	rows, err := s.Load(context.Background(), LoadFilter{})
	if err != nil {
		t.Fatalf("Load after migration: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after migration, got %d", len(rows))
	}
	if rows[0].ItemID != "PVTI_existing" {
		t.Errorf("ItemID = %q, want %q (must survive additive migration)", rows[0].ItemID, "PVTI_existing")
	}
}
