package sync

import (
	"regexp"
	"testing"
)

// TestExtractRowsSkipsMalformedDate guards spec.md §3's invariant that a
// date field is either empty or a parseable ISO date: a field whose name
// matches the date-field regex but whose value isn't a real date
// (original_source/gh_task_viewer.py's fromisoformat ValueError case) must
// not be treated as a matched date field.
func TestExtractRowsSkipsMalformedDate(t *testing.T) {
	item := itemWithDate("broken", "not-a-date")
	dateRe := regexp.MustCompile(`(?i)start`)

	rows := extractRows(item, target{ownerType: "org", owner: "acme", number: 7, title: "Roadmap"}, dateRe, nil, "octocat", false, "2026-07-29T00:00:00Z")
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 (placeholder row, no matched date fields)", len(rows))
	}
	if rows[0].StartField != "(none)" || rows[0].StartDate != "" {
		t.Errorf("row = %+v, want placeholder StartField/StartDate since the malformed date must be skipped", rows[0])
	}
}

// TestExtractRowsAcceptsWellFormedDate is the control case: a well-formed
// ISO date on a matching field name is kept.
func TestExtractRowsAcceptsWellFormedDate(t *testing.T) {
	item := itemWithDate("ok", "2026-07-29")
	dateRe := regexp.MustCompile(`(?i)start`)

	rows := extractRows(item, target{ownerType: "org", owner: "acme", number: 7, title: "Roadmap"}, dateRe, nil, "octocat", false, "2026-07-29T00:00:00Z")
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].StartField != "Start Date" || rows[0].StartDate != "2026-07-29" {
		t.Errorf("row = %+v, want StartField=%q StartDate=%q", rows[0], "Start Date", "2026-07-29")
	}
}
