package edit

import (
	"fmt"
	"time"

	"github.com/arjunpatel/ghboard/internal/store"
)

// SessionTimestampLayout is the format the session editor accepts from the
// user, grounded on original_source/tests/test_ui_actions.py's
// "2024-01-01 08:45" inputs (local time, no offset typed by hand).
const SessionTimestampLayout = "2006-01-02 15:04"

// ParseSessionTimestamp parses a user-typed local timestamp, returning it
// converted to the process's local zone (matching the original's
// datetime.fromisoformat(...).astimezone behavior).
func ParseSessionTimestamp(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(SessionTimestampLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

// ValidateSessionStart validates a new start time against the session's
// current end (a zero Time means the session is still open), matching
// spec.md §8 scenario 6's exact messages.
func ValidateSessionStart(raw string, currentEnd time.Time) (time.Time, string, error) {
	start, err := ParseSessionTimestamp(raw)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("Invalid start timestamp")
	}
	if !currentEnd.IsZero() && !currentEnd.After(start) {
		return time.Time{}, "", fmt.Errorf("End must be after start")
	}
	return start, start.Format(store.TimestampLayout), nil
}

// ValidateSessionEnd validates a new end time against the session's
// current start.
func ValidateSessionEnd(raw string, currentStart time.Time) (time.Time, string, error) {
	end, err := ParseSessionTimestamp(raw)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("Invalid end timestamp")
	}
	if !end.After(currentStart) {
		return time.Time{}, "", fmt.Errorf("End must be after start")
	}
	return end, end.Format(store.TimestampLayout), nil
}
