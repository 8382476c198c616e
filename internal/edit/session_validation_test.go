package edit

import (
	"testing"
	"time"
)

func TestValidateSessionEndBeforeStart(t *testing.T) {
	start, err := ParseSessionTimestamp("2024-01-01 09:00")
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	_, _, err = ValidateSessionEnd("2024-01-01 08:30", start)
	if err == nil || err.Error() != "End must be after start" {
		t.Fatalf("expected 'End must be after start', got %v", err)
	}
}

func TestValidateSessionStartUnparseable(t *testing.T) {
	_, _, err := ValidateSessionStart("not-a-timestamp", time.Time{})
	if err == nil || err.Error() != "Invalid start timestamp" {
		t.Fatalf("expected 'Invalid start timestamp', got %v", err)
	}
}

func TestValidateSessionEndAfterStartOK(t *testing.T) {
	start, _ := ParseSessionTimestamp("2024-01-01 09:00")
	end, iso, err := ValidateSessionEnd("2024-01-01 10:00", start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !end.After(start) {
		t.Fatalf("end should be after start")
	}
	if iso == "" {
		t.Fatalf("expected non-empty ISO string")
	}
}
