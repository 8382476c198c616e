package store

import "time"

// TimestampLayout is the wire/storage format for all started_at/ended_at/at
// columns: RFC 3339 with an explicit offset, so sessions remain sortable as
// text and comparable across the process boundary between the sync engine,
// the edit coordinator, and the analytics aggregators.
const TimestampLayout = time.RFC3339

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

// Now returns the current instant formatted the way every timestamp column
// in this package expects to be written.
func Now() string {
	return time.Now().Format(TimestampLayout)
}
