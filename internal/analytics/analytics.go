// Package analytics aggregates work-session history into period, project,
// task, and label totals for the report view.
//
// Grounded on original_source/gh_task_viewer.py's TaskDB analytics methods
// (_clip_range, _period_key, _next_boundary, _sum_rows_seconds,
// aggregate_*_totals, task_duration_snapshot) for every numeric semantic;
// reshaped into pure functions over []store.WorkSession plus an explicit
// "now" so they're testable the way the teacher tests pure helpers in
// internal/cache and internal/marshal, without depending on wall-clock time.
package analytics

import (
	"fmt"
	"time"

	"github.com/arjunpatel/ghboard/internal/store"
)

// Granularity selects the bucket width for AggregatePeriodTotals.
type Granularity int

const (
	Day Granularity = iota
	Week
	Month
)

// ClipRange clips [start, end) to begin no earlier than rangeStart. It
// reports keep=false when the interval lies entirely before rangeStart.
func ClipRange(start, end, rangeStart time.Time) (clippedStart, clippedEnd time.Time, keep bool) {
	if !end.After(rangeStart) {
		return start, end, false
	}
	if start.Before(rangeStart) {
		start = rangeStart
	}
	return start, end, true
}

// PeriodKey formats t as the bucket label for the given granularity:
// "2006-01-02" for Day, ISO "2006-Www" for Week, "2006-01" for Month.
func PeriodKey(t time.Time, g Granularity) string {
	switch g {
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// NextBoundary returns the start of the next period after t: next midnight
// for Day, next Monday midnight for Week, first of next month for Month.
func NextBoundary(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case Week:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// time.Weekday: Sunday=0 ... Saturday=6; ISO weeks start Monday.
		daysUntilMonday := (8 - int(midnight.Weekday())) % 7
		if daysUntilMonday == 0 {
			daysUntilMonday = 7
		}
		return midnight.AddDate(0, 0, daysUntilMonday)
	case Month:
		firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return firstOfMonth.AddDate(0, 1, 0)
	default:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return midnight.AddDate(0, 0, 1)
	}
}

// sessionInterval resolves a WorkSession's [start, end) pair, treating an
// open (EndedAt == "") session as running until now.
func sessionInterval(s store.WorkSession, now time.Time) (start, end time.Time, ok bool) {
	start, err := time.Parse(store.TimestampLayout, s.StartedAt)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if s.EndedAt == "" {
		return start, now, true
	}
	end, err = time.Parse(store.TimestampLayout, s.EndedAt)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// SumSessionsSeconds totals the duration of every session, treating open
// sessions as running until now.
func SumSessionsSeconds(sessions []store.WorkSession, now time.Time) int64 {
	var total int64
	for _, s := range sessions {
		start, end, ok := sessionInterval(s, now)
		if !ok || !end.After(start) {
			continue
		}
		total += int64(end.Sub(start).Seconds())
	}
	return total
}

// AggregatePeriodTotals buckets every session's clipped duration by period
// key, splitting a session's interval across period boundaries so each
// period only gets the seconds that actually fall inside it.
func AggregatePeriodTotals(sessions []store.WorkSession, g Granularity, since, now time.Time) map[string]int64 {
	totals := make(map[string]int64)
	for _, s := range sessions {
		start, end, ok := sessionInterval(s, now)
		if !ok {
			continue
		}
		start, end, keep := ClipRange(start, end, since)
		if !keep || !end.After(start) {
			continue
		}
		for pos := start; pos.Before(end); {
			boundary := NextBoundary(pos, g)
			segEnd := end
			if boundary.Before(segEnd) {
				segEnd = boundary
			}
			totals[PeriodKey(pos, g)] += int64(segEnd.Sub(pos).Seconds())
			pos = segEnd
		}
	}
	return totals
}

// AggregateProjectTotals sums clipped session duration per project title.
func AggregateProjectTotals(sessions []store.WorkSession, since, now time.Time) map[string]int64 {
	totals := make(map[string]int64)
	for _, s := range sessions {
		start, end, ok := sessionInterval(s, now)
		if !ok {
			continue
		}
		start, end, keep := ClipRange(start, end, since)
		if !keep || !end.After(start) {
			continue
		}
		totals[s.ProjectTitle] += int64(end.Sub(start).Seconds())
	}
	return totals
}

// AggregateTaskTotals sums clipped session duration per task URL.
func AggregateTaskTotals(sessions []store.WorkSession, since, now time.Time) map[string]int64 {
	totals := make(map[string]int64)
	for _, s := range sessions {
		start, end, ok := sessionInterval(s, now)
		if !ok {
			continue
		}
		start, end, keep := ClipRange(start, end, since)
		if !keep || !end.After(start) {
			continue
		}
		totals[s.TaskURL] += int64(end.Sub(start).Seconds())
	}
	return totals
}

// AggregateLabelTotals sums clipped session duration per label. Every
// label on a session receives that session's full clipped duration; a
// two-hour session tagged ["bug","frontend"] contributes two full hours to
// each of "bug" and "frontend", not one hour apiece.
func AggregateLabelTotals(sessions []store.WorkSession, since, now time.Time) map[string]int64 {
	totals := make(map[string]int64)
	for _, s := range sessions {
		start, end, ok := sessionInterval(s, now)
		if !ok {
			continue
		}
		start, end, keep := ClipRange(start, end, since)
		if !keep || !end.After(start) {
			continue
		}
		seconds := int64(end.Sub(start).Seconds())
		for _, label := range s.Labels {
			totals[label] += seconds
		}
	}
	return totals
}

// TaskSnapshot reports a task's currently-running elapsed time plus its
// all-time total across the sessions given.
type TaskSnapshot struct {
	Current int64
	Total   int64
}

// TaskDurationSnapshot reports, for each of taskURLs, the elapsed time of
// any currently open session ("current") alongside the full sum of every
// session for that task ("total", unclipped by since/now beyond treating
// open sessions as running until now).
func TaskDurationSnapshot(sessions []store.WorkSession, taskURLs []string, now time.Time) map[string]TaskSnapshot {
	out := make(map[string]TaskSnapshot, len(taskURLs))
	for _, url := range taskURLs {
		out[url] = TaskSnapshot{}
	}
	for _, s := range sessions {
		snap, tracked := out[s.TaskURL]
		if !tracked {
			continue
		}
		start, end, ok := sessionInterval(s, now)
		if !ok || !end.After(start) {
			continue
		}
		seconds := int64(end.Sub(start).Seconds())
		snap.Total += seconds
		if s.EndedAt == "" {
			snap.Current = seconds
		}
		out[s.TaskURL] = snap
	}
	return out
}
