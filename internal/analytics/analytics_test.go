package analytics

import (
	"testing"
	"time"

	"github.com/arjunpatel/ghboard/internal/store"
)

func iso(y int, m time.Month, d, h, min, sec int) string {
	return time.Date(y, m, d, h, min, sec, 0, time.UTC).Format(store.TimestampLayout)
}

func TestClipRangeAndPeriodHelpers(t *testing.T) {
	start, end, keep := ClipRange(
		time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 4, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	)
	if !keep {
		t.Fatal("expected keep=true")
	}
	if !start.Equal(time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2024, 1, 9, 4, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}

	_, _, keep2 := ClipRange(
		time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	)
	if keep2 {
		t.Error("expected keep=false for an interval entirely before rangeStart")
	}

	point := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	if got := PeriodKey(point, Day); got != "2024-01-10" {
		t.Errorf("PeriodKey(day) = %q", got)
	}
	if got := PeriodKey(point, Week); got != "2024-W02" {
		t.Errorf("PeriodKey(week) = %q", got)
	}
	if got := PeriodKey(point, Month); got != "2024-01" {
		t.Errorf("PeriodKey(month) = %q", got)
	}

	if got := NextBoundary(point, Day); !got.Equal(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("NextBoundary(day) = %v", got)
	}
	if got := NextBoundary(point, Week); !got.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("NextBoundary(week) = %v", got)
	}
	if got := NextBoundary(point, Month); !got.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("NextBoundary(month) = %v", got)
	}
}

func TestSumSessionsSecondsWithOpenSession(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	sessions := []store.WorkSession{
		{StartedAt: iso(2024, 1, 9, 10, 0, 0), EndedAt: iso(2024, 1, 9, 12, 30, 0)},
		{StartedAt: iso(2024, 1, 9, 14, 0, 0), EndedAt: ""},
	}
	got := SumSessionsSeconds(sessions, now)
	want := int64(9000 + 79200)
	if got != want {
		t.Errorf("SumSessionsSeconds = %d, want %d", got, want)
	}
}

func fixtureSessions() []store.WorkSession {
	return []store.WorkSession{
		{TaskURL: "task1", ProjectTitle: "Project Alpha", StartedAt: iso(2024, 1, 9, 10, 0, 0), EndedAt: iso(2024, 1, 9, 12, 0, 0), Labels: []string{"bug", "frontend"}},
		{TaskURL: "task1", ProjectTitle: "Project Alpha", StartedAt: iso(2024, 1, 9, 22, 0, 0), EndedAt: iso(2024, 1, 10, 2, 0, 0), Labels: []string{"bug", "ops"}},
		{TaskURL: "task2", ProjectTitle: "Project Beta", StartedAt: iso(2024, 1, 7, 12, 0, 0), EndedAt: iso(2024, 1, 7, 13, 0, 0), Labels: []string{"legacy"}},
		{TaskURL: "task1", ProjectTitle: "Project Alpha", StartedAt: iso(2024, 1, 10, 9, 0, 0), EndedAt: "", Labels: []string{"bug"}},
	}
}

func TestAggregateFunctionsWithRunningSessions(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	sessions := fixtureSessions()

	since2 := now.AddDate(0, 0, -2)
	totalsDay := AggregatePeriodTotals(sessions, Day, since2, now)
	if totalsDay["2024-01-09"] != 14400 {
		t.Errorf("day[2024-01-09] = %d, want 14400", totalsDay["2024-01-09"])
	}
	if totalsDay["2024-01-10"] != 18000 {
		t.Errorf("day[2024-01-10] = %d, want 18000", totalsDay["2024-01-10"])
	}
	if _, ok := totalsDay["2024-01-07"]; ok {
		t.Error("day totals should not include 2024-01-07 within a 2-day window")
	}

	since7 := now.AddDate(0, 0, -7)
	totalsWeek := AggregatePeriodTotals(sessions, Week, since7, now)
	if totalsWeek["2024-W02"] != 32400 {
		t.Errorf("week[2024-W02] = %d, want 32400", totalsWeek["2024-W02"])
	}
	if totalsWeek["2024-W01"] != 3600 {
		t.Errorf("week[2024-W01] = %d, want 3600", totalsWeek["2024-W01"])
	}

	since30 := now.AddDate(0, 0, -30)
	totalsMonth := AggregatePeriodTotals(sessions, Month, since30, now)
	if totalsMonth["2024-01"] != 36000 {
		t.Errorf("month[2024-01] = %d, want 36000", totalsMonth["2024-01"])
	}

	projTotals := AggregateProjectTotals(sessions, since2, now)
	if projTotals["Project Alpha"] != 32400 {
		t.Errorf("project[Alpha] = %d, want 32400", projTotals["Project Alpha"])
	}
	if _, ok := projTotals["Project Beta"]; ok {
		t.Error("Project Beta should be outside the 2-day window")
	}

	taskTotals := AggregateTaskTotals(sessions, since2, now)
	if taskTotals["task1"] != 32400 {
		t.Errorf("task[task1] = %d, want 32400", taskTotals["task1"])
	}
	if _, ok := taskTotals["task2"]; ok {
		t.Error("task2 should be outside the 2-day window")
	}

	snapshot := TaskDurationSnapshot(sessions, []string{"task1", "task1", "task2"}, now)
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 distinct tasks in snapshot, got %d", len(snapshot))
	}
	if snapshot["task1"].Current != 10800 {
		t.Errorf("task1.Current = %d, want 10800", snapshot["task1"].Current)
	}
	if snapshot["task1"].Total != 32400 {
		t.Errorf("task1.Total = %d, want 32400", snapshot["task1"].Total)
	}
	if snapshot["task2"].Current != 0 {
		t.Errorf("task2.Current = %d, want 0", snapshot["task2"].Current)
	}
	if snapshot["task2"].Total != 3600 {
		t.Errorf("task2.Total = %d, want 3600", snapshot["task2"].Total)
	}

	labelTotals := AggregateLabelTotals(sessions, since2, now)
	if labelTotals["bug"] != 32400 {
		t.Errorf("label[bug] = %d, want 32400", labelTotals["bug"])
	}
	if labelTotals["frontend"] != 7200 {
		t.Errorf("label[frontend] = %d, want 7200", labelTotals["frontend"])
	}
	if labelTotals["ops"] != 14400 {
		t.Errorf("label[ops] = %d, want 14400", labelTotals["ops"])
	}
	if _, ok := labelTotals["legacy"]; ok {
		t.Error("legacy should be outside the 2-day window")
	}

	projFiltered := AggregatePeriodTotals(filterBySession(sessions, func(s store.WorkSession) bool {
		return s.ProjectTitle == "Project Alpha"
	}), Day, since2, now)
	if !mapsEqual(projFiltered, totalsDay) {
		t.Errorf("project-filtered day totals %v differ from unfiltered %v", projFiltered, totalsDay)
	}

	taskFiltered := AggregatePeriodTotals(filterBySession(sessions, func(s store.WorkSession) bool {
		return s.TaskURL == "task1"
	}), Day, since2, now)
	if !mapsEqual(taskFiltered, totalsDay) {
		t.Errorf("task-filtered day totals %v differ from unfiltered %v", taskFiltered, totalsDay)
	}

	since7d := now.AddDate(0, 0, -7)
	allDay := AggregatePeriodTotals(sessions, Day, since7d, now)
	if allDay["2024-01-07"] != 3600 {
		t.Errorf("day[2024-01-07] over a 7-day window = %d, want 3600", allDay["2024-01-07"])
	}
}

func filterBySession(sessions []store.WorkSession, keep func(store.WorkSession) bool) []store.WorkSession {
	var out []store.WorkSession
	for _, s := range sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func mapsEqual(a, b map[string]int64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
