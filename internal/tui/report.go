package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arjunpatel/ghboard/internal/analytics"
	"github.com/arjunpatel/ghboard/internal/store"
)

// reportGranularities cycles through the period bucket widths the report
// view supports, spec.md §4.5's day/week/month analytics breakdown.
var reportGranularities = []analytics.Granularity{analytics.Day, analytics.Week, analytics.Month}

// reportState holds the aggregates last loaded for the analytics overlay
// (spec.md §2 C8's "report" modal state, SPEC_FULL.md §7.4).
type reportState struct {
	granularityIdx int
	since          time.Time

	periods   map[string]int64
	byProject map[string]int64
	byLabel   map[string]int64
}

type reportLoadedMsg struct {
	periods   map[string]int64
	byProject map[string]int64
	byLabel   map[string]int64
}

// loadReportCmd re-aggregates every session since report.since at the
// current granularity.
func (m *Model) loadReportCmd() tea.Cmd {
	st := m.st
	since := m.report.since
	if since.IsZero() {
		since = time.Now().AddDate(0, 0, -30)
	}
	g := reportGranularities[m.report.granularityIdx]
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		now := time.Now()
		sessions, err := st.SessionsBetween(ctx, since.Format(store.TimestampLayout), now.Format(store.TimestampLayout))
		if err != nil {
			return reportLoadedMsg{}
		}
		return reportLoadedMsg{
			periods:   analytics.AggregatePeriodTotals(sessions, g, since, now),
			byProject: analytics.AggregateProjectTotals(sessions, since, now),
			byLabel:   analytics.AggregateLabelTotals(sessions, since, now),
		}
	}
}

func (m *Model) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Report):
		m.mode = ModeBrowse
		return m, nil
	}
	switch msg.String() {
	case "g":
		m.report.granularityIdx = (m.report.granularityIdx + 1) % len(reportGranularities)
		return m, m.loadReportCmd()
	}
	return m, nil
}

func (m *Model) viewReport() string {
	r := m.report
	var b strings.Builder
	gname := []string{"day", "week", "month"}[r.granularityIdx]
	fmt.Fprintf(&b, "%s (by %s, g to cycle)\n\n", styleHeader.Render("Time report"), gname)

	b.WriteString(styleHeader.Render("Periods") + "\n")
	for _, k := range sortedKeys(r.periods) {
		fmt.Fprintf(&b, "  %-12s %s\n", k, formatDuration(r.periods[k]))
	}

	b.WriteString("\n" + styleHeader.Render("By project") + "\n")
	for _, k := range sortedKeys(r.byProject) {
		fmt.Fprintf(&b, "  %-24s %s\n", truncate(k, 24), formatDuration(r.byProject[k]))
	}

	b.WriteString("\n" + styleHeader.Render("By label") + "\n")
	for _, k := range sortedKeys(r.byLabel) {
		fmt.Fprintf(&b, "  %-24s %s\n", truncate(k, 24), formatDuration(r.byLabel[k]))
	}

	b.WriteString("\nesc to close")
	return styleModalBorder.Render(b.String())
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
