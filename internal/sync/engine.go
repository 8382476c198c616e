// Package sync orchestrates discovery, per-project scanning, field
// extraction, and row materialization into the store, per spec.md §4.3.
//
// Field extraction and classification are grounded line-for-line on
// original_source/gh_task_viewer.py:fetch_tasks_github (date-field regex
// matching, people-field/assignee union, single-select/iteration
// classification, done detection, placeholder rows for dateless items and
// empty targets). The Go shape — an APIClient interface seam, a
// per-target loop with progress ticks, [sync]-prefixed logging — is
// grounded on the teacher's internal/sync/worker.go.
package sync

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/arjunpatel/ghboard/internal/config"
	"github.com/arjunpatel/ghboard/internal/discovery"
	"github.com/arjunpatel/ghboard/internal/ghclient"
	"github.com/arjunpatel/ghboard/internal/store"
)

// APIClient is the subset of ghclient.Client the sync engine needs,
// narrowed to an interface so tests can substitute a fake (teacher idiom,
// internal/sync/worker.go's APIClient).
type APIClient interface {
	DiscoverOpenProjects(ctx context.Context, ownerType, owner string) ([]ghclient.ProjectSummary, error)
	ScanProjectPage(ctx context.Context, ownerType, owner string, number int, after string) (ghclient.ProjectPage, error)
}

// ProgressFunc receives (completed_targets, total_targets, human_status)
// ticks, per spec.md §4.3 step 2.
type ProgressFunc func(done, total int, status string)

// FetchResult is the sync engine's output: the rows gathered, whether the
// run was cut short (by rate limiting or another scan error), and a human
// message.
type FetchResult struct {
	Rows    []store.TaskRow
	Partial bool
	Message string
}

// Engine runs fetches against an APIClient, consulting a discovery cache
// when live project discovery fails.
type Engine struct {
	Client APIClient
	Cache  *discovery.Cache
}

// NewEngine constructs an Engine.
func NewEngine(client APIClient, cache *discovery.Cache) *Engine {
	return &Engine{Client: client, Cache: cache}
}

type target struct {
	ownerType string
	owner     string
	number    int
	title     string
}

// Fetch implements spec.md §4.3 steps 1-7.
func (e *Engine) Fetch(ctx context.Context, cfg *config.Config, includeUnassigned bool, progress ProgressFunc) (FetchResult, error) {
	regex, err := regexp.Compile("(?i)" + cfg.DateFieldRegex)
	if err != nil {
		return FetchResult{}, fmt.Errorf("compile date field regex: %w", err)
	}
	var iterRegex *regexp.Regexp
	if cfg.IterationFieldRegex != "" {
		iterRegex, err = regexp.Compile("(?i)" + cfg.IterationFieldRegex)
		if err != nil {
			return FetchResult{}, fmt.Errorf("compile iteration field regex: %w", err)
		}
	}

	targets, err := e.resolveTargets(ctx, cfg)
	if err != nil {
		return FetchResult{}, err
	}

	syncedAt := time.Now().Format(store.TimestampLayout)
	var out []store.TaskRow
	total := len(targets)
	tick := func(done int, status string) {
		if progress != nil {
			progress(done, total, fmt.Sprintf("%s  %s", asciiBar(done, total), status))
		}
	}

	for i, tgt := range targets {
		label := fmt.Sprintf("%s:%s #%d", tgt.ownerType, tgt.owner, tgt.number)
		if tgt.title != "" {
			label += " — " + tgt.title
		}
		tick(i, "Scanning "+label)
		log.Printf("[sync] scanning %s", label)

		rowsBefore := len(out)
		after := ""
		notFound := false
		for {
			page, err := e.Client.ScanProjectPage(ctx, tgt.ownerType, tgt.owner, tgt.number, after)
			if err != nil {
				if ghclient.IsProjectNotFound(err) {
					log.Printf("[sync] %s not found, skipping", label)
					notFound = true
					break
				}
				if ghclient.IsRateLimited(err) {
					log.Printf("[sync] rate limited during %s, aborting run", label)
					return FetchResult{Rows: out, Partial: true, Message: "Rate limited; partial results"}, nil
				}
				return FetchResult{Rows: out, Partial: true, Message: fmt.Sprintf("sync error: %v", err)}, nil
			}

			for _, item := range page.Items {
				rows := extractRows(item, tgt, regex, iterRegex, cfg.User, includeUnassigned, syncedAt)
				out = append(out, rows...)
			}

			if !page.PageInfo.HasNextPage {
				break
			}
			after = page.PageInfo.EndCursor
			tick(i, "Scanning "+label+" (next page)")
		}

		if notFound {
			tick(i+1, "Skipped "+label+" (not found)")
			continue
		}

		if len(out) == rowsBefore {
			out = append(out, placeholderRow(tgt, syncedAt))
		}

		tick(i+1, "Finished "+label)
	}

	tick(total, "Done")
	return FetchResult{Rows: out, Partial: false}, nil
}

// resolveTargets implements spec.md §4.3 step 1: explicit numbers are used
// as-is; a wildcard spec calls discovery, falling back to the persisted
// cache on failure and refreshing the cache on success.
func (e *Engine) resolveTargets(ctx context.Context, cfg *config.Config) ([]target, error) {
	var targets []target
	for _, spec := range cfg.Projects {
		if !spec.All {
			for _, n := range spec.Numbers {
				targets = append(targets, target{ownerType: spec.OwnerType, owner: spec.Owner, number: n})
			}
			continue
		}

		key := discovery.Key(spec.OwnerType, spec.Owner)
		projects, err := e.Client.DiscoverOpenProjects(ctx, spec.OwnerType, spec.Owner)
		if err != nil {
			log.Printf("[sync] discovery failed for %s: %v; falling back to cache", key, err)
			if e.Cache == nil {
				continue
			}
			cached, ok := e.Cache.Get(key)
			if !ok {
				continue
			}
			for _, c := range cached {
				targets = append(targets, target{ownerType: spec.OwnerType, owner: spec.Owner, number: c.Number, title: c.Title})
			}
			continue
		}

		if e.Cache != nil {
			entries := make([]discovery.Entry, len(projects))
			for i, p := range projects {
				entries[i] = discovery.Entry{Number: p.Number, Title: p.Title, ProjectID: p.ProjectID}
			}
			if err := e.Cache.Set(key, entries); err != nil {
				log.Printf("[sync] failed to persist discovery cache for %s: %v", key, err)
			}
		}
		for _, p := range projects {
			targets = append(targets, target{ownerType: spec.OwnerType, owner: spec.Owner, number: p.Number, title: p.Title})
		}
	}
	return targets, nil
}

func asciiBar(done, total int) string {
	const width = 40
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	fill := width * pct / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", fill), strings.Repeat(".", width-fill), pct)
}

func placeholderRow(tgt target, syncedAt string) store.TaskRow {
	title := tgt.title
	if title == "" {
		title = "(project)"
	}
	return store.TaskRow{
		OwnerType: tgt.ownerType, Owner: tgt.owner, ProjectNumber: tgt.number, ProjectTitle: title,
		StartField: "(none)", StartDate: "",
		Title:      "(no assigned items) - press Shift+U to include unassigned",
		UpdatedAt:  syncedAt,
		LastSeenAt: syncedAt,
	}
}
