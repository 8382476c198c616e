// Package edit implements the optimistic-write coordinator: stage a local
// value, fire a background remote mutation, commit or roll back on
// completion. Grounded directly on the teacher's
// internal/repo/sqlite.go triggerBackgroundRefresh/refreshing map — the
// same per-key "already in flight, skip" dedup shape, generalized from one
// key (refresh kind) to (field class, task URL), per spec.md §4.4.
package edit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/arjunpatel/ghboard/internal/events"
	"github.com/arjunpatel/ghboard/internal/store"
)

// RemoteClient is the subset of ghclient.Client the coordinator drives.
type RemoteClient interface {
	GetProjectFieldIDByName(ctx context.Context, projectID, fieldName string) (string, error)
	SetProjectSingleSelect(ctx context.Context, projectID, itemID, fieldID, optionID string) error
	SetProjectDate(ctx context.Context, projectID, itemID, fieldID, isoDate string) error
	SetProjectIteration(ctx context.Context, projectID, itemID, fieldID, iterationID string) error
	SetIssueLabels(ctx context.Context, contentNodeID string, labelIDs []string) error
	SetIssueAssignees(ctx context.Context, contentNodeID string, userIDs []string) error
	AddIssueComment(ctx context.Context, contentNodeID, body string) error
}

// Coordinator schedules and tracks in-flight remote writes, one pending
// slot per (field class, task URL) pair.
type Coordinator struct {
	store  *store.Store
	client RemoteClient
	sink   *events.Sink

	mu      sync.Mutex
	pending map[string]bool

	fieldIDMu sync.Mutex
	fieldIDs  map[string]string // "<projectID>|<fieldName>" -> resolved field id
}

// NewCoordinator builds a Coordinator. sink may be nil for headless runs.
func NewCoordinator(st *store.Store, client RemoteClient, sink *events.Sink) *Coordinator {
	return &Coordinator{
		store:    st,
		client:   client,
		sink:     sink,
		pending:  make(map[string]bool),
		fieldIDs: make(map[string]string),
	}
}

func (c *Coordinator) begin(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[key] {
		return false
	}
	c.pending[key] = true
	return true
}

func (c *Coordinator) end(key string) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
}

// IsPending reports whether a write for this (class, url) pair is in flight.
func (c *Coordinator) IsPending(class, url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[class+":"+url]
}

// resolveFieldID implements spec.md §4.4's lazy field-id lookup: resolve
// once per (project, field name) and memoize for subsequent edits.
func (c *Coordinator) resolveFieldID(ctx context.Context, projectID, fieldName, known string) (string, error) {
	if known != "" {
		return known, nil
	}
	key := projectID + "|" + fieldName
	c.fieldIDMu.Lock()
	if id, ok := c.fieldIDs[key]; ok {
		c.fieldIDMu.Unlock()
		return id, nil
	}
	c.fieldIDMu.Unlock()

	id, err := c.client.GetProjectFieldIDByName(ctx, projectID, fieldName)
	if err != nil {
		return "", err
	}
	c.fieldIDMu.Lock()
	c.fieldIDs[key] = id
	c.fieldIDMu.Unlock()
	return id, nil
}

func (c *Coordinator) statusLine(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[edit] %s", msg)
	c.sink.Send(events.NewStatusLine(msg))
}

func (c *Coordinator) rowChanged(url string) {
	c.sink.Send(events.NewRowChanged(url))
}

func now() string { return store.Now() }

// --- Status ---

// EditStatus stages newStatus optimistically, then writes it to GitHub in
// the background. If the new status is a done status, any running
// session for url is stopped (spec.md §4.4 step 4).
func (c *Coordinator) EditStatus(ctx context.Context, url, projectID, itemID, fieldID, fieldName, newStatus, newOptionID, priorStatus, priorOptionID string) {
	key := "status:" + url
	if !c.begin(key) {
		return
	}

	resolvedFieldID, err := c.resolveFieldID(ctx, projectID, fieldName, fieldID)
	if err != nil {
		c.end(key)
		c.statusLine("status update refused for %s: no field id (%v)", url, err)
		return
	}

	if err := c.store.StageStatus(ctx, url, newStatus, newOptionID); err != nil {
		c.end(key)
		c.statusLine("status update failed for %s: %v", url, err)
		return
	}
	c.rowChanged(url)

	go func() {
		defer c.end(key)
		err := c.client.SetProjectSingleSelect(ctx, projectID, itemID, resolvedFieldID, newOptionID)
		if err != nil {
			if resetErr := c.store.ResetStatus(context.Background(), url, priorStatus, priorOptionID); resetErr != nil {
				log.Printf("[edit] reset status for %s also failed: %v", url, resetErr)
			}
			c.rowChanged(url)
			c.statusLine("status update failed for %s: %v", url, err)
			return
		}

		isDone := store.IsDoneStatus(newStatus)
		if err := c.store.CommitStatus(context.Background(), url, newStatus, newOptionID, isDone); err != nil {
			log.Printf("[edit] commit status for %s failed: %v", url, err)
		}
		if isDone {
			if err := c.store.StopSession(context.Background(), url, now()); err != nil {
				log.Printf("[edit] auto-stop session for %s failed: %v", url, err)
			}
		}
		c.rowChanged(url)
		c.statusLine("status updated for %s", url)
	}()
}

// --- Priority ---

// EditPriority mirrors EditStatus without the done-detection side effect.
func (c *Coordinator) EditPriority(ctx context.Context, url, projectID, itemID, fieldID, fieldName, newPriority, newOptionID, priorPriority, priorOptionID string) {
	key := "priority:" + url
	if !c.begin(key) {
		return
	}

	resolvedFieldID, err := c.resolveFieldID(ctx, projectID, fieldName, fieldID)
	if err != nil {
		c.end(key)
		c.statusLine("priority update refused for %s: no field id (%v)", url, err)
		return
	}

	if err := c.store.StagePriority(ctx, url, newPriority, newOptionID); err != nil {
		c.end(key)
		c.statusLine("priority update failed for %s: %v", url, err)
		return
	}
	c.rowChanged(url)

	go func() {
		defer c.end(key)
		if err := c.client.SetProjectSingleSelect(ctx, projectID, itemID, resolvedFieldID, newOptionID); err != nil {
			if resetErr := c.store.ResetPriority(context.Background(), url, priorPriority, priorOptionID); resetErr != nil {
				log.Printf("[edit] reset priority for %s also failed: %v", url, resetErr)
			}
			c.rowChanged(url)
			c.statusLine("priority update failed for %s: %v", url, err)
			return
		}
		if err := c.store.CommitPriority(context.Background(), url, newPriority, newOptionID); err != nil {
			log.Printf("[edit] commit priority for %s failed: %v", url, err)
		}
		c.rowChanged(url)
		c.statusLine("priority updated for %s", url)
	}()
}

// --- Dates ---

// EditDate validates isoDate, then writes it both locally and remotely.
// Unlike status/priority there is no separate staged/committed value: the
// date column is overwritten immediately and rolled back to priorDate on
// remote failure, matching the calendar editor's simpler round-trip.
func (c *Coordinator) EditDate(ctx context.Context, url, projectID, itemID, fieldID string, field store.DateField, fieldName, isoDate, priorFieldName, priorDate string) error {
	if isoDate != "" {
		if err := ValidateDate(isoDate); err != nil {
			return err
		}
	}

	key := fmt.Sprintf("date%d:%s", field, url)
	if !c.begin(key) {
		return nil
	}

	resolvedFieldID, err := c.resolveFieldID(ctx, projectID, fieldName, fieldID)
	if err != nil {
		c.end(key)
		c.statusLine("date update refused for %s: no field id (%v)", url, err)
		return nil
	}

	if err := c.store.UpdateDate(ctx, url, field, fieldName, isoDate); err != nil {
		c.end(key)
		return err
	}
	c.rowChanged(url)

	go func() {
		defer c.end(key)
		if err := c.client.SetProjectDate(ctx, projectID, itemID, resolvedFieldID, isoDate); err != nil {
			if resetErr := c.store.ResetDate(context.Background(), url, field, priorFieldName, priorDate); resetErr != nil {
				log.Printf("[edit] reset date for %s also failed: %v", url, resetErr)
			}
			c.rowChanged(url)
			c.statusLine("date update failed for %s: %v", url, err)
			return
		}
		c.rowChanged(url)
		c.statusLine("date updated for %s", url)
	}()
	return nil
}

// --- Iteration ---

func (c *Coordinator) EditIteration(ctx context.Context, url, projectID, itemID, fieldID, fieldName, optionID, title, start string, duration int, priorOptionID, priorTitle, priorStart string, priorDuration int) {
	key := "iteration:" + url
	if !c.begin(key) {
		return
	}

	resolvedFieldID, err := c.resolveFieldID(ctx, projectID, fieldName, fieldID)
	if err != nil {
		c.end(key)
		c.statusLine("iteration update refused for %s: no field id (%v)", url, err)
		return
	}

	if err := c.store.UpdateIteration(ctx, url, optionID, title, start, duration); err != nil {
		c.end(key)
		c.statusLine("iteration update failed for %s: %v", url, err)
		return
	}
	c.rowChanged(url)

	go func() {
		defer c.end(key)
		if err := c.client.SetProjectIteration(ctx, projectID, itemID, resolvedFieldID, optionID); err != nil {
			if resetErr := c.store.ResetIteration(context.Background(), url, priorOptionID, priorTitle, priorStart, priorDuration); resetErr != nil {
				log.Printf("[edit] reset iteration for %s also failed: %v", url, resetErr)
			}
			c.rowChanged(url)
			c.statusLine("iteration update failed for %s: %v", url, err)
			return
		}
		c.rowChanged(url)
		c.statusLine("iteration updated for %s", url)
	}()
}

// --- Labels ---

// EditLabels deduplicates labelNames (ValidateLabels), writes them locally,
// and pushes the corresponding label node ids remotely, restoring
// priorLabels on failure.
func (c *Coordinator) EditLabels(ctx context.Context, url, contentNodeID string, labelNames []string, labelIDs []string, priorLabels []string) {
	labelNames = ValidateLabels(labelNames)

	key := "labels:" + url
	if !c.begin(key) {
		return
	}

	if err := c.store.UpdateLabels(ctx, url, labelNames); err != nil {
		c.end(key)
		c.statusLine("label update failed for %s: %v", url, err)
		return
	}
	c.rowChanged(url)

	go func() {
		defer c.end(key)
		if err := c.client.SetIssueLabels(ctx, contentNodeID, labelIDs); err != nil {
			if resetErr := c.store.UpdateLabels(context.Background(), url, priorLabels); resetErr != nil {
				log.Printf("[edit] reset labels for %s also failed: %v", url, resetErr)
			}
			c.rowChanged(url)
			c.statusLine("label update failed for %s: %v", url, err)
			return
		}
		c.rowChanged(url)
		c.statusLine("labels updated for %s", url)
	}()
}

// --- Assignees ---

func (c *Coordinator) EditAssignees(ctx context.Context, url, contentNodeID string, userIDs, logins []string, priorUserIDs, priorLogins []string) {
	key := "assignees:" + url
	if !c.begin(key) {
		return
	}

	if err := c.store.UpdateAssignees(ctx, url, userIDs, logins); err != nil {
		c.end(key)
		c.statusLine("assignee update failed for %s: %v", url, err)
		return
	}
	c.rowChanged(url)

	go func() {
		defer c.end(key)
		if err := c.client.SetIssueAssignees(ctx, contentNodeID, userIDs); err != nil {
			if resetErr := c.store.UpdateAssignees(context.Background(), url, priorUserIDs, priorLogins); resetErr != nil {
				log.Printf("[edit] reset assignees for %s also failed: %v", url, resetErr)
			}
			c.rowChanged(url)
			c.statusLine("assignee update failed for %s: %v", url, err)
			return
		}
		c.rowChanged(url)
		c.statusLine("assignees updated for %s", url)
	}()
}

// --- Comments ---

// AddComment validates body is non-empty, then posts it in the
// background; comments have no local row state to stage.
func (c *Coordinator) AddComment(ctx context.Context, url, contentNodeID, body string) error {
	if err := ValidateComment(body); err != nil {
		return err
	}

	key := "comment:" + url
	if !c.begin(key) {
		return nil
	}

	go func() {
		defer c.end(key)
		if err := c.client.AddIssueComment(ctx, contentNodeID, body); err != nil {
			c.statusLine("comment failed for %s: %v", url, err)
			return
		}
		c.statusLine("comment posted for %s", url)
	}()
	return nil
}

// ValidateDate parses an ISO 8601 date, per spec.md §4.4's "dates must parse".
func ValidateDate(iso string) error {
	_, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return nil
}

// ValidateLabels trims whitespace, drops empties, and deduplicates
// preserving first-occurrence order, per spec.md §4.4.
func ValidateLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// ValidateComment requires a non-empty comment body.
func ValidateComment(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment must not be empty")
	}
	return nil
}
