package sync

import (
	"regexp"
	"strings"
	"time"

	"github.com/arjunpatel/ghboard/internal/ghclient"
	"github.com/arjunpatel/ghboard/internal/store"
)

// isoDateLayout is the date-only ISO 8601 form GitHub's date fields carry
// (spec.md §3: "empty, or an ISO date that parses successfully").
const isoDateLayout = "2006-01-02"

// extractRows implements spec.md §4.3 steps 3-5, translated field-for-field
// from original_source/gh_task_viewer.py:fetch_tasks_github's per-item
// extraction loop. One ItemNode can yield zero rows (excluded by the
// inclusion rule), one row (no date field matched), or several (one per
// matched date field name).
func extractRows(item ghclient.ItemNode, tgt target, dateRe, iterRe *regexp.Regexp, user string, includeUnassigned bool, syncedAt string) []store.TaskRow {
	content := item.Content
	if content.Typename == "" {
		return nil
	}

	assignees := map[string]bool{}
	var assigneeLogins []string
	var assigneeUserIDs []string
	for _, a := range content.Assignees.Nodes {
		if !assignees[a.Login] {
			assignees[a.Login] = true
			assigneeLogins = append(assigneeLogins, a.Login)
			assigneeUserIDs = append(assigneeUserIDs, a.ID)
		}
	}

	var status, priority string
	var statusFieldID, statusOptionID string
	var priorityFieldID, priorityOptionID string
	var statusOptions, priorityOptions []store.Option
	var assigneeFieldID string
	var iterationField, iterationOptionID, iterationTitle, iterationStart string
	var iterationDuration int
	var iterationOptions []store.Option
	var dateFields []struct{ name, date string }

	for _, fv := range item.FieldValues.Nodes {
		name := fv.Field.Name
		switch fv.Typename {
		case "ProjectV2ItemFieldDateValue":
			if fv.Date == "" || !dateRe.MatchString(name) {
				continue
			}
			if _, err := time.Parse(isoDateLayout, fv.Date); err != nil {
				continue
			}
			dateFields = append(dateFields, struct{ name, date string }{name, fv.Date})
		case "ProjectV2ItemFieldUserValue":
			assigneeFieldID = fv.Field.ID
			for _, u := range fv.Users.Nodes {
				if !assignees[u.Login] {
					assignees[u.Login] = true
					assigneeLogins = append(assigneeLogins, u.Login)
					assigneeUserIDs = append(assigneeUserIDs, u.ID)
				}
			}
		case "ProjectV2ItemFieldSingleSelectValue":
			switch classifySingleSelect(name) {
			case "status":
				status = fv.Name
				statusFieldID = fv.Field.ID
				statusOptionID = fv.OptionID
				statusOptions = toStoreOptions(fv.Field.Options)
			case "priority":
				priority = fv.Name
				priorityFieldID = fv.Field.ID
				priorityOptionID = fv.OptionID
				priorityOptions = toStoreOptions(fv.Field.Options)
			}
		case "ProjectV2ItemFieldIterationValue":
			if iterRe == nil || iterRe.MatchString(name) {
				iterationField = name
				iterationOptionID = fv.IterationID
				iterationTitle = fv.Title
				iterationStart = fv.StartDate
				iterationDuration = fv.Duration
			}
		}
	}

	var labels []string
	for _, l := range content.Labels.Nodes {
		labels = append(labels, l.Name)
	}

	createdByMe := strings.EqualFold(content.Author.Login, user)
	assignedToMe := assignees[user]
	if !assignedToMe && !createdByMe && !includeUnassigned {
		return nil
	}

	base := store.TaskRow{
		OwnerType:         tgt.ownerType,
		Owner:             tgt.owner,
		ProjectID:         item.Project.ID,
		ProjectNumber:     tgt.number,
		ProjectTitle:      firstNonEmpty(item.Project.Title, tgt.title),
		Title:             content.Title,
		URL:               content.URL,
		ItemID:            item.ID,
		ContentNodeID:     content.ID,
		Repo:              content.Repository.NameWithOwner,
		IterationField:    iterationField,
		IterationOptionID: iterationOptionID,
		IterationTitle:    iterationTitle,
		IterationStart:    iterationStart,
		IterationDuration: iterationDuration,
		IterationOptions:  iterationOptions,
		Status:            status,
		StatusFieldID:     statusFieldID,
		StatusOptionID:    statusOptionID,
		StatusOptions:     statusOptions,
		Priority:          priority,
		PriorityFieldID:   priorityFieldID,
		PriorityOptionID:  priorityOptionID,
		PriorityOptions:   priorityOptions,
		AssigneeFieldID:   assigneeFieldID,
		AssigneeLogins:    assigneeLogins,
		AssigneeUserIDs:   assigneeUserIDs,
		AssignedToMe:      assignedToMe,
		CreatedByMe:       createdByMe,
		Labels:            labels,
		UpdatedAt:         syncedAt,
		LastSeenAt:        syncedAt,
		IsDone:            store.IsDoneStatus(status),
	}

	if len(dateFields) == 0 {
		row := base
		row.StartField = "(none)"
		row.StartDate = ""
		return []store.TaskRow{row}
	}

	rows := make([]store.TaskRow, 0, len(dateFields))
	for _, df := range dateFields {
		row := base
		row.StartField = df.name
		row.StartDate = df.date
		rows = append(rows, row)
	}
	return rows
}

// classifySingleSelect matches a single-select field's display name
// case-insensitively against the recognized classes, per spec.md §4.3
// step 3's "status, priority, etc." discriminated-kind classification.
func classifySingleSelect(name string) string {
	low := strings.ToLower(strings.TrimSpace(name))
	switch {
	case low == "status" || low == "state" || low == "progress":
		return "status"
	case low == "priority":
		return "priority"
	default:
		return ""
	}
}

func toStoreOptions(opts []ghclient.Option) []store.Option {
	if len(opts) == 0 {
		return nil
	}
	out := make([]store.Option, len(opts))
	for i, o := range opts {
		out[i] = store.Option{ID: o.ID, Name: o.Name}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
