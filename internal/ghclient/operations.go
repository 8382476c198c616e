package ghclient

import (
	"context"
	"fmt"
)

// ProjectSummary is one entry from DiscoverOpenProjects.
type ProjectSummary struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	ProjectID string `json:"id"`
}

// FieldValue is one discriminated field-value union member attached to an
// item, flattened across the date/people/single-select/iteration kinds
// spec.md §4.3 step 3 classifies.
type FieldValue struct {
	Typename string `json:"__typename"`
	Field    struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Options []Option `json:"options"` // only present on single-select fields
	} `json:"field"`
	Date     string `json:"date"`
	Name     string `json:"name"`     // single-select option name
	OptionID string `json:"optionId"` // single-select option id
	Users    struct {
		Nodes []struct {
			Login string `json:"login"`
			ID    string `json:"id"`
		} `json:"nodes"`
	} `json:"users"`
	IterationID string `json:"iterationId"`
	Title       string `json:"title"`
	StartDate   string `json:"startDate"`
	Duration    int    `json:"duration"`
}

// ItemNode is one project item row as returned by ScanProjectPage.
type ItemNode struct {
	ID      string `json:"id"`
	Content struct {
		Typename   string `json:"__typename"`
		Title      string `json:"title"`
		URL        string `json:"url"`
		ID         string `json:"id"`
		Repository struct {
			NameWithOwner string `json:"nameWithOwner"`
		} `json:"repository"`
		Assignees struct {
			Nodes []struct {
				Login string `json:"login"`
				ID    string `json:"id"`
			} `json:"nodes"`
		} `json:"assignees"`
		Author struct {
			Login string `json:"login"`
		} `json:"author"`
		Labels struct {
			Nodes []struct {
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"labels"`
	} `json:"content"`
	Project struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Title  string `json:"title"`
		URL    string `json:"url"`
	} `json:"project"`
	FieldValues struct {
		Nodes []FieldValue `json:"nodes"`
	} `json:"fieldValues"`
}

// PageInfo mirrors GraphQL's standard pagination cursor object.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// ProjectPage is one page of ScanProjectPage results.
type ProjectPage struct {
	Items    []ItemNode
	PageInfo PageInfo
}

// Option is an enumerated single-select/iteration field option.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DiscoverOpenProjects lists the open (non-closed) Projects v2 boards for
// an organization or user login.
func (c *Client) DiscoverOpenProjects(ctx context.Context, ownerType, owner string) ([]ProjectSummary, error) {
	var result struct {
		Organization *struct {
			ProjectsV2 struct {
				Nodes []struct {
					Number int    `json:"number"`
					Title  string `json:"title"`
					ID     string `json:"id"`
					Closed bool   `json:"closed"`
				} `json:"nodes"`
			} `json:"projectsV2"`
		} `json:"organization"`
		User *struct {
			ProjectsV2 struct {
				Nodes []struct {
					Number int    `json:"number"`
					Title  string `json:"title"`
					ID     string `json:"id"`
					Closed bool   `json:"closed"`
				} `json:"nodes"`
			} `json:"projectsV2"`
		} `json:"user"`
	}

	query := queryListOrgProjects
	if ownerType != "org" {
		query = queryListUserProjects
	}
	if err := c.GraphQLWithBackoff(ctx, query, map[string]any{"login": owner}, &result, nil); err != nil {
		return nil, err
	}

	var nodes []struct {
		Number int
		Title  string
		ID     string
		Closed bool
	}
	if ownerType == "org" && result.Organization != nil {
		for _, n := range result.Organization.ProjectsV2.Nodes {
			nodes = append(nodes, n)
		}
	} else if result.User != nil {
		for _, n := range result.User.ProjectsV2.Nodes {
			nodes = append(nodes, n)
		}
	}

	out := make([]ProjectSummary, 0, len(nodes))
	for _, n := range nodes {
		if n.Closed {
			continue
		}
		out = append(out, ProjectSummary{Number: n.Number, Title: n.Title, ProjectID: n.ID})
	}
	return out, nil
}

// ScanProjectPage fetches one page of items from a project board, per
// spec.md §4.2's scan_project_page.
func (c *Client) ScanProjectPage(ctx context.Context, ownerType, owner string, number int, after string) (ProjectPage, error) {
	var vars map[string]any
	query := queryScanOrgProject
	if ownerType == "org" {
		vars = map[string]any{"org": owner, "number": number}
	} else {
		query = queryScanUserProject
		vars = map[string]any{"login": owner, "number": number}
	}
	if after != "" {
		vars["after"] = after
	} else {
		vars["after"] = nil
	}

	var result struct {
		Organization *struct {
			ProjectV2 *struct {
				Items struct {
					Nodes    []ItemNode `json:"nodes"`
					PageInfo PageInfo   `json:"pageInfo"`
				} `json:"items"`
			} `json:"projectV2"`
		} `json:"organization"`
		User *struct {
			ProjectV2 *struct {
				Items struct {
					Nodes    []ItemNode `json:"nodes"`
					PageInfo PageInfo   `json:"pageInfo"`
				} `json:"items"`
			} `json:"projectV2"`
		} `json:"user"`
	}

	if err := c.GraphQLWithBackoff(ctx, query, vars, &result, nil); err != nil {
		return ProjectPage{}, err
	}

	var proj *struct {
		Items struct {
			Nodes    []ItemNode `json:"nodes"`
			PageInfo PageInfo   `json:"pageInfo"`
		} `json:"items"`
	}
	if ownerType == "org" && result.Organization != nil {
		proj = result.Organization.ProjectV2
	} else if result.User != nil {
		proj = result.User.ProjectV2
	}
	if proj == nil {
		return ProjectPage{}, nil
	}
	return ProjectPage{Items: proj.Items.Nodes, PageInfo: proj.Items.PageInfo}, nil
}

// GetProjectFieldIDByName resolves a project field's node id from its
// display name, used by the edit coordinator's lazy field-id resolution
// (spec.md §4.4).
func (c *Client) GetProjectFieldIDByName(ctx context.Context, projectID, fieldName string) (string, error) {
	var result struct {
		Node struct {
			Fields struct {
				Nodes []struct {
					Name string `json:"name"`
					ID   string `json:"id"`
				} `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	if err := c.GraphQLWithBackoff(ctx, queryProjectFields, map[string]any{"id": projectID}, &result, nil); err != nil {
		return "", err
	}
	for _, f := range result.Node.Fields.Nodes {
		if f.Name == fieldName {
			return f.ID, nil
		}
	}
	return "", fmt.Errorf("field %q not found on project %s", fieldName, projectID)
}

// GetProjectFieldOptions returns the enumerated options of a single-select
// or iteration field.
func (c *Client) GetProjectFieldOptions(ctx context.Context, fieldID string) ([]Option, error) {
	var result struct {
		Node struct {
			Options []Option `json:"options"`
		} `json:"node"`
	}
	if err := c.GraphQLWithBackoff(ctx, queryFieldOptions, map[string]any{"id": fieldID}, &result, nil); err != nil {
		return nil, err
	}
	return result.Node.Options, nil
}

// SetProjectSingleSelect mutates a status/priority single-select field.
func (c *Client) SetProjectSingleSelect(ctx context.Context, projectID, itemID, fieldID, optionID string) error {
	vars := map[string]any{
		"project": projectID, "item": itemID, "field": fieldID, "option": optionID,
	}
	return c.GraphQLWithBackoff(ctx, mutationSetSingleSelect, vars, nil, nil)
}

// SetProjectDate mutates a date field. An empty isoDate clears it.
func (c *Client) SetProjectDate(ctx context.Context, projectID, itemID, fieldID, isoDate string) error {
	var value any
	if isoDate != "" {
		value = isoDate
	}
	vars := map[string]any{
		"project": projectID, "item": itemID, "field": fieldID, "date": value,
	}
	return c.GraphQLWithBackoff(ctx, mutationSetDate, vars, nil, nil)
}

// SetProjectIteration mutates an iteration field.
func (c *Client) SetProjectIteration(ctx context.Context, projectID, itemID, fieldID, iterationID string) error {
	vars := map[string]any{
		"project": projectID, "item": itemID, "field": fieldID, "iteration": iterationID,
	}
	return c.GraphQLWithBackoff(ctx, mutationSetIteration, vars, nil, nil)
}

// RepoUser is an assignable repository collaborator.
type RepoUser struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

// ListRepoLabels pages through a repository's label set, up to maxPages,
// returning each label's node id alongside its name so callers can drive
// SetIssueLabels without a second lookup.
func (c *Client) ListRepoLabels(ctx context.Context, repo string, maxPages int) ([]Option, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	var out []Option
	var after string
	for page := 0; maxPages <= 0 || page < maxPages; page++ {
		var result struct {
			Repository struct {
				Labels struct {
					Nodes []struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"nodes"`
					PageInfo PageInfo `json:"pageInfo"`
				} `json:"labels"`
			} `json:"repository"`
		}
		vars := map[string]any{"owner": owner, "name": name}
		if after != "" {
			vars["after"] = after
		}
		if err := c.GraphQLWithBackoff(ctx, queryRepoLabels, vars, &result, nil); err != nil {
			return nil, err
		}
		for _, n := range result.Repository.Labels.Nodes {
			out = append(out, Option{ID: n.ID, Name: n.Name})
		}
		if !result.Repository.Labels.PageInfo.HasNextPage {
			break
		}
		after = result.Repository.Labels.PageInfo.EndCursor
	}
	return out, nil
}

// ListRepoAssignees pages through a repository's assignable-user set, up
// to maxPages.
func (c *Client) ListRepoAssignees(ctx context.Context, repo string, maxPages int) ([]RepoUser, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}
	var out []RepoUser
	var after string
	for page := 0; maxPages <= 0 || page < maxPages; page++ {
		var result struct {
			Repository struct {
				AssignableUsers struct {
					Nodes    []RepoUser `json:"nodes"`
					PageInfo PageInfo   `json:"pageInfo"`
				} `json:"assignableUsers"`
			} `json:"repository"`
		}
		vars := map[string]any{"owner": owner, "name": name}
		if after != "" {
			vars["after"] = after
		}
		if err := c.GraphQLWithBackoff(ctx, queryRepoAssignees, vars, &result, nil); err != nil {
			return nil, err
		}
		out = append(out, result.Repository.AssignableUsers.Nodes...)
		if !result.Repository.AssignableUsers.PageInfo.HasNextPage {
			break
		}
		after = result.Repository.AssignableUsers.PageInfo.EndCursor
	}
	return out, nil
}

// SetIssueLabels replaces the full label set on an issue or PR identified
// by its node id.
func (c *Client) SetIssueLabels(ctx context.Context, contentNodeID string, labelIDs []string) error {
	return c.GraphQLWithBackoff(ctx, mutationSetLabels, map[string]any{"item": contentNodeID, "labels": labelIDs}, nil, nil)
}

// SetIssueAssignees replaces the full assignee set on an issue or PR.
func (c *Client) SetIssueAssignees(ctx context.Context, contentNodeID string, userIDs []string) error {
	return c.GraphQLWithBackoff(ctx, mutationSetAssignees, map[string]any{"item": contentNodeID, "assignees": userIDs}, nil, nil)
}

// AddIssueComment posts a comment to an issue or PR.
func (c *Client) AddIssueComment(ctx context.Context, contentNodeID, body string) error {
	return c.GraphQLWithBackoff(ctx, mutationAddComment, map[string]any{"item": contentNodeID, "body": body}, nil, nil)
}

// CreateProjectItem adds an existing issue/PR to a project board.
func (c *Client) CreateProjectItem(ctx context.Context, projectID, contentNodeID string) (string, error) {
	var result struct {
		AddProjectV2ItemById struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}
	vars := map[string]any{"project": projectID, "content": contentNodeID}
	if err := c.GraphQLWithBackoff(ctx, mutationCreateItem, vars, &result, nil); err != nil {
		return "", err
	}
	return result.AddProjectV2ItemById.Item.ID, nil
}

// ResolveContentID looks up the node id of an issue or pull request from
// its web URL, so the "add item" flow (spec.md §2 C8 "add" state) can turn
// a pasted URL into the content id CreateProjectItem needs.
func (c *Client) ResolveContentID(ctx context.Context, url string) (string, error) {
	var result struct {
		Resource *struct {
			ID string `json:"id"`
		} `json:"resource"`
	}
	if err := c.GraphQLWithBackoff(ctx, queryResolveURL, map[string]any{"url": url}, &result, nil); err != nil {
		return "", err
	}
	if result.Resource == nil || result.Resource.ID == "" {
		return "", fmt.Errorf("could not resolve %q to an issue or pull request", url)
	}
	return result.Resource.ID, nil
}

func splitRepo(repo string) (owner, name string, err error) {
	for i := 0; i < len(repo); i++ {
		if repo[i] == '/' {
			return repo[:i], repo[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid repo full name %q, expected owner/name", repo)
}
