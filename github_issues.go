package githubmcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/shaharia-lab/goai/mcp"
	"github.com/shaharia-lab/goai/observability"
)

// GetListIssuesTool returns a tool that lists issues for a repository.
func (g *GitHub) GetListIssuesTool() mcp.Tool {
	return mcp.Tool{
		Name:        GitHubListIssuesToolName,
		Description: "Lists repository issues, most recently updated first, optionally including pull requests",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"repo": {
					"type": "string",
					"description": "Repository as 'owner/name' or a GitHub URL; optional if root_path points inside a git checkout"
				},
				"root_path": {
					"type": "string",
					"description": "Local path used to infer the repository from its git remote"
				},
				"state": {
					"type": "string",
					"enum": ["open", "closed", "all"],
					"description": "Issue state filter",
					"default": "open"
				},
				"labels": {
					"type": "string",
					"description": "Comma-separated labels filter"
				},
				"limit": {
					"type": "integer",
					"description": "Maximum issues to return (1-100)",
					"default": 20
				},
				"include_prs": {
					"type": "boolean",
					"description": "Include pull requests in the listing",
					"default": false
				}
			},
			"required": []
		}`),
		Handler: g.handleListIssues,
	}
}

type issueSummary struct {
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	State     string   `json:"state"`
	IsPR      bool     `json:"is_pr"`
	User      string   `json:"user"`
	Labels    []string `json:"labels"`
	Comments  int      `json:"comments"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
	HTMLURL   string   `json:"html_url"`
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}

func (g *GitHub) handleListIssues(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s.Handler", params.Name))
	defer span.End()

	var input struct {
		Repo       string `json:"repo"`
		RootPath   string `json:"root_path"`
		State      string `json:"state"`
		Labels     string `json:"labels"`
		Limit      int    `json:"limit"`
		IncludePRs bool   `json:"include_prs"`
	}

	if err := json.Unmarshal(params.Arguments, &input); err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("failed to unmarshal input: %w", err)
	}

	if input.State == "" {
		input.State = "open"
	}
	if input.Limit == 0 {
		input.Limit = 20
	}
	n := clampLimit(input.Limit, 1, 100)

	ref, err := g.resolveRef(input.Repo, input.RootPath)
	if err != nil {
		span.RecordError(err)
		return returnErrorOutput(err), nil
	}

	opts := &github.IssueListByRepoOptions{
		State:       input.State,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: n},
	}
	if labels := strings.TrimSpace(input.Labels); labels != "" {
		for _, l := range strings.Split(labels, ",") {
			if l = strings.TrimSpace(l); l != "" {
				opts.Labels = append(opts.Labels, l)
			}
		}
	}

	issues, _, err := g.client.Issues.ListByRepo(ctx, ref.Owner, ref.Name, opts)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	items := make([]issueSummary, 0, len(issues))
	for _, it := range issues {
		isPR := it.IsPullRequest()
		if isPR && !input.IncludePRs {
			continue
		}
		items = append(items, issueSummary{
			Number:    it.GetNumber(),
			Title:     it.GetTitle(),
			Body:      it.GetBody(),
			State:     it.GetState(),
			IsPR:      isPR,
			User:      it.GetUser().GetLogin(),
			Labels:    labelNames(it.Labels),
			Comments:  it.GetComments(),
			CreatedAt: formatTime(it.GetCreatedAt()),
			UpdatedAt: formatTime(it.GetUpdatedAt()),
			HTMLURL:   it.GetHTMLURL(),
		})
	}

	return returnJSONOutput(struct {
		Repo  string         `json:"repo"`
		Count int            `json:"count"`
		Items []issueSummary `json:"items"`
	}{
		Repo:  ref.String(),
		Count: len(items),
		Items: items,
	}), nil
}

// GetIssueTool returns a tool that fetches one issue or pull request with
// its comment thread.
func (g *GitHub) GetIssueTool() mcp.Tool {
	return mcp.Tool{
		Name:        GitHubGetIssueToolName,
		Description: "Gets a single issue or pull request by number, including its comments",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"issue_number": {
					"type": "integer",
					"description": "Issue number"
				},
				"repo": {
					"type": "string",
					"description": "Repository as 'owner/name' or a GitHub URL; optional if root_path points inside a git checkout"
				},
				"root_path": {
					"type": "string",
					"description": "Local path used to infer the repository from its git remote"
				}
			},
			"required": ["issue_number"]
		}`),
		Handler: g.handleGetIssue,
	}
}

type issueComment struct {
	ID        int64  `json:"id"`
	User      string `json:"user"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	HTMLURL   string `json:"html_url"`
}

type issueDetail struct {
	Number        int            `json:"number"`
	Title         string         `json:"title"`
	State         string         `json:"state"`
	IsPR          bool           `json:"is_pr"`
	User          string         `json:"user"`
	Labels        []string       `json:"labels"`
	Assignees     []string       `json:"assignees"`
	CommentsCount int            `json:"comments_count"`
	Comments      []issueComment `json:"comments"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
	HTMLURL       string         `json:"html_url"`
	Body          string         `json:"body"`
}

func (g *GitHub) handleGetIssue(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s.Handler", params.Name))
	defer span.End()

	var input struct {
		IssueNumber int    `json:"issue_number"`
		Repo        string `json:"repo"`
		RootPath    string `json:"root_path"`
	}

	if err := json.Unmarshal(params.Arguments, &input); err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("failed to unmarshal input: %w", err)
	}

	ref, err := g.resolveRef(input.Repo, input.RootPath)
	if err != nil {
		span.RecordError(err)
		return returnErrorOutput(err), nil
	}

	issue, _, err := g.client.Issues.Get(ctx, ref.Owner, ref.Name, input.IssueNumber)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	comments, _, err := g.client.Issues.ListComments(ctx, ref.Owner, ref.Name, input.IssueNumber, &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	commentList := make([]issueComment, 0, len(comments))
	for _, c := range comments {
		commentList = append(commentList, issueComment{
			ID:        c.GetID(),
			User:      c.GetUser().GetLogin(),
			Body:      c.GetBody(),
			CreatedAt: formatTime(c.GetCreatedAt()),
			UpdatedAt: formatTime(c.GetUpdatedAt()),
			HTMLURL:   c.GetHTMLURL(),
		})
	}

	assignees := make([]string, 0, len(issue.Assignees))
	for _, a := range issue.Assignees {
		assignees = append(assignees, a.GetLogin())
	}

	return returnJSONOutput(struct {
		Repo  string      `json:"repo"`
		Issue issueDetail `json:"issue"`
	}{
		Repo: ref.String(),
		Issue: issueDetail{
			Number:        issue.GetNumber(),
			Title:         issue.GetTitle(),
			State:         issue.GetState(),
			IsPR:          issue.IsPullRequest(),
			User:          issue.GetUser().GetLogin(),
			Labels:        labelNames(issue.Labels),
			Assignees:     assignees,
			CommentsCount: issue.GetComments(),
			Comments:      commentList,
			CreatedAt:     formatTime(issue.GetCreatedAt()),
			UpdatedAt:     formatTime(issue.GetUpdatedAt()),
			HTMLURL:       issue.GetHTMLURL(),
			Body:          issue.GetBody(),
		},
	}), nil
}
