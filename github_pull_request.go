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

// GetListPullsTool returns a tool that lists pull requests.
func (g *GitHub) GetListPullsTool() mcp.Tool {
	return mcp.Tool{
		Name:        GitHubListPullsToolName,
		Description: "Lists pull requests, most recently updated first, with optional base branch filter",
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
					"description": "Pull request state filter",
					"default": "open"
				},
				"base": {
					"type": "string",
					"description": "Base branch filter"
				},
				"limit": {
					"type": "integer",
					"description": "Maximum pull requests to return (1-100)",
					"default": 20
				}
			},
			"required": []
		}`),
		Handler: g.handleListPulls,
	}
}

type pullSummary struct {
	Number     int      `json:"number"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	State      string   `json:"state"`
	User       string   `json:"user"`
	Draft      bool     `json:"draft"`
	Labels     []string `json:"labels"`
	Assignees  []string `json:"assignees"`
	HeadBranch string   `json:"head_branch"`
	HeadSHA    string   `json:"head_sha"`
	BaseBranch string   `json:"base_branch"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
	HTMLURL    string   `json:"html_url"`
}

func (g *GitHub) handleListPulls(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s.Handler", params.Name))
	defer span.End()

	var input struct {
		Repo     string `json:"repo"`
		RootPath string `json:"root_path"`
		State    string `json:"state"`
		Base     string `json:"base"`
		Limit    int    `json:"limit"`
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

	opts := &github.PullRequestListOptions{
		State:       input.State,
		Base:        strings.TrimSpace(input.Base),
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: n},
	}

	pulls, _, err := g.client.PullRequests.List(ctx, ref.Owner, ref.Name, opts)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	items := make([]pullSummary, 0, len(pulls))
	for _, pr := range pulls {
		assignees := make([]string, 0, len(pr.Assignees))
		for _, a := range pr.Assignees {
			assignees = append(assignees, a.GetLogin())
		}
		items = append(items, pullSummary{
			Number:     pr.GetNumber(),
			Title:      pr.GetTitle(),
			Body:       pr.GetBody(),
			State:      pr.GetState(),
			User:       pr.GetUser().GetLogin(),
			Draft:      pr.GetDraft(),
			Labels:     labelNames(pr.Labels),
			Assignees:  assignees,
			HeadBranch: pr.GetHead().GetRef(),
			HeadSHA:    pr.GetHead().GetSHA(),
			BaseBranch: pr.GetBase().GetRef(),
			CreatedAt:  formatTime(pr.GetCreatedAt()),
			UpdatedAt:  formatTime(pr.GetUpdatedAt()),
			HTMLURL:    pr.GetHTMLURL(),
		})
	}

	return returnJSONOutput(struct {
		Repo  string        `json:"repo"`
		Count int           `json:"count"`
		Pulls []pullSummary `json:"pulls"`
	}{
		Repo:  ref.String(),
		Count: len(items),
		Pulls: items,
	}), nil
}
