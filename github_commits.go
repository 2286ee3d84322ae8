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

// GetListCommitsTool returns a tool that lists recent commits.
func (g *GitHub) GetListCommitsTool() mcp.Tool {
	return mcp.Tool{
		Name:        GitHubListCommitsToolName,
		Description: "Lists recent commits, optionally for a specific branch",
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
				"branch": {
					"type": "string",
					"description": "Branch name"
				},
				"limit": {
					"type": "integer",
					"description": "Maximum commits to return (1-100)",
					"default": 10
				}
			},
			"required": []
		}`),
		Handler: g.handleListCommits,
	}
}

type commitSummary struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	HTMLURL string `json:"html_url"`
}

func (g *GitHub) handleListCommits(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s.Handler", params.Name))
	defer span.End()

	var input struct {
		Repo     string `json:"repo"`
		RootPath string `json:"root_path"`
		Branch   string `json:"branch"`
		Limit    int    `json:"limit"`
	}

	if err := json.Unmarshal(params.Arguments, &input); err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("failed to unmarshal input: %w", err)
	}

	if input.Limit == 0 {
		input.Limit = 10
	}
	n := clampLimit(input.Limit, 1, 100)

	ref, err := g.resolveRef(input.Repo, input.RootPath)
	if err != nil {
		span.RecordError(err)
		return returnErrorOutput(err), nil
	}

	opts := &github.CommitsListOptions{
		SHA:         strings.TrimSpace(input.Branch),
		ListOptions: github.ListOptions{PerPage: n},
	}

	commits, _, err := g.client.Repositories.ListCommits(ctx, ref.Owner, ref.Name, opts)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	items := make([]commitSummary, 0, len(commits))
	for _, c := range commits {
		commit := c.GetCommit()
		message, _, _ := strings.Cut(commit.GetMessage(), "\n")
		items = append(items, commitSummary{
			SHA:     c.GetSHA(),
			Message: strings.TrimRight(message, "\r"),
			Author:  commit.GetAuthor().GetName(),
			Date:    formatTime(commit.GetAuthor().GetDate()),
			HTMLURL: c.GetHTMLURL(),
		})
	}

	return returnJSONOutput(struct {
		Repo    string          `json:"repo"`
		Count   int             `json:"count"`
		Commits []commitSummary `json:"commits"`
	}{
		Repo:    ref.String(),
		Count:   len(items),
		Commits: items,
	}), nil
}
