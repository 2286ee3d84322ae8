package githubmcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shaharia-lab/goai/mcp"
	"github.com/shaharia-lab/goai/observability"
)

// GetRepoInfoTool returns a tool that reports basic repository metadata.
func (g *GitHub) GetRepoInfoTool() mcp.Tool {
	return mcp.Tool{
		Name:        GitHubRepoInfoToolName,
		Description: "Gets basic repository info - description, default branch, language, stars, forks",
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
				}
			},
			"required": []
		}`),
		Handler: g.handleRepoInfo,
	}
}

type repoInfo struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	DefaultBranch string   `json:"default_branch"`
	Language      string   `json:"language"`
	License       string   `json:"license,omitempty"`
	Topics        []string `json:"topics"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	OpenIssues    int      `json:"open_issues"`
	HTMLURL       string   `json:"html_url"`
	CloneURL      string   `json:"clone_url"`
	UpdatedAt     string   `json:"updated_at"`
}

func (g *GitHub) handleRepoInfo(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s.Handler", params.Name))
	defer span.End()

	var input struct {
		Repo     string `json:"repo"`
		RootPath string `json:"root_path"`
	}

	if err := json.Unmarshal(params.Arguments, &input); err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("failed to unmarshal input: %w", err)
	}

	ref, err := g.resolveRef(input.Repo, input.RootPath)
	if err != nil {
		span.RecordError(err)
		return returnErrorOutput(err), nil
	}

	repo, _, err := g.client.Repositories.Get(ctx, ref.Owner, ref.Name)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return returnJSONOutput(repoInfo{
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		DefaultBranch: repo.GetDefaultBranch(),
		Language:      repo.GetLanguage(),
		License:       repo.GetLicense().GetName(),
		Topics:        topics,
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		HTMLURL:       repo.GetHTMLURL(),
		CloneURL:      repo.GetCloneURL(),
		UpdatedAt:     formatTime(repo.GetUpdatedAt()),
	}), nil
}
