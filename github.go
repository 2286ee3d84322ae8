package githubmcp

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/go-github/v60/github"
	"github.com/shaharia-lab/goai/mcp"
	"github.com/shaharia-lab/goai/observability"
	"golang.org/x/oauth2"
)

const (
	GitHubRepoInfoToolName         = "github_repo_info"
	GitHubGetFileToolName          = "github_get_file"
	GitHubCompareCommitsToolName   = "github_compare_commits"
	GitHubListWorkflowRunsToolName = "github_list_workflow_runs"
	GitHubGetWorkflowRunToolName   = "github_get_workflow_run"
	GitHubListIssuesToolName       = "github_list_issues"
	GitHubGetIssueToolName         = "github_get_issue"
	GitHubListCommitsToolName      = "github_list_commits"
	GitHubListPullsToolName        = "github_list_pulls"
)

// GitHub represents a wrapper around the GitHub API client. Every tool it
// exposes is read-only.
type GitHub struct {
	client *github.Client
	logger observability.Logger
	config GitHubConfig
}

type GitHubConfig struct {
	// Token is optional. Without it requests run unauthenticated: public
	// repositories still work, at a much lower rate limit.
	Token string
}

func NewGitHub(logger observability.Logger, config GitHubConfig) *GitHub {
	var client *github.Client
	if config.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: config.Token},
		)
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		client = github.NewClient(nil)
	}

	return &GitHub{
		client: client,
		logger: logger,
		config: config,
	}
}

// NewGitHubFromEnv builds the client from the GITHUB_TOKEN environment
// variable, read once at construction.
func NewGitHubFromEnv(logger observability.Logger) *GitHub {
	return NewGitHub(logger, GitHubConfig{Token: os.Getenv("GITHUB_TOKEN")})
}

// Tools returns every tool the wrapper exposes, for registration with an
// MCP host.
func (g *GitHub) Tools() []mcp.Tool {
	return []mcp.Tool{
		g.GetRepoInfoTool(),
		g.GetFileTool(),
		g.GetCompareCommitsTool(),
		g.GetListWorkflowRunsTool(),
		g.GetWorkflowRunTool(),
		g.GetListIssuesTool(),
		g.GetIssueTool(),
		g.GetListCommitsTool(),
		g.GetListPullsTool(),
	}
}

// resolveRef applies the repository-resolution precedence for one tool
// invocation and logs failures with both inputs, so the caller can tell
// which of repo or root_path to fix.
func (g *GitHub) resolveRef(repo, rootPath string) (RepositoryRef, error) {
	ref, err := ResolveRepository(repo, rootPath)
	if err != nil {
		g.logger.WithFields(map[string]interface{}{
			observability.ErrorLogField: err,
			"repo":                      repo,
			"root_path":                 rootPath,
		}).Error("Failed to resolve repository")
		return RepositoryRef{}, err
	}
	return ref, nil
}

// Helper function for JSON marshaling
func mustMarshal(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
