package githubmcp

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-github/v60/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleListPulls(t *testing.T) {
	gh, mux := setupGitHubTest(t)

	mux.HandleFunc("/repos/acme/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "main", r.URL.Query().Get("base"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("direction"))

		pulls := []*github.PullRequest{
			{
				Number: github.Int(21),
				Title:  github.String("Add widget telemetry"),
				State:  github.String("open"),
				User:   &github.User{Login: github.String("contributor")},
				Draft:  github.Bool(true),
				Labels: []*github.Label{{Name: github.String("enhancement")}},
				Assignees: []*github.User{
					{Login: github.String("reviewer")},
				},
				Head: &github.PullRequestBranch{
					Ref: github.String("telemetry"),
					SHA: github.String("feedface"),
				},
				Base: &github.PullRequestBranch{Ref: github.String("main")},
				HTMLURL: github.String("https://github.com/acme/widgets/pull/21"),
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(pulls))
	})

	result := callTool(t, gh.handleListPulls, GitHubListPullsToolName, map[string]interface{}{
		"repo": "acme/widgets",
		"base": "main",
	})

	var out struct {
		Repo  string        `json:"repo"`
		Count int           `json:"count"`
		Pulls []pullSummary `json:"pulls"`
	}
	decodeResult(t, result, &out)

	assert.Equal(t, "acme/widgets", out.Repo)
	assert.Equal(t, 1, out.Count)
	require.Len(t, out.Pulls, 1)

	pr := out.Pulls[0]
	assert.Equal(t, 21, pr.Number)
	assert.Equal(t, "Add widget telemetry", pr.Title)
	assert.True(t, pr.Draft)
	assert.Equal(t, []string{"enhancement"}, pr.Labels)
	assert.Equal(t, []string{"reviewer"}, pr.Assignees)
	assert.Equal(t, "telemetry", pr.HeadBranch)
	assert.Equal(t, "feedface", pr.HeadSHA)
	assert.Equal(t, "main", pr.BaseBranch)
}

func TestHandleListPulls_DefaultState(t *testing.T) {
	gh, mux := setupGitHubTest(t)

	mux.HandleFunc("/repos/acme/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		require.NoError(t, json.NewEncoder(w).Encode([]*github.PullRequest{}))
	})

	result := callTool(t, gh.handleListPulls, GitHubListPullsToolName, map[string]interface{}{
		"repo": "acme/widgets",
	})

	var out struct {
		Count int `json:"count"`
	}
	decodeResult(t, result, &out)
	assert.Equal(t, 0, out.Count)
}
