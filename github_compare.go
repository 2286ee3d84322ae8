package githubmcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/shaharia-lab/goai/mcp"
	"github.com/shaharia-lab/goai/observability"
)

// GetCompareCommitsTool returns a tool that compares two commits, branches
// or tags.
func (g *GitHub) GetCompareCommitsTool() mcp.Tool {
	return mcp.Tool{
		Name:        GitHubCompareCommitsToolName,
		Description: "Compares commits, branches or tags and returns per-file diffs",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"base": {
					"type": "string",
					"description": "Base ref (e.g. 'main')"
				},
				"head": {
					"type": "string",
					"description": "Head ref (e.g. 'feature-branch')"
				},
				"repo": {
					"type": "string",
					"description": "Repository as 'owner/name' or a GitHub URL; optional if root_path points inside a git checkout"
				},
				"root_path": {
					"type": "string",
					"description": "Local path used to infer the repository from its git remote"
				},
				"max_files": {
					"type": "integer",
					"description": "Maximum number of files to include (1-300)",
					"default": 50
				},
				"max_patch_chars": {
					"type": "integer",
					"description": "Maximum patch characters per file (200-10000)",
					"default": 2000
				}
			},
			"required": ["base", "head"]
		}`),
		Handler: g.handleCompareCommits,
	}
}

type compareFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch,omitempty"`
}

type compareResult struct {
	Repo          string        `json:"repo"`
	Base          string        `json:"base"`
	Head          string        `json:"head"`
	Status        string        `json:"status"`
	AheadBy       int           `json:"ahead_by"`
	BehindBy      int           `json:"behind_by"`
	TotalCommits  int           `json:"total_commits"`
	FilesCount    int           `json:"files_count"`
	FilesReturned int           `json:"files_returned"`
	Files         []compareFile `json:"files"`
	HTMLURL       string        `json:"html_url,omitempty"`
	PermalinkURL  string        `json:"permalink_url,omitempty"`
}

func (g *GitHub) handleCompareCommits(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s.Handler", params.Name))
	defer span.End()

	var input struct {
		Base          string `json:"base"`
		Head          string `json:"head"`
		Repo          string `json:"repo"`
		RootPath      string `json:"root_path"`
		MaxFiles      int    `json:"max_files"`
		MaxPatchChars int    `json:"max_patch_chars"`
	}

	if err := json.Unmarshal(params.Arguments, &input); err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("failed to unmarshal input: %w", err)
	}

	base := strings.TrimSpace(input.Base)
	head := strings.TrimSpace(input.Head)
	if base == "" || head == "" {
		return returnErrorOutput(errors.New("base and head are required")), nil
	}
	if input.MaxFiles == 0 {
		input.MaxFiles = 50
	}
	if input.MaxPatchChars == 0 {
		input.MaxPatchChars = 2000
	}
	maxFiles := clampLimit(input.MaxFiles, 1, 300)
	maxPatchChars := clampLimit(input.MaxPatchChars, 200, 10000)

	ref, err := g.resolveRef(input.Repo, input.RootPath)
	if err != nil {
		span.RecordError(err)
		return returnErrorOutput(err), nil
	}

	cmp, _, err := g.client.Repositories.CompareCommits(ctx, ref.Owner, ref.Name, base, head, &github.ListOptions{})
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	files := make([]compareFile, 0, maxFiles)
	for _, f := range cmp.Files {
		if len(files) == maxFiles {
			break
		}
		patch, cut := truncateText(f.GetPatch(), maxPatchChars)
		if cut {
			patch += "\n...TRUNCATED..."
		}
		files = append(files, compareFile{
			Filename:  f.GetFilename(),
			Status:    f.GetStatus(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Changes:   f.GetChanges(),
			Patch:     patch,
		})
	}

	return returnJSONOutput(compareResult{
		Repo:          ref.String(),
		Base:          base,
		Head:          head,
		Status:        cmp.GetStatus(),
		AheadBy:       cmp.GetAheadBy(),
		BehindBy:      cmp.GetBehindBy(),
		TotalCommits:  cmp.GetTotalCommits(),
		FilesCount:    len(cmp.Files),
		FilesReturned: len(files),
		Files:         files,
		HTMLURL:       cmp.GetHTMLURL(),
		PermalinkURL:  cmp.GetPermalinkURL(),
	}), nil
}
