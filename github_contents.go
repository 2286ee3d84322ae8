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
	"go.opentelemetry.io/otel/attribute"
)

const defaultFileMaxChars = 20000

// GetFileTool returns a tool that reads a file (or lists a directory)
// through the Contents API.
func (g *GitHub) GetFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        GitHubGetFileToolName,
		Description: "Gets a text file from a GitHub repository via the Contents API; directories return a listing",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {
					"type": "string",
					"description": "File path in the repository (e.g. 'README.md', '.github/workflows/ci.yml')"
				},
				"repo": {
					"type": "string",
					"description": "Repository as 'owner/name' or a GitHub URL; optional if root_path points inside a git checkout"
				},
				"root_path": {
					"type": "string",
					"description": "Local path used to infer the repository from its git remote"
				},
				"ref": {
					"type": "string",
					"description": "Branch, tag or commit SHA"
				},
				"max_chars": {
					"type": "integer",
					"description": "Maximum characters of decoded content to return",
					"default": 20000
				}
			},
			"required": ["path"]
		}`),
		Handler: g.handleGetFile,
	}
}

type dirEntry struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Size int    `json:"size"`
}

type dirListing struct {
	Repo  string     `json:"repo"`
	Path  string     `json:"path"`
	Type  string     `json:"type"`
	Items []dirEntry `json:"items"`
}

type fileContent struct {
	Repo        string `json:"repo"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int    `json:"size"`
	Ref         string `json:"ref,omitempty"`
	Truncated   bool   `json:"truncated"`
	Text        string `json:"text"`
	DownloadURL string `json:"download_url,omitempty"`
	HTMLURL     string `json:"html_url,omitempty"`
}

// fileStub is returned when GitHub sends no inline content, typically for
// files over 1 MB.
type fileStub struct {
	Repo        string `json:"repo"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int    `json:"size"`
	Note        string `json:"note"`
	DownloadURL string `json:"download_url,omitempty"`
	HTMLURL     string `json:"html_url,omitempty"`
}

func (g *GitHub) handleGetFile(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s.Handler", params.Name))
	span.SetAttributes(
		attribute.String("tool_name", params.Name),
	)
	defer span.End()

	var input struct {
		Path     string `json:"path"`
		Repo     string `json:"repo"`
		RootPath string `json:"root_path"`
		Ref      string `json:"ref"`
		MaxChars int    `json:"max_chars"`
	}

	if err := json.Unmarshal(params.Arguments, &input); err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("failed to unmarshal input: %w", err)
	}

	cleanPath := strings.TrimLeft(strings.TrimSpace(input.Path), "/")
	if cleanPath == "" {
		return returnErrorOutput(errors.New("path is required")), nil
	}
	if input.MaxChars <= 0 {
		input.MaxChars = defaultFileMaxChars
	}

	ref, err := g.resolveRef(input.Repo, input.RootPath)
	if err != nil {
		span.RecordError(err)
		return returnErrorOutput(err), nil
	}

	opts := &github.RepositoryContentGetOptions{Ref: strings.TrimSpace(input.Ref)}
	file, dir, _, err := g.client.Repositories.GetContents(ctx, ref.Owner, ref.Name, cleanPath, opts)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	if dir != nil {
		items := make([]dirEntry, 0, len(dir))
		for _, it := range dir {
			items = append(items, dirEntry{
				Type: it.GetType(),
				Name: it.GetName(),
				Path: it.GetPath(),
				SHA:  it.GetSHA(),
				Size: it.GetSize(),
			})
		}
		return returnJSONOutput(dirListing{
			Repo:  ref.String(),
			Path:  cleanPath,
			Type:  "dir",
			Items: items,
		}), nil
	}

	text, err := file.GetContent()
	if err != nil {
		// No inline content; point the caller at the download URL instead.
		return returnJSONOutput(fileStub{
			Repo:        ref.String(),
			Path:        cleanPath,
			SHA:         file.GetSHA(),
			Size:        file.GetSize(),
			Note:        "No inline content returned (file may be too large). Use download_url.",
			DownloadURL: file.GetDownloadURL(),
			HTMLURL:     file.GetHTMLURL(),
		}), nil
	}

	text, truncated := truncateText(text, input.MaxChars)

	return returnJSONOutput(fileContent{
		Repo:        ref.String(),
		Path:        cleanPath,
		SHA:         file.GetSHA(),
		Size:        file.GetSize(),
		Ref:         strings.TrimSpace(input.Ref),
		Truncated:   truncated,
		Text:        text,
		DownloadURL: file.GetDownloadURL(),
		HTMLURL:     file.GetHTMLURL(),
	}), nil
}
