package githubmcp

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"
	"unicode/utf8"

	"github.com/google/go-github/v60/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileTool_Schema(t *testing.T) {
	gh := NewGitHub(NewMockLogger(), GitHubConfig{})

	tool := gh.GetFileTool()
	assert.Equal(t, GitHubGetFileToolName, tool.Name)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(tool.InputSchema, &schema))

	required, ok := schema["required"].([]interface{})
	require.True(t, ok)
	assert.Contains(t, required, "path")
}

func TestHandleGetFile_TextFile(t *testing.T) {
	gh, mux := setupGitHubTest(t)

	content := "# Widgets\n\nA widget factory.\n"
	mux.HandleFunc("/repos/acme/widgets/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "v1.2.3", r.URL.Query().Get("ref"))

		file := &github.RepositoryContent{
			Type:        github.String("file"),
			Name:        github.String("README.md"),
			Path:        github.String("README.md"),
			SHA:         github.String("abc123"),
			Size:        github.Int(len(content)),
			Encoding:    github.String("base64"),
			Content:     github.String(base64.StdEncoding.EncodeToString([]byte(content))),
			DownloadURL: github.String("https://raw.githubusercontent.com/acme/widgets/main/README.md"),
		}
		require.NoError(t, json.NewEncoder(w).Encode(file))
	})

	result := callTool(t, gh.handleGetFile, GitHubGetFileToolName, map[string]interface{}{
		"repo": "acme/widgets",
		"path": "README.md",
		"ref":  "v1.2.3",
	})

	var out fileContent
	decodeResult(t, result, &out)

	assert.Equal(t, "acme/widgets", out.Repo)
	assert.Equal(t, "README.md", out.Path)
	assert.Equal(t, "abc123", out.SHA)
	assert.Equal(t, content, out.Text)
	assert.False(t, out.Truncated)
	assert.Equal(t, "v1.2.3", out.Ref)
}

func TestHandleGetFile_Truncation(t *testing.T) {
	gh, mux := setupGitHubTest(t)

	content := "0123456789abcdefghij"
	mux.HandleFunc("/repos/acme/widgets/contents/big.txt", func(w http.ResponseWriter, r *http.Request) {
		file := &github.RepositoryContent{
			Type:     github.String("file"),
			Path:     github.String("big.txt"),
			Encoding: github.String("base64"),
			Content:  github.String(base64.StdEncoding.EncodeToString([]byte(content))),
		}
		require.NoError(t, json.NewEncoder(w).Encode(file))
	})

	result := callTool(t, gh.handleGetFile, GitHubGetFileToolName, map[string]interface{}{
		"repo":      "acme/widgets",
		"path":      "big.txt",
		"max_chars": 10,
	})

	var out fileContent
	decodeResult(t, result, &out)

	assert.True(t, out.Truncated)
	assert.Equal(t, "0123456789", out.Text)
}

func TestHandleGetFile_TruncationKeepsRunesWhole(t *testing.T) {
	gh, mux := setupGitHubTest(t)

	// 6 runes, 3 bytes each. A 10-byte cut lands mid-rune and must back off.
	content := "日本語テキスト"
	mux.HandleFunc("/repos/acme/widgets/contents/notes.md", func(w http.ResponseWriter, r *http.Request) {
		file := &github.RepositoryContent{
			Type:     github.String("file"),
			Path:     github.String("notes.md"),
			Encoding: github.String("base64"),
			Content:  github.String(base64.StdEncoding.EncodeToString([]byte(content))),
		}
		require.NoError(t, json.NewEncoder(w).Encode(file))
	})

	result := callTool(t, gh.handleGetFile, GitHubGetFileToolName, map[string]interface{}{
		"repo":      "acme/widgets",
		"path":      "notes.md",
		"max_chars": 10,
	})

	var out fileContent
	decodeResult(t, result, &out)

	assert.True(t, out.Truncated)
	assert.Equal(t, "日本語", out.Text)
	assert.True(t, utf8.ValidString(out.Text))
}

func TestHandleGetFile_Directory(t *testing.T) {
	gh, mux := setupGitHubTest(t)

	mux.HandleFunc("/repos/acme/widgets/contents/docs", func(w http.ResponseWriter, r *http.Request) {
		entries := []*github.RepositoryContent{
			{
				Type: github.String("file"),
				Name: github.String("guide.md"),
				Path: github.String("docs/guide.md"),
				SHA:  github.String("s1"),
				Size: github.Int(120),
			},
			{
				Type: github.String("dir"),
				Name: github.String("img"),
				Path: github.String("docs/img"),
				SHA:  github.String("s2"),
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(entries))
	})

	result := callTool(t, gh.handleGetFile, GitHubGetFileToolName, map[string]interface{}{
		"repo": "acme/widgets",
		"path": "/docs",
	})

	var out dirListing
	decodeResult(t, result, &out)

	assert.Equal(t, "dir", out.Type)
	assert.Equal(t, "docs", out.Path)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "guide.md", out.Items[0].Name)
	assert.Equal(t, "dir", out.Items[1].Type)
}

func TestHandleGetFile_NoInlineContent(t *testing.T) {
	gh, mux := setupGitHubTest(t)

	mux.HandleFunc("/repos/acme/widgets/contents/huge.bin", func(w http.ResponseWriter, r *http.Request) {
		file := &github.RepositoryContent{
			Type:        github.String("file"),
			Path:        github.String("huge.bin"),
			SHA:         github.String("bigsha"),
			Size:        github.Int(5 << 20),
			Encoding:    github.String("none"),
			Content:     github.String(""),
			DownloadURL: github.String("https://example.com/huge.bin"),
		}
		require.NoError(t, json.NewEncoder(w).Encode(file))
	})

	result := callTool(t, gh.handleGetFile, GitHubGetFileToolName, map[string]interface{}{
		"repo": "acme/widgets",
		"path": "huge.bin",
	})

	var out fileStub
	decodeResult(t, result, &out)

	assert.Equal(t, "bigsha", out.SHA)
	assert.Contains(t, out.Note, "download_url")
	assert.Equal(t, "https://example.com/huge.bin", out.DownloadURL)
}

func TestHandleGetFile_MissingPath(t *testing.T) {
	gh, _ := setupGitHubTest(t)

	result := callTool(t, gh.handleGetFile, GitHubGetFileToolName, map[string]interface{}{
		"repo": "acme/widgets",
		"path": "  ",
	})

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "path is required")
}
