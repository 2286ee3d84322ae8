package githubmcp

import (
	"time"
	"unicode/utf8"

	"github.com/google/go-github/v60/github"
	"github.com/shaharia-lab/goai/mcp"
)

func returnErrorOutput(err error) mcp.CallToolResult {
	return mcp.CallToolResult{
		Content: []mcp.ToolResultContent{
			{
				Type: "text",
				Text: err.Error(),
			},
		},
		IsError: true,
	}
}

func returnJSONOutput(v interface{}) mcp.CallToolResult {
	return mcp.CallToolResult{
		Content: []mcp.ToolResultContent{{
			Type: "json",
			Text: mustMarshal(v),
		}},
	}
}

// clampLimit keeps a caller-supplied page size inside API bounds.
func clampLimit(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// truncateText cuts s to at most max bytes, backing off so a multi-byte
// rune is never split. Returns the (possibly shortened) string and whether
// anything was cut.
func truncateText(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max], true
}

func formatTime(ts github.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}
