package githubmcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/shaharia-lab/goai/mcp"
	"github.com/shaharia-lab/goai/observability"
	"go.opentelemetry.io/otel/attribute"
)

// GetListWorkflowRunsTool returns a tool that lists GitHub Actions workflow
// runs.
func (g *GitHub) GetListWorkflowRunsTool() mcp.Tool {
	return mcp.Tool{
		Name:        GitHubListWorkflowRunsToolName,
		Description: "Lists GitHub Actions workflow runs with optional workflow, branch, status and event filters",
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
				"workflow_id": {
					"type": "string",
					"description": "Workflow file name or numeric id (e.g. 'ci.yml' or '123456')"
				},
				"branch": {
					"type": "string",
					"description": "Branch filter"
				},
				"status": {
					"type": "string",
					"description": "Status filter (e.g. 'completed', 'in_progress', 'queued')"
				},
				"event": {
					"type": "string",
					"description": "Event filter (e.g. 'push', 'pull_request')"
				},
				"limit": {
					"type": "integer",
					"description": "Maximum runs to return (1-100)",
					"default": 20
				}
			},
			"required": []
		}`),
		Handler: g.handleListWorkflowRuns,
	}
}

type workflowRunSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DisplayTitle string `json:"display_title"`
	Event        string `json:"event"`
	Status       string `json:"status"`
	Conclusion   string `json:"conclusion"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	RunNumber    int    `json:"run_number"`
	HeadBranch   string `json:"head_branch"`
	HeadSHA      string `json:"head_sha"`
	HTMLURL      string `json:"html_url"`
}

func summarizeWorkflowRun(run *github.WorkflowRun) workflowRunSummary {
	return workflowRunSummary{
		ID:           run.GetID(),
		Name:         run.GetName(),
		DisplayTitle: run.GetDisplayTitle(),
		Event:        run.GetEvent(),
		Status:       run.GetStatus(),
		Conclusion:   run.GetConclusion(),
		CreatedAt:    formatTime(run.GetCreatedAt()),
		UpdatedAt:    formatTime(run.GetUpdatedAt()),
		RunNumber:    run.GetRunNumber(),
		HeadBranch:   run.GetHeadBranch(),
		HeadSHA:      run.GetHeadSHA(),
		HTMLURL:      run.GetHTMLURL(),
	}
}

func (g *GitHub) handleListWorkflowRuns(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s.Handler", params.Name))
	span.SetAttributes(
		attribute.String("tool_name", params.Name),
	)
	defer span.End()

	var input struct {
		Repo       string `json:"repo"`
		RootPath   string `json:"root_path"`
		WorkflowID string `json:"workflow_id"`
		Branch     string `json:"branch"`
		Status     string `json:"status"`
		Event      string `json:"event"`
		Limit      int    `json:"limit"`
	}

	if err := json.Unmarshal(params.Arguments, &input); err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("failed to unmarshal input: %w", err)
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

	opts := &github.ListWorkflowRunsOptions{
		Branch:      strings.TrimSpace(input.Branch),
		Status:      strings.TrimSpace(input.Status),
		Event:       strings.TrimSpace(input.Event),
		ListOptions: github.ListOptions{PerPage: n},
	}

	var runs *github.WorkflowRuns
	workflowID := strings.TrimSpace(input.WorkflowID)
	switch {
	case workflowID == "":
		runs, _, err = g.client.Actions.ListRepositoryWorkflowRuns(ctx, ref.Owner, ref.Name, opts)
	default:
		if id, convErr := strconv.ParseInt(workflowID, 10, 64); convErr == nil {
			runs, _, err = g.client.Actions.ListWorkflowRunsByID(ctx, ref.Owner, ref.Name, id, opts)
		} else {
			runs, _, err = g.client.Actions.ListWorkflowRunsByFileName(ctx, ref.Owner, ref.Name, workflowID, opts)
		}
	}
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	out := make([]workflowRunSummary, 0, n)
	for _, run := range runs.WorkflowRuns {
		if len(out) == n {
			break
		}
		out = append(out, summarizeWorkflowRun(run))
	}

	return returnJSONOutput(struct {
		Repo       string               `json:"repo"`
		WorkflowID string               `json:"workflow_id,omitempty"`
		Count      int                  `json:"count"`
		Runs       []workflowRunSummary `json:"runs"`
	}{
		Repo:       ref.String(),
		WorkflowID: workflowID,
		Count:      len(out),
		Runs:       out,
	}), nil
}

// GetWorkflowRunTool returns a tool that fetches a single workflow run,
// optionally with its jobs and steps.
func (g *GitHub) GetWorkflowRunTool() mcp.Tool {
	return mcp.Tool{
		Name:        GitHubGetWorkflowRunToolName,
		Description: "Gets workflow run details, optionally including a jobs and steps summary",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"run_id": {
					"type": "integer",
					"description": "Workflow run id"
				},
				"repo": {
					"type": "string",
					"description": "Repository as 'owner/name' or a GitHub URL; optional if root_path points inside a git checkout"
				},
				"root_path": {
					"type": "string",
					"description": "Local path used to infer the repository from its git remote"
				},
				"include_jobs": {
					"type": "boolean",
					"description": "Include jobs and steps summary",
					"default": true
				},
				"max_jobs": {
					"type": "integer",
					"description": "Maximum jobs to return",
					"default": 50
				},
				"max_steps": {
					"type": "integer",
					"description": "Maximum total steps to return",
					"default": 200
				}
			},
			"required": ["run_id"]
		}`),
		Handler: g.handleGetWorkflowRun,
	}
}

type workflowStepSummary struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Conclusion  string `json:"conclusion"`
	Number      int64  `json:"number"`
	StartedAt   string `json:"started_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

type workflowJobSummary struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	Status      string                `json:"status"`
	Conclusion  string                `json:"conclusion"`
	StartedAt   string                `json:"started_at,omitempty"`
	CompletedAt string                `json:"completed_at,omitempty"`
	RunnerName  string                `json:"runner_name,omitempty"`
	Labels      []string              `json:"labels,omitempty"`
	Steps       []workflowStepSummary `json:"steps"`
}

type workflowRunDetail struct {
	workflowRunSummary
	Attempt int `json:"attempt"`
}

type workflowJobsOut struct {
	JobsCount     int                  `json:"jobs_count"`
	JobsReturned  int                  `json:"jobs_returned"`
	StepsReturned int                  `json:"steps_returned"`
	Truncated     bool                 `json:"truncated"`
	Items         []workflowJobSummary `json:"items"`
}

func (g *GitHub) handleGetWorkflowRun(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("%s.Handler", params.Name))
	defer span.End()

	var input struct {
		RunID       int64  `json:"run_id"`
		Repo        string `json:"repo"`
		RootPath    string `json:"root_path"`
		IncludeJobs *bool  `json:"include_jobs"`
		MaxJobs     int    `json:"max_jobs"`
		MaxSteps    int    `json:"max_steps"`
	}

	if err := json.Unmarshal(params.Arguments, &input); err != nil {
		return mcp.CallToolResult{}, fmt.Errorf("failed to unmarshal input: %w", err)
	}

	includeJobs := input.IncludeJobs == nil || *input.IncludeJobs
	if input.MaxJobs <= 0 {
		input.MaxJobs = 50
	}
	if input.MaxSteps <= 0 {
		input.MaxSteps = 200
	}

	ref, err := g.resolveRef(input.Repo, input.RootPath)
	if err != nil {
		span.RecordError(err)
		return returnErrorOutput(err), nil
	}

	run, _, err := g.client.Actions.GetWorkflowRunByID(ctx, ref.Owner, ref.Name, input.RunID)
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	out := struct {
		Repo string            `json:"repo"`
		Run  workflowRunDetail `json:"run"`
		Jobs *workflowJobsOut  `json:"jobs,omitempty"`
	}{
		Repo: ref.String(),
		Run: workflowRunDetail{
			workflowRunSummary: summarizeWorkflowRun(run),
			Attempt:            run.GetRunAttempt(),
		},
	}

	if !includeJobs {
		return returnJSONOutput(out), nil
	}

	jobs, _, err := g.client.Actions.ListWorkflowJobs(ctx, ref.Owner, ref.Name, input.RunID, &github.ListWorkflowJobsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		return mcp.CallToolResult{}, err
	}

	items := make([]workflowJobSummary, 0, input.MaxJobs)
	stepsReturned := 0
	stepsDropped := false
	for _, j := range jobs.Jobs {
		if len(items) == input.MaxJobs || stepsReturned >= input.MaxSteps {
			break
		}

		steps := make([]workflowStepSummary, 0, len(j.Steps))
		for _, st := range j.Steps {
			if stepsReturned >= input.MaxSteps {
				stepsDropped = true
				break
			}
			steps = append(steps, workflowStepSummary{
				Name:        st.GetName(),
				Status:      st.GetStatus(),
				Conclusion:  st.GetConclusion(),
				Number:      st.GetNumber(),
				StartedAt:   formatTime(st.GetStartedAt()),
				CompletedAt: formatTime(st.GetCompletedAt()),
			})
			stepsReturned++
		}

		items = append(items, workflowJobSummary{
			ID:          j.GetID(),
			Name:        j.GetName(),
			Status:      j.GetStatus(),
			Conclusion:  j.GetConclusion(),
			StartedAt:   formatTime(j.GetStartedAt()),
			CompletedAt: formatTime(j.GetCompletedAt()),
			RunnerName:  j.GetRunnerName(),
			Labels:      j.Labels,
			Steps:       steps,
		})
	}

	out.Jobs = &workflowJobsOut{
		JobsCount:     len(jobs.Jobs),
		JobsReturned:  len(items),
		StepsReturned: stepsReturned,
		Truncated:     len(jobs.Jobs) > len(items) || stepsDropped,
		Items:         items,
	}

	return returnJSONOutput(out), nil
}
