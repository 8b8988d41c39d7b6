package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v68/github"

	"ciboard/internal/ciboard"
	"ciboard/internal/ciboard/ports"
)

var _ ports.ActionsAPI = (*Actions)(nil)

// Actions adapts the go-github Actions service to the provider-neutral
// ActionsAPI port. It converts provider records to domain records and
// surfaces the pagination cursor. Safe for concurrent use.
type Actions struct {
	client *gh.Client
}

// NewActions wraps an authenticated client.
func NewActions(client *gh.Client) *Actions {
	return &Actions{client: client}
}

func (a *Actions) ListWorkflows(ctx context.Context, owner, repo string, opts ports.ListOptions) ([]*ciboard.Workflow, ports.Page, error) {
	ghOpts := &gh.ListOptions{Page: opts.Page, PerPage: opts.PerPage}
	result, resp, err := a.client.Actions.ListWorkflows(ctx, owner, repo, ghOpts)
	if err != nil {
		return nil, ports.Page{}, fmt.Errorf("listing workflows: %w", err)
	}

	workflows := make([]*ciboard.Workflow, 0, len(result.Workflows))
	for _, wf := range result.Workflows {
		workflows = append(workflows, &ciboard.Workflow{
			ID:      wf.GetID(),
			Name:    wf.GetName(),
			HTMLURL: wf.GetHTMLURL(),
		})
	}
	return workflows, ports.Page{Next: resp.NextPage}, nil
}

func (a *Actions) ListWorkflowRuns(ctx context.Context, owner, repo string, workflowID int64, opts ports.RunListOptions) ([]*ciboard.Run, ports.Page, error) {
	ghOpts := &gh.ListWorkflowRunsOptions{
		Branch:              opts.Branch,
		ExcludePullRequests: opts.ExcludePullRequests,
		ListOptions:         gh.ListOptions{Page: opts.Page, PerPage: opts.PerPage},
	}
	if !opts.CreatedAfter.IsZero() {
		ghOpts.Created = opts.CreatedAfter.Format(">2006-01-02")
	}

	result, resp, err := a.client.Actions.ListWorkflowRunsByID(ctx, owner, repo, workflowID, ghOpts)
	if err != nil {
		return nil, ports.Page{}, fmt.Errorf("listing runs for workflow %d: %w", workflowID, err)
	}

	runs := make([]*ciboard.Run, 0, len(result.WorkflowRuns))
	for _, run := range result.WorkflowRuns {
		runs = append(runs, convertRun(run))
	}
	return runs, ports.Page{Next: resp.NextPage}, nil
}

func (a *Actions) ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64, opts ports.JobListOptions) ([]*ciboard.Job, ports.Page, error) {
	ghOpts := &gh.ListWorkflowJobsOptions{
		Filter:      opts.Filter,
		ListOptions: gh.ListOptions{Page: opts.Page, PerPage: opts.PerPage},
	}
	result, resp, err := a.client.Actions.ListWorkflowJobs(ctx, owner, repo, runID, ghOpts)
	if err != nil {
		return nil, ports.Page{}, fmt.Errorf("listing jobs for run %d: %w", runID, err)
	}

	jobs := make([]*ciboard.Job, 0, len(result.Jobs))
	for _, job := range result.Jobs {
		jobs = append(jobs, convertJob(job))
	}
	return jobs, ports.Page{Next: resp.NextPage}, nil
}

func convertRun(run *gh.WorkflowRun) *ciboard.Run {
	r := &ciboard.Run{
		ID:             run.GetID(),
		Name:           run.GetName(),
		DisplayTitle:   run.GetDisplayTitle(),
		RunNumber:      run.GetRunNumber(),
		Event:          run.GetEvent(),
		Status:         ciboard.RunStatus(run.GetStatus()),
		Conclusion:     ciboard.RunConclusion(run.GetConclusion()),
		HeadBranch:     run.GetHeadBranch(),
		HTMLURL:        run.GetHTMLURL(),
		CreatedAt:      run.GetCreatedAt().Time,
		UpdatedAt:      run.GetUpdatedAt().Time,
		RunStartedAt:   run.GetRunStartedAt().Time,
		Repository:     convertRepository(run.GetRepository()),
		HeadRepository: convertRepository(run.GetHeadRepository()),
	}

	if actor := run.GetActor(); actor != nil {
		r.Actor = &ciboard.Actor{ID: actor.GetID(), Login: actor.GetLogin()}
	}
	if hc := run.GetHeadCommit(); hc != nil {
		commit := &ciboard.HeadCommit{
			SHA:       hc.GetID(),
			Message:   hc.GetMessage(),
			Timestamp: hc.GetTimestamp().Time,
		}
		if author := hc.GetAuthor(); author != nil {
			commit.Author = &ciboard.CommitAuthor{
				Name:  author.GetName(),
				Email: author.GetEmail(),
			}
		}
		r.HeadCommit = commit
	}
	return r
}

func convertRepository(repo *gh.Repository) *ciboard.Repository {
	if repo == nil {
		return nil
	}
	return &ciboard.Repository{
		ID:       repo.GetID(),
		FullName: repo.GetFullName(),
		HTMLURL:  repo.GetHTMLURL(),
	}
}

func convertJob(job *gh.WorkflowJob) *ciboard.Job {
	j := &ciboard.Job{
		ID:          job.GetID(),
		RunID:       job.GetRunID(),
		Name:        job.GetName(),
		Status:      ciboard.RunStatus(job.GetStatus()),
		Conclusion:  ciboard.RunConclusion(job.GetConclusion()),
		RunAttempt:  job.GetRunAttempt(),
		HTMLURL:     job.GetHTMLURL(),
		StartedAt:   job.GetStartedAt().Time,
		CompletedAt: job.GetCompletedAt().Time,
	}
	for _, step := range job.Steps {
		j.Steps = append(j.Steps, &ciboard.Step{
			Name:       step.GetName(),
			Number:     step.GetNumber(),
			Status:     ciboard.RunStatus(step.GetStatus()),
			Conclusion: ciboard.RunConclusion(step.GetConclusion()),
		})
	}
	return j
}
