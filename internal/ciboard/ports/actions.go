package ports

import (
	"context"
	"time"

	"ciboard/internal/ciboard"
)

// Page carries the provider's pagination cursor for one result page.
// Next is zero when the provider reports no further pages.
type Page struct {
	Next int
}

// HasNext reports whether the provider advertised another page.
func (p Page) HasNext() bool { return p.Next != 0 }

// ListOptions selects one page of results.
type ListOptions struct {
	Page    int
	PerPage int
}

// RunListOptions selects one page of workflow runs, filtered server-side.
type RunListOptions struct {
	ListOptions
	Branch string
	// CreatedAfter restricts results to runs created after this instant.
	CreatedAfter time.Time
	// ExcludePullRequests drops pull-request-triggered runs.
	ExcludePullRequests bool
}

// JobListOptions selects one page of jobs for a run.
type JobListOptions struct {
	ListOptions
	// Filter is the provider's attempt filter, e.g. "latest".
	Filter string
}

// ActionsAPI is the authenticated, paginated CI provider capability the
// aggregator pulls from. Implementations must tolerate concurrent calls from
// many goroutines. Construction (credentials, transports) happens elsewhere;
// the aggregator only sees this interface.
type ActionsAPI interface {
	ListWorkflows(ctx context.Context, owner, repo string, opts ListOptions) ([]*ciboard.Workflow, Page, error)
	ListWorkflowRuns(ctx context.Context, owner, repo string, workflowID int64, opts RunListOptions) ([]*ciboard.Run, Page, error)
	ListWorkflowJobs(ctx context.Context, owner, repo string, runID int64, opts JobListOptions) ([]*ciboard.Job, Page, error)
}
