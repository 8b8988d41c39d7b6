package services

import (
	"context"
	"time"

	"ciboard/internal/ciboard"
	"ciboard/internal/ciboard/ports"
)

// collectRuns returns up to the configured cap of recent runs for one
// workflow on the target branch, most-recent-first as the provider returns
// them, restricted to the trailing consideration window and excluding
// pull-request-triggered runs. Each retained run is redacted immediately so
// the bulky provider sub-objects never outlive this function.
//
// An error aborts collection for this workflow only; the caller decides what
// that means for the cycle.
func (a *Aggregator) collectRuns(ctx context.Context, workflowID int64) ([]*ciboard.WorkflowRun, error) {
	cutoff := time.Now().Add(-a.opts.Window)
	opts := ports.RunListOptions{
		ListOptions:         ports.ListOptions{PerPage: a.opts.MaxRunsPerWorkflow},
		Branch:              a.opts.Branch,
		CreatedAfter:        cutoff,
		ExcludePullRequests: true,
	}

	var collected []*ciboard.WorkflowRun
	for {
		var (
			runs []*ciboard.Run
			page ports.Page
		)
		err := withRetry(ctx, a.opts.Retry, "list runs", func() error {
			var err error
			runs, page, err = a.api.ListWorkflowRuns(ctx, a.opts.Owner, a.opts.Repo, workflowID, opts)
			a.countRequest()
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, run := range runs {
			// The provider filters server-side; re-check so the retention
			// invariant holds even against a sloppy page.
			if run.HeadBranch != a.opts.Branch || run.CreatedAt.Before(cutoff) {
				continue
			}
			run.Redact()
			collected = append(collected, ciboard.NewWorkflowRun(run))
		}

		if len(collected) >= a.opts.MaxRunsPerWorkflow || !page.HasNext() {
			break
		}
		opts.Page = page.Next
	}

	// A last page can overshoot the cap; trim.
	if len(collected) > a.opts.MaxRunsPerWorkflow {
		collected = collected[:a.opts.MaxRunsPerWorkflow]
	}
	return collected, nil
}
