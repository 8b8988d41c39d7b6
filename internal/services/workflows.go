package services

import (
	"context"

	"ciboard/internal/ciboard"
	"ciboard/internal/ciboard/ports"
)

// listWorkflows returns every workflow defined on the repository, accumulated
// across all result pages. It fails closed: without a complete workflow list
// nothing downstream can proceed, so any page error aborts enumeration.
func (a *Aggregator) listWorkflows(ctx context.Context) ([]*ciboard.Workflow, error) {
	opts := ports.ListOptions{PerPage: workflowPageSize}
	var all []*ciboard.Workflow

	for {
		var (
			workflows []*ciboard.Workflow
			page      ports.Page
		)
		err := withRetry(ctx, a.opts.Retry, "list workflows", func() error {
			var err error
			workflows, page, err = a.api.ListWorkflows(ctx, a.opts.Owner, a.opts.Repo, opts)
			a.countRequest()
			return err
		})
		if err != nil {
			return nil, err
		}

		all = append(all, workflows...)
		if !page.HasNext() {
			return all, nil
		}
		opts.Page = page.Next
	}
}
