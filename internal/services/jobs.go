package services

import (
	"context"
	"log/slog"
	"sync"

	"ciboard/internal/ciboard"
	"ciboard/internal/ciboard/ports"
)

// attachJobs concurrently fetches the job list for every retained run of one
// workflow and merges the results into each run's job-by-name map. One
// wait-group joins the workflow's full run set; the shared process-wide
// limiter, not the wait-group, is what bounds parallel job fetches across
// all workflows at once.
//
// A fetch failure for one run is logged and leaves that run with whatever
// jobs had already been merged; it never affects another run.
func (a *Aggregator) attachJobs(ctx context.Context, wf *ciboard.Workflow, runs []*ciboard.WorkflowRun) {
	var wg sync.WaitGroup
	for _, wr := range runs {
		wr := wr
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := a.limiter.Acquire(ctx); err != nil {
				slog.Error("aggregator: job fetch cancelled while waiting for slot",
					"workflow", wf.Name, "run_id", wr.Run.ID, "err", err)
				return
			}
			defer a.limiter.Release()

			if err := a.fetchJobs(ctx, wr); err != nil {
				slog.Error("aggregator: fetching jobs failed",
					"workflow", wf.Name, "run_id", wr.Run.ID, "err", err)
			}
		}()
	}
	wg.Wait()
}

// fetchJobs pulls every job page for one run and merges each job under the
// last-attempt-wins rule. Jobs already merged stay in place if a later page
// fails.
func (a *Aggregator) fetchJobs(ctx context.Context, wr *ciboard.WorkflowRun) error {
	opts := ports.JobListOptions{
		ListOptions: ports.ListOptions{PerPage: jobsPageSize},
		Filter:      jobsFilterLatest,
	}

	for {
		var (
			jobs []*ciboard.Job
			page ports.Page
		)
		err := withRetry(ctx, a.opts.Retry, "list jobs", func() error {
			var err error
			jobs, page, err = a.api.ListWorkflowJobs(ctx, a.opts.Owner, a.opts.Repo, wr.Run.ID, opts)
			a.countRequest()
			return err
		})
		if err != nil {
			return err
		}

		for _, job := range jobs {
			job.Redact()
			wr.MergeJob(job)
		}

		if !page.HasNext() {
			return nil
		}
		opts.Page = page.Next
	}
}
