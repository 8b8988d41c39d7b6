package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"ciboard/internal/ciboard"
	"ciboard/internal/ciboard/ports"
)

const (
	workflowPageSize = 100
	jobsPageSize     = 100
	jobsFilterLatest = "latest"
)

// AggregatorOptions configures one Aggregator instance.
type AggregatorOptions struct {
	Owner  string
	Repo   string
	Branch string

	MaxRunsPerWorkflow  int           // per-workflow run cap, default 15
	Window              time.Duration // trailing consideration window, default 14 days
	JobConcurrency      int           // process-wide job-fetch bound, default 10
	WorkflowConcurrency int           // workflow fan-out bound, default 4
	Retry               RetryPolicy
}

// Aggregator rebuilds the full run/job snapshot for one repository. All
// shared state (the request tally, the job-fetch semaphore) lives on the
// struct and is injected into every worker; there are no package globals.
type Aggregator struct {
	api  ports.ActionsAPI
	opts AggregatorOptions

	limiter *JobLimiter

	// requests is a diagnostic tally of provider calls, incremented from
	// many goroutines.
	requests atomic.Int64
}

// NewAggregator creates an Aggregator over the given provider capability.
func NewAggregator(api ports.ActionsAPI, opts AggregatorOptions) *Aggregator {
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.MaxRunsPerWorkflow <= 0 {
		opts.MaxRunsPerWorkflow = 15
	}
	if opts.Window <= 0 {
		opts.Window = 14 * 24 * time.Hour
	}
	if opts.WorkflowConcurrency <= 0 {
		opts.WorkflowConcurrency = 4
	}
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}

	return &Aggregator{
		api:     api,
		opts:    opts,
		limiter: NewJobLimiter(opts.JobConcurrency),
	}
}

// Requests returns the total number of provider requests issued so far.
func (a *Aggregator) Requests() int64 { return a.requests.Load() }

// LimiterStats reports current job-fetch semaphore usage.
func (a *Aggregator) LimiterStats() LimiterStats { return a.limiter.Stats() }

func (a *Aggregator) countRequest() { a.requests.Add(1) }

// Collect runs one full aggregation cycle: enumerate workflows, collect the
// recent runs of each, attach jobs, and assemble the snapshot.
//
// Enumeration failure is fatal to the cycle. Run-collection failure for one
// workflow omits that workflow from the snapshot; job-fetch failure for one
// run leaves that run with a partial (usually empty) job map. Neither aborts
// the cycle.
func (a *Aggregator) Collect(ctx context.Context) (ciboard.Snapshot, error) {
	workflows, err := a.listWorkflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating workflows: %w", err)
	}
	slog.Info("aggregator: collecting",
		"owner", a.opts.Owner, "repo", a.opts.Repo, "workflows", len(workflows))

	// Each goroutine writes only its own index; the join below publishes
	// every slot before assembly reads them.
	results := make([]*ciboard.WorkflowRunData, len(workflows))
	g := new(errgroup.Group)
	g.SetLimit(a.opts.WorkflowConcurrency)

	for i, wf := range workflows {
		i, wf := i, wf
		g.Go(func() error {
			runs, err := a.collectRuns(ctx, wf.ID)
			if err != nil {
				slog.Error("aggregator: collecting runs failed",
					"workflow", wf.Name, "workflow_id", wf.ID, "err", err)
				return nil
			}

			a.attachJobs(ctx, wf, runs)

			results[i] = &ciboard.WorkflowRunData{
				WorkflowID:    wf.ID,
				WorkflowName:  wf.Name,
				WorkflowURL:   wf.HTMLURL,
				Runs:          runs,
				LastUpdatedAt: time.Now(),
			}
			return nil
		})
	}
	_ = g.Wait() // per-workflow errors are logged, never returned

	snap := make(ciboard.Snapshot, len(results))
	for _, data := range results {
		if data != nil {
			snap[data.WorkflowID] = data
		}
	}
	return snap, nil
}
