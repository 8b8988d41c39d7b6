package ciboard

import "time"

// WorkflowRun pairs a run with its job map keyed by job name. The map holds
// at most one job per distinct name; on a name collision the job with the
// strictly greater run attempt wins.
type WorkflowRun struct {
	Run  *Run            `json:"run"`
	Jobs map[string]*Job `json:"jobs"`
}

// NewWorkflowRun wraps a run with an empty job map.
func NewWorkflowRun(run *Run) *WorkflowRun {
	return &WorkflowRun{Run: run, Jobs: map[string]*Job{}}
}

// MergeJob applies the last-attempt-wins rule: the incoming job is kept only
// if no job with the same name is present, or if its run attempt is strictly
// greater than the stored one. Otherwise it is discarded. The rule is
// commutative and idempotent, so the final map does not depend on the order
// jobs arrive in.
func (wr *WorkflowRun) MergeJob(job *Job) {
	existing, ok := wr.Jobs[job.Name]
	if ok && existing.RunAttempt >= job.RunAttempt {
		return
	}
	wr.Jobs[job.Name] = job
}

// WorkflowRunData is the per-workflow aggregate: the unit of snapshot output.
// Runs keeps provider order, capped at the configured per-workflow maximum.
type WorkflowRunData struct {
	WorkflowID    int64          `json:"workflow_id"`
	WorkflowName  string         `json:"workflow_name"`
	WorkflowURL   string         `json:"workflow_url"`
	Runs          []*WorkflowRun `json:"runs"`
	LastUpdatedAt time.Time      `json:"last_updated_at"`
}

// Snapshot maps workflow id to its aggregate. It is the complete externally
// observable output of one aggregation cycle and is rebuilt from scratch each
// cycle. encoding/json renders the int64 keys as strings.
type Snapshot map[int64]*WorkflowRunData
