package ciboard

// RunStatus represents the lifecycle state of a workflow run or job as
// reported by the provider.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
)

// RunConclusion is the terminal outcome of a completed run or job.
// It is empty while the run has not completed.
type RunConclusion string

const (
	ConclusionSuccess   RunConclusion = "success"
	ConclusionFailure   RunConclusion = "failure"
	ConclusionCancelled RunConclusion = "cancelled"
	ConclusionSkipped   RunConclusion = "skipped"
	ConclusionTimedOut  RunConclusion = "timed_out"
)

// Workflow identifies a CI pipeline definition on the repository.
// Immutable once listed; sourced fresh every aggregation cycle.
type Workflow struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}
