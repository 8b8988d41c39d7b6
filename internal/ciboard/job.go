package ciboard

import "time"

// Job is one named unit of work within a Run. Reruns produce multiple records
// sharing a name; RunAttempt identifies the rerun generation.
type Job struct {
	ID          int64         `json:"id"`
	RunID       int64         `json:"run_id"`
	Name        string        `json:"name"`
	Status      RunStatus     `json:"status"`
	Conclusion  RunConclusion `json:"conclusion,omitempty"`
	RunAttempt  int64         `json:"run_attempt"`
	HTMLURL     string        `json:"html_url"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`

	// Steps are dropped before storage; step-level detail stays reachable
	// through HTMLURL. Present only between fetch and redaction.
	Steps []*Step `json:"steps,omitempty"`
}

// Step is a single step within a job, as reported by the provider.
type Step struct {
	Name       string        `json:"name"`
	Number     int64         `json:"number"`
	Status     RunStatus     `json:"status"`
	Conclusion RunConclusion `json:"conclusion,omitempty"`
}

// Redact drops the per-step sub-records. Idempotent.
func (j *Job) Redact() {
	j.Steps = nil
}
