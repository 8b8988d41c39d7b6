package ciboard

import "time"

// Run is one execution instance of a Workflow. The aggregator only reads and
// trims it; the provider is the sole writer.
type Run struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	DisplayTitle string        `json:"display_title,omitempty"`
	RunNumber    int           `json:"run_number"`
	Event        string        `json:"event,omitempty"`
	Status       RunStatus     `json:"status"`
	Conclusion   RunConclusion `json:"conclusion,omitempty"`
	HeadBranch   string        `json:"head_branch"`
	HTMLURL      string        `json:"html_url"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	RunStartedAt time.Time     `json:"run_started_at"`

	HeadCommit *HeadCommit `json:"head_commit,omitempty"`

	// Bulky provider sub-objects. Cleared by Redact before a run is held in
	// memory or serialized; present only between fetch and redaction.
	Repository     *Repository `json:"repository,omitempty"`
	HeadRepository *Repository `json:"head_repository,omitempty"`
	Actor          *Actor      `json:"actor,omitempty"`
}

// HeadCommit is the trimmed head-commit summary carried on a run.
type HeadCommit struct {
	SHA       string        `json:"sha,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp,omitempty"`
	Author    *CommitAuthor `json:"author,omitempty"`
}

// CommitAuthor carries a commit author's identity. Never emitted.
type CommitAuthor struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Repository is the provider's repository object attached to a run.
// Never emitted.
type Repository struct {
	ID       int64  `json:"id,omitempty"`
	FullName string `json:"full_name,omitempty"`
	HTMLURL  string `json:"html_url,omitempty"`
}

// Actor is the user that triggered a run. Never emitted.
type Actor struct {
	ID    int64  `json:"id,omitempty"`
	Login string `json:"login,omitempty"`
}

// Redact clears the personally-identifying and over-sized sub-objects from
// the run: the full repository objects, the triggering actor, and the commit
// author identity. Idempotent.
func (r *Run) Redact() {
	r.Repository = nil
	r.HeadRepository = nil
	r.Actor = nil
	if r.HeadCommit != nil {
		r.HeadCommit.Author = nil
	}
}
