package ciboard

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestMergeJob_LastAttemptWins(t *testing.T) {
	wr := NewWorkflowRun(&Run{ID: 1})

	wr.MergeJob(&Job{Name: "build", RunAttempt: 1, ID: 10})
	wr.MergeJob(&Job{Name: "build", RunAttempt: 2, ID: 11})

	if got := wr.Jobs["build"].ID; got != 11 {
		t.Fatalf("expected attempt-2 job (id 11), got id %d", got)
	}

	// Lower or equal attempt must be discarded.
	wr.MergeJob(&Job{Name: "build", RunAttempt: 2, ID: 12})
	wr.MergeJob(&Job{Name: "build", RunAttempt: 1, ID: 13})
	if got := wr.Jobs["build"].ID; got != 11 {
		t.Fatalf("lower/equal attempt replaced stored job: got id %d", got)
	}
}

func TestMergeJob_OrderIndependent(t *testing.T) {
	jobs := []*Job{
		{Name: "build", RunAttempt: 1, ID: 1},
		{Name: "build", RunAttempt: 3, ID: 2},
		{Name: "build", RunAttempt: 2, ID: 3},
		{Name: "test", RunAttempt: 1, ID: 4},
		{Name: "test", RunAttempt: 2, ID: 5},
		{Name: "lint", RunAttempt: 1, ID: 6},
	}

	for trial := 0; trial < 20; trial++ {
		shuffled := make([]*Job, len(jobs))
		copy(shuffled, jobs)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		wr := NewWorkflowRun(&Run{ID: 1})
		for _, j := range shuffled {
			wr.MergeJob(j)
		}

		if len(wr.Jobs) != 3 {
			t.Fatalf("expected 3 distinct job names, got %d", len(wr.Jobs))
		}
		if wr.Jobs["build"].ID != 2 {
			t.Fatalf("build: expected id 2 (attempt 3), got %d", wr.Jobs["build"].ID)
		}
		if wr.Jobs["test"].ID != 5 {
			t.Fatalf("test: expected id 5 (attempt 2), got %d", wr.Jobs["test"].ID)
		}
		if wr.Jobs["lint"].ID != 6 {
			t.Fatalf("lint: expected id 6, got %d", wr.Jobs["lint"].ID)
		}
	}
}

func TestRunRedact(t *testing.T) {
	run := &Run{
		ID:             1,
		Repository:     &Repository{FullName: "acme/widgets"},
		HeadRepository: &Repository{FullName: "acme/widgets"},
		Actor:          &Actor{Login: "someone"},
		HeadCommit: &HeadCommit{
			SHA:     "abc123",
			Message: "fix build",
			Author:  &CommitAuthor{Name: "Some One", Email: "someone@example.com"},
		},
	}

	run.Redact()

	if run.Repository != nil || run.HeadRepository != nil || run.Actor != nil {
		t.Fatal("repository/actor sub-objects survived redaction")
	}
	if run.HeadCommit == nil {
		t.Fatal("head commit summary should survive redaction")
	}
	if run.HeadCommit.Author != nil {
		t.Fatal("commit author survived redaction")
	}

	// Idempotence: a second pass changes nothing.
	run.Redact()
	if run.HeadCommit == nil || run.HeadCommit.SHA != "abc123" {
		t.Fatal("second redaction pass altered the record")
	}
}

func TestJobRedact(t *testing.T) {
	job := &Job{
		Name:  "build",
		Steps: []*Step{{Name: "checkout", Number: 1}},
	}
	job.Redact()
	if job.Steps != nil {
		t.Fatal("steps survived redaction")
	}
	job.Redact()
	if job.Steps != nil {
		t.Fatal("redaction not idempotent")
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	run := &Run{ID: 42, Name: "ci", HeadBranch: "main", CreatedAt: time.Now()}
	wr := NewWorkflowRun(run)
	wr.MergeJob(&Job{Name: "build", RunAttempt: 1})

	snap := Snapshot{
		7: {
			WorkflowID:   7,
			WorkflowName: "ci",
			Runs:         []*WorkflowRun{wr},
		},
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)

	// Workflow ids render as string keys; each run entry nests "run" and
	// a name-keyed "jobs" object.
	if !strings.Contains(out, `"7":`) {
		t.Errorf("workflow id not rendered as string key: %s", out)
	}
	if !strings.Contains(out, `"run":`) || !strings.Contains(out, `"jobs":`) {
		t.Errorf("run entry missing run/jobs keys: %s", out)
	}
	if !strings.Contains(out, `"build":`) {
		t.Errorf("jobs object not keyed by job name: %s", out)
	}

	var back Snapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back[7].Runs[0].Run.ID != 42 {
		t.Fatalf("roundtrip lost run id: %+v", back[7])
	}
}
