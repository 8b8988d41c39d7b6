package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciboard/internal/ciboard"
	"ciboard/internal/ciboard/ports"
	"ciboard/internal/repository"
	"ciboard/internal/services"
)

type stubActions struct {
	workflows []*ciboard.Workflow
	runs      map[int64][]*ciboard.Run
	jobs      map[int64][]*ciboard.Job
}

func (s *stubActions) ListWorkflows(context.Context, string, string, ports.ListOptions) ([]*ciboard.Workflow, ports.Page, error) {
	return s.workflows, ports.Page{}, nil
}

func (s *stubActions) ListWorkflowRuns(_ context.Context, _, _ string, workflowID int64, _ ports.RunListOptions) ([]*ciboard.Run, ports.Page, error) {
	return s.runs[workflowID], ports.Page{}, nil
}

func (s *stubActions) ListWorkflowJobs(_ context.Context, _, _ string, runID int64, _ ports.JobListOptions) ([]*ciboard.Job, ports.Page, error) {
	return s.jobs[runID], ports.Page{}, nil
}

// stubStore decorates a MemoryStore with failure injection and a save
// signal for the asynchronous refresh test.
type stubStore struct {
	*repository.MemoryStore
	loadErr error
	saved   chan struct{}
}

func (s *stubStore) Save(ctx context.Context, snap ciboard.Snapshot) error {
	if err := s.MemoryStore.Save(ctx, snap); err != nil {
		return err
	}
	if s.saved != nil {
		select {
		case s.saved <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *stubStore) Load(ctx context.Context) (ciboard.Snapshot, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.MemoryStore.Load(ctx)
}

func newTestServer(t *testing.T, store ports.SnapshotStore) (*Server, *services.Runner) {
	t.Helper()
	api := &stubActions{
		workflows: []*ciboard.Workflow{{ID: 7, Name: "ci"}},
		runs: map[int64][]*ciboard.Run{7: {{
			ID: 11, Name: "run", HeadBranch: "main",
			Status: ciboard.RunStatusCompleted, CreatedAt: time.Now(),
		}}},
		jobs: map[int64][]*ciboard.Job{11: {{ID: 1101, RunID: 11, Name: "build", RunAttempt: 1}}},
	}
	agg := services.NewAggregator(api, services.AggregatorOptions{
		Owner: "acme", Repo: "widgets", Branch: "main",
	})
	runner := services.NewRunner(agg, store, 0)
	return NewServer(runner, store), runner
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, repository.NewMemoryStore())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetSnapshot(t *testing.T) {
	store := repository.NewMemoryStore()
	srv, runner := newTestServer(t, store)
	require.NoError(t, runner.RunCycle(context.Background()))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var snap map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Contains(t, snap, "7")
}

func TestGetSnapshot_StoreError(t *testing.T) {
	srv, _ := newTestServer(t, &stubStore{MemoryStore: repository.NewMemoryStore(), loadErr: errors.New("boom")})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}

func TestGetStats(t *testing.T) {
	store := repository.NewMemoryStore()
	srv, runner := newTestServer(t, store)
	require.NoError(t, runner.RunCycle(context.Background()))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.False(t, stats.Running)
	assert.Positive(t, stats.TotalRequests)
	assert.True(t, stats.LastCycle.FinishedOK)
	assert.NotEmpty(t, stats.LastCycle.CycleID)
}

func TestRefresh_TriggersCycle(t *testing.T) {
	store := &stubStore{MemoryStore: repository.NewMemoryStore(), saved: make(chan struct{}, 1)}
	srv, _ := newTestServer(t, store)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case <-store.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("triggered cycle never persisted a snapshot")
	}
}

func TestRefresh_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, repository.NewMemoryStore())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/refresh", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
