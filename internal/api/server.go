package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ciboard/internal/ciboard/ports"
	"ciboard/internal/services"
)

// Server exposes the engine's diagnostics over HTTP in serve mode: a health
// probe, cycle and request statistics, a read-only mirror of the emitted
// snapshot, and a manual cycle trigger. The snapshot file itself remains the
// contract with the presentation layer; the mirror endpoint is a
// convenience.
type Server struct {
	runner *services.Runner
	store  ports.SnapshotStore
}

// NewServer creates a Server.
func NewServer(runner *services.Runner, store ports.SnapshotStore) *Server {
	return &Server{runner: runner, store: store}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.getSnapshot)
		r.Get("/stats", s.getStats)
		r.Post("/refresh", s.refresh)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// statsResponse is the /api/stats payload.
type statsResponse struct {
	Running       bool                  `json:"running"`
	TotalRequests int64                 `json:"total_requests"`
	Limiter       services.LimiterStats `json:"limiter"`
	LastCycle     services.CycleStats   `json:"last_cycle"`
}

func (s *Server) getStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Running:       s.runner.Running(),
		TotalRequests: s.runner.TotalRequests(),
		Limiter:       s.runner.LimiterStats(),
		LastCycle:     s.runner.LastCycle(),
	})
}

// refresh kicks off a cycle in the background. If one is already running the
// runner skips it; either way the trigger is acknowledged immediately.
func (s *Server) refresh(w http.ResponseWriter, _ *http.Request) {
	// Detached from the request context: the cycle outlives the response.
	go func() {
		if err := s.runner.RunCycle(context.Background()); err != nil {
			slog.Error("api: triggered cycle failed", "err", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("api: writing response failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
