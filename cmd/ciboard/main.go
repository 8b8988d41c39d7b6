package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ciboard/internal/api"
	"ciboard/internal/config"
	"ciboard/internal/db"
	"ciboard/internal/github"
	"ciboard/internal/repository"
	"ciboard/internal/services"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "once":
			once()
			return
		case "serve":
			serve()
			return
		}
	}
	fmt.Println("ciboard — CI workflow run aggregator")
	fmt.Println("Usage:")
	fmt.Println("  ciboard once    run a single aggregation cycle and exit")
	fmt.Println("  ciboard serve   aggregate on a schedule and serve diagnostics")
}

// once runs a single aggregation cycle, matching the one-shot contract: a
// fatal setup or enumeration error exits non-zero, partial per-workflow or
// per-run failures do not.
func once() {
	runner, _, cleanup := setup()
	defer cleanup()

	if err := runner.RunCycle(context.Background()); err != nil {
		slog.Error("aggregation cycle failed", "err", err)
		os.Exit(1)
	}
	slog.Info("workflow run data gathered and stored",
		"requests", runner.TotalRequests())
}

// serve runs cycles on the configured schedule and exposes the diagnostics
// HTTP server until interrupted.
func serve() {
	runner, cfg, cleanup := setup()
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := services.NewScheduler(runner, cfg.Aggregate.Schedule)
	if err := sched.Start(ctx); err != nil {
		slog.Error("scheduler error", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// First cycle immediately; the schedule handles the rest.
	go func() {
		if err := runner.RunCycle(ctx); err != nil {
			slog.Error("initial cycle failed", "err", err)
		}
	}()

	store := repository.NewFileStore(cfg.Snapshot.Path)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: api.NewServer(runner, store).Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown", "err", err)
		}
	}()

	slog.Info("starting ciboard server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

// setup loads configuration, builds the authenticated provider client, and
// wires the aggregator, snapshot store and runner. Configuration and
// credential problems are fatal.
func setup() (*services.Runner, *config.Config, func()) {
	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := github.NewClient(ctx, cfg.Auth)
	if err != nil {
		slog.Error("github client error", "err", err)
		os.Exit(1)
	}

	slog.Info("aggregating", "owner", cfg.Repo.Owner, "repo", cfg.Repo.Name,
		"branch", cfg.Repo.Branch, "output", cfg.Snapshot.Path)

	agg := services.NewAggregator(github.NewActions(client), services.AggregatorOptions{
		Owner:               cfg.Repo.Owner,
		Repo:                cfg.Repo.Name,
		Branch:              cfg.Repo.Branch,
		MaxRunsPerWorkflow:  cfg.Aggregate.MaxRunsPerWorkflow,
		Window:              cfg.Window(),
		JobConcurrency:      cfg.Aggregate.JobConcurrency,
		WorkflowConcurrency: cfg.Aggregate.WorkflowConcurrency,
	})

	fileStore := repository.NewFileStore(cfg.Snapshot.Path)
	cleanup := func() {}

	runner := services.NewRunner(agg, fileStore, cfg.Aggregate.CycleTimeout)
	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			slog.Error("database error", "err", err)
			os.Exit(1)
		}
		if err := database.Migrate(ctx); err != nil {
			slog.Error("database migration error", "err", err)
			os.Exit(1)
		}
		cleanup = func() { database.Close() }
		runner = services.NewRunner(agg, repository.NewPersistent(fileStore, database), cfg.Aggregate.CycleTimeout)
	}

	return runner, cfg, cleanup
}
