package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration. File values come
// from config.yaml; the repository target and credentials are sourced from
// the environment and always win over file values.
type Config struct {
	Repo      RepoConfig      `yaml:"repo"`
	Aggregate AggregateConfig `yaml:"aggregate"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"-"`
}

// RepoConfig identifies the repository to aggregate.
type RepoConfig struct {
	Owner  string `yaml:"owner"`
	Name   string `yaml:"name"`
	Branch string `yaml:"branch"` // default: main
}

// AggregateConfig holds the knobs of one aggregation cycle.
type AggregateConfig struct {
	MaxRunsPerWorkflow  int           `yaml:"max_runs_per_workflow"` // default: 15
	WindowDays          int           `yaml:"window_days"`           // trailing consideration window, default: 14
	JobConcurrency      int           `yaml:"job_concurrency"`       // process-wide job-fetch bound, default: 10
	WorkflowConcurrency int           `yaml:"workflow_concurrency"`  // workflow fan-out bound, default: 4
	CycleTimeout        time.Duration `yaml:"cycle_timeout"`         // default: 10m
	Schedule            string        `yaml:"schedule"`              // cron expr for serve mode, default: @every 5m
}

// SnapshotConfig holds output settings.
type SnapshotConfig struct {
	Path string `yaml:"path"` // default: workflow_runs.json
}

// ServerConfig holds the diagnostics HTTP server settings for serve mode.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds the optional PostgreSQL mirror settings. The mirror is
// enabled only when URL is non-empty.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig selects between the two credential modes based on which
// environment variables are present. Token wins when both are set.
type AuthConfig struct {
	Token string

	AppID             int64
	AppInstallationID int64
	AppPrivateKey     string
}

// HasToken reports whether static-token authentication is configured.
func (a AuthConfig) HasToken() bool { return a.Token != "" }

// HasApp reports whether GitHub App installation authentication is configured.
func (a AuthConfig) HasApp() bool {
	return a.AppID != 0 && a.AppInstallationID != 0 && a.AppPrivateKey != ""
}

// defaults returns a Config populated with the engine's default values.
func defaults() *Config {
	return &Config{
		Repo: RepoConfig{Branch: "main"},
		Aggregate: AggregateConfig{
			MaxRunsPerWorkflow:  15,
			WindowDays:          14,
			JobConcurrency:      10,
			WorkflowConcurrency: 4,
			CycleTimeout:        10 * time.Minute,
			Schedule:            "@every 5m",
		},
		Snapshot: SnapshotConfig{Path: "workflow_runs.json"},
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
	}
}

// Load reads a YAML configuration file at path, then applies environment
// overrides on top.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory. If the
// file does not exist, defaults plus environment overrides are used. A .env
// file, when present, is loaded into the environment first.
func LoadDefault() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = defaults()
			if err := cfg.applyEnv(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays the recognized environment variables onto cfg.
func (c *Config) applyEnv() error {
	if v := os.Getenv("GITHUB_REPOSITORY_ORG"); v != "" {
		c.Repo.Owner = v
	}
	if v := os.Getenv("GITHUB_REPOSITORY_NAME"); v != "" {
		c.Repo.Name = v
	}
	if v := os.Getenv("TARGET_BRANCH"); v != "" {
		c.Repo.Branch = v
	}

	c.Auth.Token = os.Getenv("GH_TOKEN")
	c.Auth.AppPrivateKey = os.Getenv("GITHUB_APP_PRIVATE_KEY")

	var err error
	if c.Auth.AppID, err = intEnv("GITHUB_APP_ID"); err != nil {
		return err
	}
	if c.Auth.AppInstallationID, err = intEnv("GITHUB_APP_INSTALLATION_ID"); err != nil {
		return err
	}
	return nil
}

// intEnv parses an integer environment variable. Absence is not an error;
// a set but unparsable value is.
func intEnv(name string) (int64, error) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return v, nil
}

// Validate checks that the configuration is complete enough to run a cycle.
func (c *Config) Validate() error {
	if c.Repo.Owner == "" {
		return fmt.Errorf("missing repository owner (set GITHUB_REPOSITORY_ORG or repo.owner)")
	}
	if c.Repo.Name == "" {
		return fmt.Errorf("missing repository name (set GITHUB_REPOSITORY_NAME or repo.name)")
	}
	if !c.Auth.HasToken() && !c.Auth.HasApp() {
		return fmt.Errorf("missing credentials: set GH_TOKEN, or GITHUB_APP_ID, GITHUB_APP_INSTALLATION_ID and GITHUB_APP_PRIVATE_KEY")
	}
	if c.Aggregate.MaxRunsPerWorkflow <= 0 {
		return fmt.Errorf("aggregate.max_runs_per_workflow must be positive")
	}
	if c.Aggregate.JobConcurrency <= 0 {
		return fmt.Errorf("aggregate.job_concurrency must be positive")
	}
	return nil
}

// Window returns the trailing consideration window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Aggregate.WindowDays) * 24 * time.Hour
}
