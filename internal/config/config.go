// Package config holds chronogit's persistent configuration: GitHub
// credentials, git defaults, and timestamp generation settings. Config lives
// at ~/.chronogit/config.yaml and can be overridden via environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all chronogit configuration.
type Config struct {
	// GitHub credentials and API settings
	GitHub GitHubConfig `yaml:"github"`

	// Git defaults for created commits
	Git GitConfig `yaml:"git"`

	// Timestamp generation defaults
	Timestamps TimestampConfig `yaml:"timestamps"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GitHubConfig configures access to the GitHub API.
type GitHubConfig struct {
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// defaultTimeout is used when github.timeout is empty or unparseable.
const defaultTimeout = 30 * time.Second

// TimeoutDuration parses the configured API timeout, falling back to 30s
// when it is empty or invalid.
func (g GitHubConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(g.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

// GitConfig configures the commits chronogit authors.
type GitConfig struct {
	DefaultBranch string `yaml:"default_branch"`
	AuthorName    string `yaml:"author_name"`
	AuthorEmail   string `yaml:"author_email"`
	ForcePush     bool   `yaml:"force_push"`
}

// TimestampConfig mirrors timegen.Config for persistence.
type TimestampConfig struct {
	DefaultHour        int  `yaml:"default_hour"`
	DistributeTimes    bool `yaml:"distribute_times"`
	ChronologicalOrder bool `yaml:"chronological_order"`
}

// LoggingConfig controls CLI logging verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			BaseURL: "https://api.github.com",
			Timeout: "30s",
		},
		Git: GitConfig{
			DefaultBranch: "main",
			AuthorName:    "Git Time Traveler",
			AuthorEmail:   "timetraveler@example.com",
		},
		Timestamps: TimestampConfig{
			DefaultHour:        18,
			DistributeTimes:    true,
			ChronologicalOrder: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.chronogit/config.yaml, or an error when the home
// directory cannot be determined.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chronogit", "config.yaml"), nil
}

// Load reads configuration from path, falling back to defaults for a missing
// file, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets environment variables win over file values:
// chronogit-specific variables always override, the generic GITHUB_TOKEN
// only fills a missing token.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CHRONOGIT_TOKEN"); v != "" {
		c.GitHub.Token = v
	} else if v := os.Getenv("GITHUB_TOKEN"); v != "" && c.GitHub.Token == "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("CHRONOGIT_USERNAME"); v != "" {
		c.GitHub.Username = v
	}
	if v := os.Getenv("CHRONOGIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks fields that would make later operations fail outright.
func (c *Config) Validate() error {
	if c.Timestamps.DefaultHour < 0 || c.Timestamps.DefaultHour > 23 {
		return fmt.Errorf("timestamps.default_hour %d out of range 0-23", c.Timestamps.DefaultHour)
	}
	if c.Git.DefaultBranch == "" {
		return fmt.Errorf("git.default_branch must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q invalid, use debug/info/warn/error", c.Logging.Level)
	}
	return nil
}
