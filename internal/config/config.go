// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/repo-warden/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server       ServerConfig
	Database     *DBConfig
	GitHub       GitHubConfig
	Worker       WorkerConfig
	LoggerConfig logger.Config

	// MirrorPath is the directory under which local repository mirrors
	// are kept, one subdirectory per callsign.
	MirrorPath string

	// HeraldRulesPath points at the YAML rule file evaluated by the
	// herald executor. Empty means no rules are loaded.
	HeraldRulesPath string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port string

	// MaxPOSTBytes is the server-level POST body limit reported in
	// truncated-body diagnostics.
	MaxPOSTBytes int64
}

// DBConfig configures the Postgres connection.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// GitHubConfig configures webhook validation and API access. API calls
// authenticate with a personal token when Token is set, otherwise as a
// GitHub App installation.
type GitHubConfig struct {
	WebhookSecret  string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
	Token          string
}

// WorkerConfig configures the background worker runtime.
type WorkerConfig struct {
	MaxWorkers   int
	PollInterval time.Duration
	MaxAttempts  int
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.SetEnvPrefix("RW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("MAX_POST_BYTES", 8<<20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "repowarden")
	v.SetDefault("DB_NAME", "repowarden")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")
	v.SetDefault("MAX_WORKERS", 4)
	v.SetDefault("WORKER_POLL_INTERVAL", "2s")
	v.SetDefault("WORKER_MAX_ATTEMPTS", 3)
	v.SetDefault("MIRROR_PATH", "mirrors")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A missing .env is fine, a broken one is not.
			return nil, fmt.Errorf("failed to read .env file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			MaxPOSTBytes: v.GetInt64("MAX_POST_BYTES"),
		},
		Database: &DBConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			Username:        v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Database:        v.GetString("DB_NAME"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		GitHub: GitHubConfig{
			WebhookSecret:  v.GetString("GITHUB_WEBHOOK_SECRET"),
			AppID:          v.GetInt64("GITHUB_APP_ID"),
			InstallationID: v.GetInt64("GITHUB_INSTALLATION_ID"),
			PrivateKeyPath: v.GetString("GITHUB_PRIVATE_KEY_PATH"),
			Token:          v.GetString("GITHUB_TOKEN"),
		},
		Worker: WorkerConfig{
			MaxWorkers:   v.GetInt("MAX_WORKERS"),
			PollInterval: v.GetDuration("WORKER_POLL_INTERVAL"),
			MaxAttempts:  v.GetInt("WORKER_MAX_ATTEMPTS"),
		},
		LoggerConfig: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
		MirrorPath:      v.GetString("MIRROR_PATH"),
		HeraldRulesPath: v.GetString("HERALD_RULES_PATH"),
	}

	return cfg, cfg.Validate()
}

// Validate checks invariants that hold for every binary.
func (c *Config) Validate() error {
	if c.Server.MaxPOSTBytes <= 0 {
		return fmt.Errorf("MAX_POST_BYTES must be positive, got %d", c.Server.MaxPOSTBytes)
	}
	if c.Worker.MaxWorkers < 0 {
		return fmt.Errorf("MAX_WORKERS cannot be negative, got %d", c.Worker.MaxWorkers)
	}
	if c.Worker.MaxAttempts < 1 {
		return fmt.Errorf("WORKER_MAX_ATTEMPTS must be at least 1, got %d", c.Worker.MaxAttempts)
	}
	return nil
}

// ValidateForServer checks the fields only the server binary needs.
func (c *Config) ValidateForServer() error {
	if c.GitHub.WebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}
	return nil
}
