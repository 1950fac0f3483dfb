package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/repo-warden/internal/logger"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080", MaxPOSTBytes: 8 << 20},
			Database: &DBConfig{Host: "localhost", Port: 5432},
			Worker: WorkerConfig{
				MaxWorkers:   4,
				PollInterval: 2 * time.Second,
				MaxAttempts:  3,
			},
			LoggerConfig: logger.Config{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "zero post body limit",
			mutate:  func(c *Config) { c.Server.MaxPOSTBytes = 0 },
			wantErr: true,
		},
		{
			name:    "negative worker count",
			mutate:  func(c *Config) { c.Worker.MaxWorkers = -1 },
			wantErr: true,
		},
		{
			name:    "zero max attempts",
			mutate:  func(c *Config) { c.Worker.MaxAttempts = 0 },
			wantErr: true,
		},
		{
			name:   "zero workers is allowed, pool defaults it",
			mutate: func(c *Config) { c.Worker.MaxWorkers = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateForServer(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateForServer())

	cfg.GitHub.WebhookSecret = "secret"
	assert.NoError(t, cfg.ValidateForServer())
}
