package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		log       func(buf *bytes.Buffer)
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:   "text logger at info level",
			config: Config{Level: "info", Format: "text", Output: "stdout"},
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "level=INFO") || !strings.Contains(output, "msg=\"test message\"") {
					t.Errorf("expected text log with info level and message, got: %s", output)
				}
			},
		},
		{
			name:   "json logger at debug level",
			config: Config{Level: "debug", Format: "json", Output: "stdout"},
			checkFunc: func(t *testing.T, output string) {
				var entry map[string]any
				if err := json.Unmarshal([]byte(output), &entry); err != nil {
					t.Fatalf("failed to unmarshal JSON log: %v, output: %s", err, output)
				}
				if entry["msg"] != "test message" {
					t.Errorf("expected JSON log with message, got: %v", entry)
				}
			},
		},
		{
			name:   "bad level falls back to info",
			config: Config{Level: "nonsense", Format: "text"},
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "level=INFO") {
					t.Errorf("expected info-level fallback, got: %s", output)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(tt.config, &buf)
			log.Info("test message")
			if tt.config.Level == "debug" {
				// Debug must not be filtered out at this level.
				buf.Reset()
				log.Debug("test message")
			}
			tt.checkFunc(t, buf.String())
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: "warn", Format: "text"}, &buf)

	log.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info message should be filtered at warn level, got: %s", buf.String())
	}

	log.Warn("should appear")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("warn message missing, got: %s", buf.String())
	}
}
