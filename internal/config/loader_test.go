package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "consultd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want default 8080", cfg.Server.Port)
	}
	if cfg.Agents.PollInterval != time.Second {
		t.Errorf("poll_interval = %v, want 1s", cfg.Agents.PollInterval)
	}
	if cfg.Agents.MaxAttempts != 60 {
		t.Errorf("max_attempts = %d, want 60", cfg.Agents.MaxAttempts)
	}
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
agents:
  endpoint: https://agents.example.com
  chat_agent_id: asst_chat
  extract_agent_id: asst_extract
  poll_interval: 500ms
  max_attempts: 30
logging:
  level: debug
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Agents.Endpoint != "https://agents.example.com" {
		t.Errorf("endpoint = %q", cfg.Agents.Endpoint)
	}
	if cfg.Agents.PollInterval != 500*time.Millisecond {
		t.Errorf("poll_interval = %v", cfg.Agents.PollInterval)
	}
	if cfg.Agents.MaxAttempts != 30 {
		t.Errorf("max_attempts = %d", cfg.Agents.MaxAttempts)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
	// Untouched sections keep defaults.
	if cfg.Breaker.MaxFailures != 5 {
		t.Errorf("breaker.max_failures = %d", cfg.Breaker.MaxFailures)
	}
}

func TestLoadFromEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
agents:
  chat_agent_id: asst_from_yaml
`)
	t.Setenv("CONSULTD_PORT", "7070")
	t.Setenv("CONSULTD_CHAT_AGENT_ID", "asst_from_env")
	t.Setenv("CONSULTD_POLL_INTERVAL", "250ms")
	t.Setenv("CONSULTD_LOG_ASYNC", "true")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q, env should win", cfg.Server.Port)
	}
	if cfg.Agents.ChatAgentID != "asst_from_env" {
		t.Errorf("chat_agent_id = %q", cfg.Agents.ChatAgentID)
	}
	if cfg.Agents.PollInterval != 250*time.Millisecond {
		t.Errorf("poll_interval = %v", cfg.Agents.PollInterval)
	}
	if !cfg.Logging.Async {
		t.Error("log async should be true")
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"empty dsn", func(c *Config) { c.Postgres.DSN = "" }},
		{"zero poll interval", func(c *Config) { c.Agents.PollInterval = 0 }},
		{"zero max attempts", func(c *Config) { c.Agents.MaxAttempts = 0 }},
		{"zero breaker failures", func(c *Config) { c.Breaker.MaxFailures = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := validate(&cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
