package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "consultd.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "CONSULTD_PORT")
	setString(&cfg.Server.CORSOrigin, "CONSULTD_CORS_ORIGIN")

	setString(&cfg.Agents.Endpoint, "CONSULTD_AGENTS_ENDPOINT")
	setString(&cfg.Agents.APIVersion, "CONSULTD_AGENTS_API_VERSION")
	setString(&cfg.Agents.ChatAgentID, "CONSULTD_CHAT_AGENT_ID")
	setString(&cfg.Agents.ExtractAgentID, "CONSULTD_EXTRACT_AGENT_ID")
	setDuration(&cfg.Agents.PollInterval, "CONSULTD_POLL_INTERVAL")
	setInt(&cfg.Agents.MaxAttempts, "CONSULTD_MAX_ATTEMPTS")

	setString(&cfg.Identity.TokenURL, "CONSULTD_TOKEN_URL")
	setString(&cfg.Identity.ClientID, "CONSULTD_CLIENT_ID")
	setString(&cfg.Identity.ClientSecret, "CONSULTD_CLIENT_SECRET")
	setString(&cfg.Identity.Scope, "CONSULTD_TOKEN_SCOPE")
	setDuration(&cfg.Identity.RefreshSlack, "CONSULTD_TOKEN_REFRESH_SLACK")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "CONSULTD_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "CONSULTD_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "CONSULTD_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "CONSULTD_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "CONSULTD_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")
	setInt64(&cfg.Cache.MaxSizeMB, "CONSULTD_CACHE_SIZE_MB")

	setString(&cfg.Logging.Level, "CONSULTD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CONSULTD_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "CONSULTD_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "CONSULTD_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Cooldown, "CONSULTD_BREAKER_COOLDOWN")

	setString(&cfg.Telemetry.OTLPEndpoint, "CONSULTD_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Agents.PollInterval <= 0 {
		return errors.New("agents.poll_interval must be positive")
	}
	if cfg.Agents.MaxAttempts < 1 {
		return errors.New("agents.max_attempts must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
