// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override, TECHWIKI_ prefix plus DATABASE_URL)
//  2. Config file (~/.techwiki/config.yaml or ./config.yaml)
//  3. Default values
//
// Categories:
//   - Server: HTTP listen address and timeouts
//   - Storage: PostgreSQL connection (see storage.go)
//   - AI: model provider and generation settings
//   - Graph: knowledge-graph build defaults (cache window, cross-edge budget)
//   - Runner: external code-execution sandbox
//   - Ingest: external page import
//   - Otel: OpenTelemetry trace export
//
// Sensitive values (passwords, API keys) are never logged. Validation lives in
// validation.go and uses sentinel errors so callers can check errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidListenAddr indicates the HTTP listen address is invalid.
	ErrInvalidListenAddr = errors.New("invalid listen address")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates an unsupported sslmode value.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidGraphCacheTTL indicates a negative graph cache window.
	ErrInvalidGraphCacheTTL = errors.New("invalid graph cache TTL")

	// ErrInvalidGraphMaxCrossEdges indicates a non-positive cross-edge budget.
	ErrInvalidGraphMaxCrossEdges = errors.New("invalid graph max cross edges")

	// ErrInvalidRunnerURL indicates the sandbox runner URL is malformed.
	ErrInvalidRunnerURL = errors.New("invalid runner URL")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderGoogleAI = "googleai"
)

// Config stores application configuration.
type Config struct {
	// Server
	ListenAddr string `mapstructure:"listen_addr"`

	// AI provider and generation settings
	Provider      string  `mapstructure:"provider"`
	ModelName     string  `mapstructure:"model_name"`
	Temperature   float32 `mapstructure:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	EmbedderModel string  `mapstructure:"embedder_model"`

	// Storage (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE: never log
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Graph build defaults
	GraphCacheTTL      time.Duration `mapstructure:"graph_cache_ttl"`
	GraphMaxCrossEdges int           `mapstructure:"graph_max_cross_edges"`

	// Runner (external code-execution sandbox)
	RunnerURL     string        `mapstructure:"runner_url"`
	RunnerTimeout time.Duration `mapstructure:"runner_timeout"`

	// Ingest
	IngestUserAgent   string `mapstructure:"ingest_user_agent"`
	IngestParallelism int    `mapstructure:"ingest_parallelism"`

	// Otel trace export (empty endpoint disables tracing)
	OtelEndpoint string `mapstructure:"otel_endpoint"`
	Environment  string `mapstructure:"environment"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".techwiki")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("TECHWIKI")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides the individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("listen_addr", "127.0.0.1:3500")

	// AI defaults
	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("embedder_model", "gemini-embedding-001")

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "techwiki")
	v.SetDefault("postgres_password", "techwiki_dev_password")
	v.SetDefault("postgres_db_name", "techwiki")
	v.SetDefault("postgres_ssl_mode", "disable")

	// Graph defaults mirror the build-time constants; changing them here only
	// changes what the HTTP layer passes in, not what the builder enforces.
	v.SetDefault("graph_cache_ttl", 5*time.Minute)
	v.SetDefault("graph_max_cross_edges", 1500)

	// Runner defaults
	v.SetDefault("runner_url", "http://localhost:8700")
	v.SetDefault("runner_timeout", 15*time.Second)

	// Ingest defaults
	v.SetDefault("ingest_user_agent", "techwiki-ingest/1.0")
	v.SetDefault("ingest_parallelism", 2)

	// Observability defaults
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("environment", "dev")
}
