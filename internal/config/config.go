// Package config provides configuration management for xtivi using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8080
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	defaultUpstreamTimeout       = 30 * time.Second
	defaultUpstreamRetryAttempts = 3
	defaultUpstreamRetryDelay    = 1 * time.Second
	defaultCircuitThreshold      = 5
	defaultCircuitTimeout        = 30 * time.Second

	defaultCatalogTTL         = 15 * time.Minute
	defaultCatalogRefreshCron = "0 */30 * * * *"

	defaultProbeTimeout   = 15 * time.Second
	defaultProbeByteLimit = 256 * 1024
	defaultBackoffBase    = 3 * time.Second
	defaultBackoffStep    = 1 * time.Second
	defaultBackoffCap     = 8 * time.Second
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Playback PlaybackConfig `mapstructure:"playback"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Path     string `mapstructure:"path"`
	LogLevel string `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// UpstreamConfig holds settings for the HTTP client used against IPTV panels.
type UpstreamConfig struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	RetryAttempts    int           `mapstructure:"retry_attempts"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
	CircuitThreshold int           `mapstructure:"circuit_threshold"`
	CircuitTimeout   time.Duration `mapstructure:"circuit_timeout"`
	UserAgent        string        `mapstructure:"user_agent"`
}

// CatalogConfig holds catalog cache configuration.
type CatalogConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// RefreshCron is a 6-field cron expression for background cache refresh.
	// Empty disables scheduled refresh.
	RefreshCron string `mapstructure:"refresh_cron"`
}

// PlaybackConfig holds playback engine and fallback controller configuration.
type PlaybackConfig struct {
	// ProbeTimeout bounds a single load attempt against an upstream URL.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	// ProbeByteLimit is the number of payload bytes fetched to validate a
	// progressive stream.
	ProbeByteLimit int64 `mapstructure:"probe_byte_limit"`
	// BackoffBase, BackoffStep, and BackoffCap define the linear backoff
	// between fallback attempts: min(base + step*attempt, cap).
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	BackoffStep time.Duration `mapstructure:"backoff_step"`
	BackoffCap  time.Duration `mapstructure:"backoff_cap"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration and are
// prefixed with XTIVI_, using underscores for nesting.
// Example: XTIVI_SERVER_PORT=8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/xtivi")
		v.AddConfigPath("$HOME/.xtivi")
	}

	v.SetEnvPrefix("XTIVI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.path", "xtivi.db")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	v.SetDefault("upstream.timeout", defaultUpstreamTimeout)
	v.SetDefault("upstream.retry_attempts", defaultUpstreamRetryAttempts)
	v.SetDefault("upstream.retry_delay", defaultUpstreamRetryDelay)
	v.SetDefault("upstream.circuit_threshold", defaultCircuitThreshold)
	v.SetDefault("upstream.circuit_timeout", defaultCircuitTimeout)
	v.SetDefault("upstream.user_agent", "")

	v.SetDefault("catalog.cache_ttl", defaultCatalogTTL)
	v.SetDefault("catalog.refresh_cron", defaultCatalogRefreshCron)

	v.SetDefault("playback.probe_timeout", defaultProbeTimeout)
	v.SetDefault("playback.probe_byte_limit", defaultProbeByteLimit)
	v.SetDefault("playback.backoff_base", defaultBackoffBase)
	v.SetDefault("playback.backoff_step", defaultBackoffStep)
	v.SetDefault("playback.backoff_cap", defaultBackoffCap)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}
	if c.Upstream.RetryAttempts < 0 {
		return fmt.Errorf("upstream.retry_attempts must not be negative")
	}

	if c.Catalog.CacheTTL < 0 {
		return fmt.Errorf("catalog.cache_ttl must not be negative")
	}

	if c.Playback.ProbeTimeout <= 0 {
		return fmt.Errorf("playback.probe_timeout must be positive")
	}
	if c.Playback.BackoffCap < c.Playback.BackoffBase {
		return fmt.Errorf("playback.backoff_cap must not be below playback.backoff_base")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
