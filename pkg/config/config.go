package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/envfile/pkg/observability"
)

// Source supplies raw configuration values. *envfile.Store satisfies it, so a
// loaded env file can configure the server that serves it.
type Source interface {
	Get(key string) (string, bool)
}

// OSEnv reads from the process environment.
type OSEnv struct{}

// Get implements Source.
func (OSEnv) Get(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Layered consults each source in order; the first one holding a non-empty
// value wins.
type Layered []Source

// Get implements Source.
func (l Layered) Get(key string) (string, bool) {
	for _, src := range l {
		if src == nil {
			continue
		}
		if value, ok := src.Get(key); ok && value != "" {
			return value, true
		}
	}
	return "", false
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Env files served and how they are refreshed
	Files FilesConfig

	// Lookup cache in front of the store
	Cache CacheConfig

	// Redis mirror of the effective entries
	Redis RedisConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// FilesConfig lists the env files to load and their reload triggers.
type FilesConfig struct {
	Paths []string

	// Watch reloads when a file changes on disk.
	Watch bool

	// ReloadSchedule is a cron spec for periodic reloads; empty disables.
	ReloadSchedule string

	// MaxEntries caps the store; 0 means unlimited.
	MaxEntries int
}

// CacheConfig sizes the lookup cache.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// RedisConfig enables publishing to a Redis hash when URL is set.
type RedisConfig struct {
	URL string
	Key string
}

// Enabled reports whether a Redis URL was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(OSEnv{})
}

// LoadConfigFrom loads configuration from src.
func LoadConfigFrom(src Source) (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(src),
		Files:         loadFilesConfig(src),
		Cache:         loadCacheConfig(src),
		Redis:         loadRedisConfig(src),
		Observability: loadObservabilityConfig(src),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig(src Source) ServerConfig {
	return ServerConfig{
		Host:            getEnv(src, "ENVFILE_HOST", "0.0.0.0"),
		Port:            getEnv(src, "ENVFILE_PORT", "8080"),
		ReadTimeout:     getEnvDuration(src, "ENVFILE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration(src, "ENVFILE_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDuration(src, "ENVFILE_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadFilesConfig(src Source) FilesConfig {
	return FilesConfig{
		Paths:          getEnvList(src, "ENVFILE_FILES", []string{".env"}),
		Watch:          getEnvBool(src, "ENVFILE_WATCH", false),
		ReloadSchedule: getEnv(src, "ENVFILE_RELOAD_SCHEDULE", ""),
		MaxEntries:     getEnvInt(src, "ENVFILE_MAX_ENTRIES", 0),
	}
}

func loadCacheConfig(src Source) CacheConfig {
	return CacheConfig{
		Size: getEnvInt(src, "ENVFILE_CACHE_SIZE", 1024),
		TTL:  getEnvDuration(src, "ENVFILE_CACHE_TTL", 5*time.Minute),
	}
}

func loadRedisConfig(src Source) RedisConfig {
	return RedisConfig{
		URL: getEnv(src, "ENVFILE_REDIS_URL", ""),
		Key: getEnv(src, "ENVFILE_REDIS_KEY", "envfile"),
	}
}

func loadObservabilityConfig(src Source) ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       getEnv(src, "ENVFILE_LOG_LEVEL", "info"),
		LogFormat:      getEnv(src, "ENVFILE_LOG_FORMAT", observability.FormatText),
		MetricsEnabled: getEnvBool(src, "ENVFILE_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	if len(c.Files.Paths) == 0 {
		return fmt.Errorf("at least one env file is required")
	}
	if c.Files.MaxEntries < 0 {
		return fmt.Errorf("max entries must not be negative")
	}
	if c.Files.ReloadSchedule != "" {
		if _, err := cron.ParseStandard(c.Files.ReloadSchedule); err != nil {
			return fmt.Errorf("invalid reload schedule %q: %w", c.Files.ReloadSchedule, err)
		}
	}

	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}

	if c.Redis.Enabled() && c.Redis.Key == "" {
		return fmt.Errorf("redis key is required when redis URL is set")
	}

	switch strings.ToLower(c.Observability.LogFormat) {
	case observability.FormatText, observability.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Observability.LogFormat)
	}

	return nil
}

// getEnv returns a configuration value or a default
func getEnv(src Source, key, defaultValue string) string {
	if value, ok := src.Get(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean configuration value or a default
func getEnvBool(src Source, key string, defaultValue bool) bool {
	if value := getEnv(src, key, ""); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer configuration value or a default
func getEnvInt(src Source, key string, defaultValue int) int {
	if value := getEnv(src, key, ""); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration configuration value or a default
func getEnvDuration(src Source, key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(src, key, ""); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty items
func getEnvList(src Source, key string, defaultValue []string) []string {
	value := getEnv(src, key, "")
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
