// Package config loads the service configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName  = "contextual-news"
	defaultServicePort  = 8095
	defaultVersion      = "0.1.0"
	defaultLoggingLevel = "info"
	defaultDBHost       = "localhost"
	defaultDBPort       = 5432
	defaultDBName       = "contextual_news"
	defaultDBUser       = "postgres"
	defaultDBSSLMode    = "disable"

	defaultCacheMaxEntries       = 1000
	defaultCacheTTLSeconds       = 300
	defaultCacheGeohashPrecision = 6

	defaultAnthropicTimeoutS = 30

	defaultMaxEventsPerMinute = 60
	defaultWindowSeconds      = 60
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"CONTEXTUAL_NEWS_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"            yaml:"debug"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_NEWS_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_NEWS_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_NEWS_USER"     yaml:"user"`
	Password string `env:"POSTGRES_NEWS_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_NEWS_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_NEWS_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// AnthropicConfig holds the Claude API configuration used for query
// analysis and article summaries.
type AnthropicConfig struct {
	APIKey  string        `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model   string        `env:"ANTHROPIC_MODEL"   yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig holds the trending result cache configuration.
type CacheConfig struct {
	MaxEntries       int           `yaml:"max_entries"`
	TTL              time.Duration `yaml:"ttl"`
	GeohashPrecision int           `yaml:"geohash_precision"`
}

// RateLimitConfig holds rate limiting for the event ingestion endpoint.
type RateLimitConfig struct {
	MaxEventsPerMinute int `yaml:"max_events_per_minute"`
	WindowSeconds      int `yaml:"window_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return loadWithDefaults(path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setAnthropicDefaults(&cfg.Anthropic)
	setCacheDefaults(&cfg.Cache)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setAnthropicDefaults(a *AnthropicConfig) {
	if a.Timeout == 0 {
		a.Timeout = defaultAnthropicTimeoutS * time.Second
	}
}

func setCacheDefaults(c *CacheConfig) {
	if c.MaxEntries == 0 {
		c.MaxEntries = defaultCacheMaxEntries
	}
	if c.TTL == 0 {
		c.TTL = defaultCacheTTLSeconds * time.Second
	}
	if c.GeohashPrecision == 0 {
		c.GeohashPrecision = defaultCacheGeohashPrecision
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxEventsPerMinute == 0 {
		rl.MaxEventsPerMinute = defaultMaxEventsPerMinute
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return &ValidationError{
			Field:   "service.port",
			Message: "must be between 1 and 65535",
		}
	}
	if c.Anthropic.APIKey == "" {
		return &ValidationError{
			Field:   "anthropic.api_key",
			Message: "is required",
		}
	}
	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
