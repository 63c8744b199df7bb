// Package config loads the server configuration from config/{env}.yaml.
package config

import (
	"errors"
	"fmt"
)

// Database drivers.
const (
	DriverValkey   = "valkey"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Rate limit backends.
const (
	RateLimitMemory = "memory"
	RateLimitStore  = "store"
	RateLimitOff    = "off"
)

// Config holds the agenda API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Search    SearchConfig    `yaml:"search"`
	Storage   StorageConfig   `yaml:"storage"`
	Photos    PhotosConfig    `yaml:"photos"`
	Events    EventsConfig    `yaml:"events"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
// Tokens are issued by an external identity provider and verified with JWTSecret.
type AuthConfig struct {
	JWTSecret string   `yaml:"jwt_secret"`
	JWTIssuer string   `yaml:"jwt_issuer"`
	APIKeys   []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxUploadMB     int `yaml:"max_upload_mb"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis, postgres (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds contact search and pagination settings.
type SearchConfig struct {
	OverfetchMultiplier int `yaml:"overfetch_multiplier"`
	DefaultPageSize     int `yaml:"default_page_size"`
	MaxPageSize         int `yaml:"max_page_size"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// PhotosConfig holds Cloudinary settings. Photos are disabled when CloudName is empty.
type PhotosConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Folder    string `yaml:"folder"`
}

// Enabled reports whether photo storage is configured.
func (p PhotosConfig) Enabled() bool { return p.CloudName != "" }

// EventsConfig holds NATS settings. Events are disabled when NATSURL is empty.
type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// RateLimitConfig holds inbound rate limit settings for public routes.
// The memory backend uses RPS and Burst; the store backend counts
// MaxRequests per WindowSec in the shared key-value store.
type RateLimitConfig struct {
	Backend     string  `yaml:"backend"` // memory, store, off (default: memory)
	RPS         float64 `yaml:"rps"`
	Burst       int     `yaml:"burst"`
	WindowSec   int     `yaml:"window_sec"`
	MaxRequests int64   `yaml:"max_requests"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	setDefault(&c.HTTP.ReadTimeoutSec, 10)
	setDefault(&c.HTTP.WriteTimeoutSec, 10)
	setDefault(&c.HTTP.ShutdownSec, 10)
	setDefault(&c.HTTP.MaxUploadMB, 5)

	setDefault(&c.Database.Driver, DriverValkey)
	setDefault(&c.Database.ReadinessTimeout, 10)

	setDefault(&c.Search.OverfetchMultiplier, 3)
	setDefault(&c.Search.DefaultPageSize, 20)
	setDefault(&c.Search.MaxPageSize, 100)

	setDefault(&c.Storage.KeyPrefix, "agenda:")
	setDefault(&c.Photos.Folder, "agenda/contacts")
	setDefault(&c.Events.SubjectPrefix, "agenda.")

	setDefault(&c.RateLimit.Backend, RateLimitMemory)
	setDefault(&c.RateLimit.RPS, 10)
	setDefault(&c.RateLimit.Burst, 20)
	setDefault(&c.RateLimit.WindowSec, 60)
	setDefault(&c.RateLimit.MaxRequests, 600)
}

// setDefault replaces a zero or negative *field with def.
func setDefault[T int | int64 | float64 | string](field *T, def T) {
	var zero T
	if *field <= zero {
		*field = def
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverValkey, DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be one of valkey, redis, postgres, got %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Search.OverfetchMultiplier < 2 {
		return fmt.Errorf("search.overfetch_multiplier must be at least 2, got %d", c.Search.OverfetchMultiplier)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf(
			"search.default_page_size (%d) must not exceed search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize,
		)
	}
	if c.Photos.Enabled() && (c.Photos.APIKey == "" || c.Photos.APISecret == "") {
		return errors.New("photos.api_key and photos.api_secret are required when photos.cloud_name is set")
	}
	switch c.RateLimit.Backend {
	case RateLimitMemory, RateLimitOff:
	case RateLimitStore:
		if c.Database.Driver == DriverPostgres {
			return errors.New(`rate_limit.backend "store" needs a redis or valkey database`)
		}
	default:
		return fmt.Errorf("rate_limit.backend must be memory, store or off, got %q", c.RateLimit.Backend)
	}
	return nil
}
