package agenda

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver          string
	addrs           []string
	password        string
	keyPrefix       string
	overfetch       int
	defaultPageSize int
	maxPageSize     int
	readiness       time.Duration
	logger          *zap.Logger
}

// WithValkey connects to a Valkey server.
func WithValkey(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithRedis connects to a Redis Stack server (RediSearch).
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithKeyPrefix namespaces every key the client reads. It must match the
// prefix the API server writes with.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithOverfetch sets the batch multiplier used by radius searches.
func WithOverfetch(k int) Option {
	return func(c *clientConfig) {
		c.overfetch = k
	}
}

// WithPagination sets the default and maximum page sizes.
func WithPagination(defaultPageSize, maxPageSize int) Option {
	return func(c *clientConfig) {
		c.defaultPageSize = defaultPageSize
		c.maxPageSize = maxPageSize
	}
}

// WithReadinessTimeout bounds how long New waits for the server.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.readiness = d
	}
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
