// Package db defines the storage contract the repositories are written
// against. The redis and valkey packages implement it over rueidis; the
// postgres package opens the pgx pool used by the SQL repositories.
package db

import (
	"context"
	"time"
)

// Store is everything a key-value backend offers. Repositories declare the
// narrow subset they need instead of depending on Store.
type Store interface {
	Pinger
	Records
	Counters
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Records stores flat string records as hashes.
type Records interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Counters holds short-lived keys: reservations and fixed-window counters.
type Counters interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// IndexManager creates secondary indexes over records.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs filtered, sorted, paginated reads over an index.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
}
