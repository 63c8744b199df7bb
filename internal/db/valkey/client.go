package valkey

import (
	"fmt"
	"sync"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/agenda/internal/db"
	"github.com/kailas-cloud/agenda/internal/db/redis"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Valkey store.
type Config = redis.Config

// Store implements db.Store for Valkey. Record, counter and connectivity commands
// are shared with the Redis store. valkey-search only answers FT.SEARCH for
// KNN queries, so listings run as SCAN + HGETALL with filters evaluated in
// process against the schema recorded by CreateIndex.
type Store struct {
	*redis.Store

	mu      sync.RWMutex
	indexes map[string]*db.IndexDefinition
}

// NewStore creates a Valkey store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	rs, err := redis.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("valkey: %w", err)
	}
	return wrap(rs), nil
}

func wrap(rs *redis.Store) *Store {
	return &Store{
		Store:   rs,
		indexes: make(map[string]*db.IndexDefinition),
	}
}

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return wrap(redis.NewStoreForTest(c))
}
