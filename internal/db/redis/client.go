// Package redis implements db.Store on Redis 8 with the query engine, over rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/agenda/internal/db"
)

var _ db.Store = (*Store)(nil)

// readyPollInterval is how often WaitForReady pings.
const readyPollInterval = 100 * time.Millisecond

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store is a rueidis-backed db.Store.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the given addresses.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		// FT.SEARCH replies are parsed in their RESP2 array shape.
		AlwaysRESP2: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the connections.
func (s *Store) Close() { s.client.Close() }

// WaitForReady pings until the server answers or timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(readyPollInterval)
	defer tick.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready after %s: %w", timeout, ctx.Err())
		case <-tick.C:
		}
	}
}

func (s *Store) b() rueidis.Builder { return s.client.B() }

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

// serverErrorContains reports whether err is a server reply mentioning msg.
func serverErrorContains(err error, msg string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(msg))
}
