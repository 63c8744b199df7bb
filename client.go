// Package agenda searches the public contact directory in process, against
// the same Redis or Valkey keyspace the agenda API server writes.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/kailas-cloud/agenda/internal/db/redis"
	dbValkey "github.com/kailas-cloud/agenda/internal/db/valkey"
	contactrepo "github.com/kailas-cloud/agenda/internal/repository/contact"
	searchuc "github.com/kailas-cloud/agenda/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// store is what the client needs from a database connection.
type store interface {
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// Client is the agenda library entry point.
type Client struct {
	store  store
	search *searchuc.Service
}

// New creates a Client, connects to the database and makes sure the contact
// index is registered.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{readiness: defaultReadinessTimeout}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("agenda: database address required (use WithValkey or WithRedis)")
	}

	s, repo, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := s.WaitForReady(ctx, cfg.readiness); err != nil {
		s.Close()
		return nil, fmt.Errorf("agenda: database not ready: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("agenda: %w", err)
	}

	c := newClient(repo, cfg)
	c.store = s
	return c, nil
}

func createStore(cfg *clientConfig) (store, *contactrepo.Repo, error) {
	conn := dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password}
	switch cfg.driver {
	case "valkey":
		s, err := dbValkey.NewStore(conn)
		if err != nil {
			return nil, nil, fmt.Errorf("agenda: create valkey store: %w", err)
		}
		return s, contactrepo.New(s, cfg.keyPrefix), nil
	case "redis":
		s, err := dbRedis.NewStore(conn)
		if err != nil {
			return nil, nil, fmt.Errorf("agenda: create redis store: %w", err)
		}
		return s, contactrepo.New(s, cfg.keyPrefix), nil
	default:
		return nil, nil, fmt.Errorf("agenda: unknown driver %q", cfg.driver)
	}
}

func newClient(docs searchuc.Documents, cfg *clientConfig) *Client {
	svc := searchuc.New(docs).WithLogger(cfg.logger)
	if cfg.overfetch > 0 {
		svc = svc.WithOverfetch(cfg.overfetch)
	}
	svc = svc.WithPagination(cfg.defaultPageSize, cfg.maxPageSize)
	return &Client{search: svc}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errors.New("agenda: client is not connected")
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
