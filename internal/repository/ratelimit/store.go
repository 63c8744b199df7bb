package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// store is the consumer interface for rate limit counters (ISP).
type store interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store is a fixed-window request counter shared by every API replica
// (INCRBY + EXPIRE NX on {prefix}ratelimit:{client}:{window}).
type Store struct {
	store  store
	prefix string
	window time.Duration
	limit  int64
	now    func() time.Time
}

// New creates a counter allowing limit requests per client per window.
func New(s store, prefix string, window time.Duration, limit int64) *Store {
	return &Store{
		store:  s,
		prefix: prefix,
		window: window,
		limit:  limit,
		now:    time.Now,
	}
}

// WithClock overrides the time source (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Allow counts one request for client and reports whether it fits the window.
func (s *Store) Allow(ctx context.Context, client string) (bool, error) {
	key := s.windowKey(client)

	n, err := s.store.IncrBy(ctx, key, 1)
	if err != nil {
		return false, fmt.Errorf("ratelimit INCRBY %s: %w", key, err)
	}

	// Set TTL only if the key has no expiry yet (NX, not reset on repeat).
	if n == 1 {
		if err := s.store.Expire(ctx, key, s.window, true); err != nil {
			return false, fmt.Errorf("ratelimit EXPIRE %s: %w", key, err)
		}
	}

	return n <= s.limit, nil
}

func (s *Store) windowKey(client string) string {
	slot := s.now().UnixNano() / int64(s.window)
	return s.prefix + "ratelimit:" + client + ":" + strconv.FormatInt(slot, 10)
}
