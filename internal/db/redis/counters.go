package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/agenda/internal/db"
)

// SetNX stores value under key only when key is absent (SET NX PX) and
// reports whether it was stored.
func (s *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Nx().Px(ttl).Build()
	err := s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return true, nil
	case rueidis.IsRedisNil(err):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
}

// IncrBy adds val to the counter at key and returns the new value.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	n, err := s.do(ctx, s.b().Incrby().Key(key).Increment(val).Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncrBy, Key: key, Err: err}
	}
	return n, nil
}

// Expire sets the TTL of key. With nx the TTL is only set when key has none,
// which keeps a fixed window from sliding on every hit.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	secs := int64(ttl / time.Second)
	var cmd rueidis.Completed
	if nx {
		cmd = s.b().Expire().Key(key).Seconds(secs).Nx().Build()
	} else {
		cmd = s.b().Expire().Key(key).Seconds(secs).Build()
	}
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpExpire, Key: key, Err: err}
	}
	return nil
}
