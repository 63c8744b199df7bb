package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/agenda/internal/db"
)

// scanCount is the COUNT hint of each SCAN step.
const scanCount = 100

// HSet writes fields into the hash at key.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Key: key, Err: err}
	}
	return nil
}

// HGetAll reads the hash at key. A missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Key: key, Err: err}
	}
	return m, nil
}

// HGetAllMulti reads several hashes in one round-trip, in the order of keys.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make(rueidis.Commands, 0, len(keys))
	for _, k := range keys {
		cmds = append(cmds, s.b().Hgetall().Key(k).Build())
	}

	out := make([]map[string]string, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Key: keys[i], Err: err}
		}
		out[i] = m
	}
	return out, nil
}

// HDel removes fields from the hash at key.
func (s *Store) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := s.do(ctx, s.b().Hdel().Key(key).Field(fields...).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHDel, Key: key, Err: err}
	}
	return nil
}

// Del removes key.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.do(ctx, s.b().Del().Key(key).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Key: key, Err: err}
	}
	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.do(ctx, s.b().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Key: key, Err: err}
	}
	return n > 0, nil
}

// Scan collects every key matching pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanCount).Build()
		entry, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Key: pattern, Err: err}
		}
		keys = append(keys, entry.Elements...)
		if cursor = entry.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
