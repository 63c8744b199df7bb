package redis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/agenda/internal/db"
)

const unknownIndexReply = "unknown index name"

// CreateIndex runs FT.CREATE for def.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := def.CreateArgs()
	if err != nil {
		return fmt.Errorf("invalid index: %w", err)
	}
	if err := s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error(); err != nil {
		if serverErrorContains(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Key: def.Name, Err: err}
	}
	return nil
}

// IndexExists probes name with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case serverErrorContains(err, unknownIndexReply):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Key: name, Err: err}
	}
}
