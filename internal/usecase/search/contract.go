package search

import (
	"context"

	"github.com/kailas-cloud/agenda/internal/domain/search/query"
)

// Documents is the contact store the engine paginates over.
// Snapshot returns domain.ErrNotFound for an unknown id.
type Documents interface {
	Execute(ctx context.Context, q query.Query) ([]query.Snapshot, error)
	Snapshot(ctx context.Context, id string) (query.Snapshot, error)
}
