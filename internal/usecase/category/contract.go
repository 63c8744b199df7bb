package category

import (
	"context"

	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
)

// Repository defines the storage contract for categories.
type Repository interface {
	Save(ctx context.Context, c *domcat.Category) error
	Get(ctx context.Context, id string) (domcat.Category, error)
	List(ctx context.Context, ownerID string) ([]domcat.Category, error)
	Delete(ctx context.Context, id string) error
}
