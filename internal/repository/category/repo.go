package category

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
)

// DefaultKeyPrefix namespaces every key the repository writes.
const DefaultKeyPrefix = "agenda:"

// store is the consumer interface for categories (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores categories as hashes: {prefix}categories:{id}.
type Repo struct {
	store  store
	prefix string
}

// New creates a category repository. An empty prefix selects DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Save creates or replaces a category.
func (r *Repo) Save(ctx context.Context, c *domcat.Category) error {
	key := r.key(c.ID())
	if err := r.store.HSet(ctx, key, categoryToHash(c)); err != nil {
		return fmt.Errorf("hset category %s: %w", c.ID(), err)
	}
	return nil
}

// Get retrieves a category by ID.
func (r *Repo) Get(ctx context.Context, id string) (domcat.Category, error) {
	m, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return domcat.Category{}, fmt.Errorf("hgetall category %s: %w", id, err)
	}
	if len(m) == 0 {
		return domcat.Category{}, domain.ErrNotFound
	}
	return categoryFromHash(m)
}

// List returns the owner's categories sorted by name.
func (r *Repo) List(ctx context.Context, ownerID string) ([]domcat.Category, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	if len(keys) == 0 {
		return []domcat.Category{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi categories: %w", err)
	}

	out := make([]domcat.Category, 0, len(results))
	for i, m := range results {
		if len(m) == 0 || m["userId"] != ownerID {
			continue
		}
		c, err := categoryFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse category %s: %w", keys[i], err)
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out, nil
}

// Delete removes a category.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del category %s: %w", id, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "categories:" + id
}
