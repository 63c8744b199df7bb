package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/agenda/internal/db"
	"github.com/kailas-cloud/agenda/internal/domain"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/search/filter"
	"github.com/kailas-cloud/agenda/internal/domain/search/query"
)

const (
	// maxCreatedAtAttempts bounds the 1µs bumps when reserving a createdAt.
	maxCreatedAtAttempts = 1000
	// createdAtReservationTTL only needs to outlive concurrent creates; older
	// holders are found through the index.
	createdAtReservationTTL = time.Minute
)

// store is the consumer interface for contacts (ISP).
//
//nolint:interfacebloat // contact repo needs hash, reservation, index and search operations
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Repo stores contacts as hashes and answers queries through the FT index.
type Repo struct {
	store store
	keys  keys
}

// New creates a contact repository. An empty prefix selects DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, keys: keys{prefix: prefix}}
}

// EnsureSchema creates the contact index when it does not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	def := buildIndex(r.keys)
	exists, err := r.store.IndexExists(ctx, def.Name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", def.Name, err)
	}
	if exists {
		return nil
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Save writes c. On first write the creation time is reserved so no two
// contacts share a createdAt; c is updated when the reservation moved it.
func (r *Repo) Save(ctx context.Context, c *domcontact.Contact) error {
	key := r.keys.contact(c.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		if err := r.reserveCreatedAt(ctx, c); err != nil {
			return err
		}
	}

	fields := domcontact.ToFields(c)
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if exists {
		if err := r.store.HDel(ctx, key, staleFields(fields)...); err != nil {
			return fmt.Errorf("hdel %s: %w", key, err)
		}
	}
	return nil
}

// reserveCreatedAt claims a createdAt microsecond no other contact holds.
// SET NX arbitrates concurrent creates; the index check catches contacts
// saved before the reservation expired, e.g. imports with past timestamps.
func (r *Repo) reserveCreatedAt(ctx context.Context, c *domcontact.Contact) error {
	t := c.CreatedAt()
	for range maxCreatedAtAttempts {
		ok, err := r.store.SetNX(ctx, r.keys.createdAt(t.UnixMicro()), []byte(c.ID()), createdAtReservationTTL)
		if err != nil {
			return fmt.Errorf("reserve createdAt: %w", err)
		}
		if ok {
			held, err := r.createdAtHeld(ctx, t.UnixMicro(), c.ID())
			if err != nil {
				return fmt.Errorf("reserve createdAt: %w", err)
			}
			if held {
				t = t.Add(time.Microsecond)
				continue
			}
			if !t.Equal(c.CreatedAt()) {
				st := c.State()
				st.CreatedAt = t
				*c = domcontact.Reconstruct(st)
			}
			return nil
		}
		t = t.Add(time.Microsecond)
	}
	return fmt.Errorf("reserve createdAt for %s: exhausted %d slots", c.ID(), maxCreatedAtAttempts)
}

// createdAtHeld reports whether a stored contact other than id was created at micros.
func (r *Repo) createdAtHeld(ctx context.Context, micros int64, id string) (bool, error) {
	v := float64(micros)
	q := query.New().WhereRange(domcontact.FieldCreatedAt, filter.Between(v, v)).Limit(2)
	return r.existsOther(ctx, q, id)
}

// Get returns a contact by ID.
func (r *Repo) Get(ctx context.Context, id string) (domcontact.Contact, error) {
	m, err := r.load(ctx, id)
	if err != nil {
		return domcontact.Contact{}, err
	}
	return domcontact.FromFields(id, m)
}

// GetBySlug returns the public contact published under slug.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (domcontact.Contact, error) {
	q := query.New().
		WhereEquals(domcontact.FieldPublic, "true").
		WhereEquals(domcontact.FieldSlug, slug).
		Limit(1)
	snaps, err := r.Execute(ctx, q)
	if err != nil {
		return domcontact.Contact{}, err
	}
	if len(snaps) == 0 {
		return domcontact.Contact{}, domain.ErrNotFound
	}
	return domcontact.FromFields(snaps[0].ID, snaps[0].Fields)
}

// Delete removes a contact.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.keys.contact(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// ExistsSlug reports whether another contact than excludeID holds slug.
func (r *Repo) ExistsSlug(ctx context.Context, slug, excludeID string) (bool, error) {
	q := query.New().WhereEquals(domcontact.FieldSlug, slug).Limit(2)
	return r.existsOther(ctx, q, excludeID)
}

// ExistsEmail reports whether ownerID has another contact than excludeID with email.
func (r *Repo) ExistsEmail(ctx context.Context, ownerID, email, excludeID string) (bool, error) {
	q := query.New().
		WhereEquals(domcontact.FieldOwnerID, ownerID).
		WhereEquals(domcontact.FieldEmail, email).
		Limit(2)
	return r.existsOther(ctx, q, excludeID)
}

func (r *Repo) existsOther(ctx context.Context, q query.Query, excludeID string) (bool, error) {
	snaps, err := r.Execute(ctx, q)
	if err != nil {
		return false, err
	}
	for _, s := range snaps {
		if s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// Execute runs q against the contact index. Results follow the query order;
// a StartAfter cursor becomes an exclusive bound on the order field, which is
// exact because createdAt is unique per contact.
func (r *Repo) Execute(ctx context.Context, q query.Query) ([]query.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	conds := q.Conditions()
	if after := q.After(); after != nil {
		bound := filter.Below(after.Value)
		if q.Direction() == query.Asc {
			bound = filter.Above(after.Value)
		}
		c, err := filter.NewRange(q.OrderField(), bound)
		if err != nil {
			return nil, fmt.Errorf("cursor bound: %w", err)
		}
		conds = append(append([]filter.Condition(nil), conds...), c)
	}
	expr, err := filter.NewExpression(conds, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	res, err := r.store.Search(ctx, &db.SearchQuery{
		IndexName: r.keys.index(),
		Filters:   expr,
		SortBy:    q.OrderField(),
		SortDesc:  q.Direction() == query.Desc,
		Limit:     q.PageSize(),
	})
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}

	prefix := r.keys.contactPrefix()
	snaps := make([]query.Snapshot, 0, len(res.Entries))
	for _, e := range res.Entries {
		id := strings.TrimPrefix(e.Key, prefix)
		snap, err := snapshotFromHash(id, e.Fields, q.OrderField())
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Snapshot returns the document with id positioned in createdAt order.
func (r *Repo) Snapshot(ctx context.Context, id string) (query.Snapshot, error) {
	m, err := r.load(ctx, id)
	if err != nil {
		return query.Snapshot{}, err
	}
	return snapshotFromHash(id, m, domcontact.FieldCreatedAt)
}

func (r *Repo) load(ctx context.Context, id string) (map[string]string, error) {
	key := r.keys.contact(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return nil, domain.ErrNotFound
	}
	return m, nil
}
