package contact

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/kailas-cloud/agenda/internal/db"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	hdelFn        func(ctx context.Context, key string, fields ...string) error
	delFn         func(ctx context.Context, key string) error
	existsFn      func(ctx context.Context, key string) (bool, error)
	setNXFn       func(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchFn      func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HDel(ctx context.Context, key string, fields ...string) error {
	if m.hdelFn != nil {
		return m.hdelFn(ctx, key, fields...)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if m.setNXFn != nil {
		return m.setNXFn(ctx, key, value, ttl)
	}
	return true, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, ""), ms
}

func testContact(t *testing.T) domcontact.Contact {
	t.Helper()
	c, err := domcontact.New(domcontact.Params{
		ID:      "c-1",
		OwnerID: "u-1",
		Name:    "Maria Silva",
		Email:   "maria@example.com",
		Phone:   "(11) 98765-4321",
		Public:  true,
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("new contact: %v", err)
	}
	if err := c.SetSlug("maria-silva"); err != nil {
		t.Fatalf("set slug: %v", err)
	}
	loc, _ := geo.NewLocation(-23.5505, -46.6333)
	c.SetLocation(loc)
	return c
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
