package contact

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/event"
	"github.com/kailas-cloud/agenda/internal/usecase/search"
)

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

// --- Mocks ---

// memRepo keeps contacts in memory; the fn fields override single calls.
type memRepo struct {
	contacts map[string]domcontact.Contact
	saves    int

	saveFn       func(c *domcontact.Contact) error
	existsSlugFn func(slug, excludeID string) (bool, error)
}

func newMemRepo(cs ...domcontact.Contact) *memRepo {
	r := &memRepo{contacts: map[string]domcontact.Contact{}}
	for _, c := range cs {
		r.contacts[c.ID()] = c
	}
	return r
}

func (r *memRepo) Save(_ context.Context, c *domcontact.Contact) error {
	r.saves++
	if r.saveFn != nil {
		return r.saveFn(c)
	}
	r.contacts[c.ID()] = *c
	return nil
}

func (r *memRepo) Get(_ context.Context, id string) (domcontact.Contact, error) {
	c, ok := r.contacts[id]
	if !ok {
		return domcontact.Contact{}, domain.ErrNotFound
	}
	return c, nil
}

func (r *memRepo) GetBySlug(_ context.Context, slug string) (domcontact.Contact, error) {
	for _, c := range r.contacts {
		if c.IsPublic() && c.Slug() == slug {
			return c, nil
		}
	}
	return domcontact.Contact{}, domain.ErrNotFound
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.contacts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.contacts, id)
	return nil
}

func (r *memRepo) ExistsSlug(_ context.Context, slug, excludeID string) (bool, error) {
	if r.existsSlugFn != nil {
		return r.existsSlugFn(slug, excludeID)
	}
	for id, c := range r.contacts {
		if id != excludeID && c.Slug() == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ExistsEmail(_ context.Context, ownerID, email, excludeID string) (bool, error) {
	for id, c := range r.contacts {
		if id != excludeID && c.OwnerID() == ownerID && c.Email() == email {
			return true, nil
		}
	}
	return false, nil
}

type mockCats struct {
	cats map[string]domcat.Category
}

func (m *mockCats) Get(_ context.Context, id string) (domcat.Category, error) {
	c, ok := m.cats[id]
	if !ok {
		return domcat.Category{}, domain.ErrNotFound
	}
	return c, nil
}

type mockLister struct {
	listFn func(ownerID string, p search.Params) (search.Page, error)
}

func (m *mockLister) ListOwned(_ context.Context, ownerID string, p search.Params) (search.Page, error) {
	return m.listFn(ownerID, p)
}

type mockPhotos struct {
	uploaded  string
	deleted   []string
	deleteErr error
}

func (m *mockPhotos) Upload(_ context.Context, contactID string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	m.uploaded = string(b)
	return "https://res.cloudinary.com/demo/image/upload/v1/agenda/" + contactID + ".jpg", nil
}

func (m *mockPhotos) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return m.deleteErr
}

type mockEvents struct {
	events []event.Event
	err    error
}

func (m *mockEvents) Publish(_ context.Context, e event.Event) error {
	m.events = append(m.events, e)
	return m.err
}

// --- Helpers ---

func newTestService(repo *memRepo, cats map[string]domcat.Category) *Service {
	n := 0
	return New(repo, &mockCats{cats: cats}, &mockLister{}).
		WithClock(func() time.Time { return testNow }).
		WithIDs(func() string {
			n++
			return fmt.Sprintf("c-%06d", n)
		})
}

func existing(id, owner, name, email string, public bool, slug string) domcontact.Contact {
	return domcontact.Reconstruct(domcontact.State{
		ID: id, OwnerID: owner, Name: name, Email: email, Public: public, Slug: slug,
		CreatedAt: testNow.Add(-time.Hour), UpdatedAt: testNow.Add(-time.Hour),
	})
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }
func fPtr(f float64) *float64 { return &f }
