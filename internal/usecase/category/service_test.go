package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
)

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

// --- Mocks ---

type mockRepo struct {
	cats    map[string]domcat.Category
	listErr error
	saves   int
}

func (m *mockRepo) Save(_ context.Context, c *domcat.Category) error {
	m.saves++
	m.cats[c.ID()] = *c
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (domcat.Category, error) {
	c, ok := m.cats[id]
	if !ok {
		return domcat.Category{}, domain.ErrNotFound
	}
	return c, nil
}

func (m *mockRepo) List(_ context.Context, ownerID string) ([]domcat.Category, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domcat.Category{}
	for _, c := range m.cats {
		if c.OwnerID() == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	delete(m.cats, id)
	return nil
}

func newTestService(cats ...domcat.Category) (*Service, *mockRepo) {
	repo := &mockRepo{cats: map[string]domcat.Category{}}
	for _, c := range cats {
		repo.cats[c.ID()] = c
	}
	svc := New(repo).
		WithClock(func() time.Time { return testNow }).
		WithIDs(func() string { return "cat-new" })
	return svc, repo
}

func plumbers(owner string) domcat.Category {
	return domcat.Reconstruct("cat-1", owner, "Plumbers", "plumbers", "", "#336699", testNow.Add(-time.Hour), testNow.Add(-time.Hour))
}

// --- Tests ---

func TestCreate(t *testing.T) {
	svc, repo := newTestService()

	c, err := svc.Create(context.Background(), "user-1", CreateInput{Name: "Eletricistas São Paulo", Color: "#ff8800"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID() != "cat-new" || c.Slug() != "eletricistas-sao-paulo" || c.OwnerID() != "user-1" {
		t.Errorf("category = %s %s %s", c.ID(), c.Slug(), c.OwnerID())
	}
	if repo.saves != 1 {
		t.Errorf("saves = %d", repo.saves)
	}
}

func TestCreate_Errors(t *testing.T) {
	svc, _ := newTestService(plumbers("user-1"))
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user-1", CreateInput{Name: "Plumbers"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate slug: %v", err)
	}
	if _, err := svc.Create(ctx, "user-2", CreateInput{Name: "Plumbers"}); err != nil {
		t.Errorf("slugs are per owner: %v", err)
	}
	if _, err := svc.Create(ctx, "user-1", CreateInput{Name: " "}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty name: %v", err)
	}
	if _, err := svc.Create(ctx, "user-1", CreateInput{Name: "X", Color: "red"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("bad color: %v", err)
	}
	if _, err := svc.Create(ctx, "", CreateInput{Name: "X"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous: %v", err)
	}
}

func TestCreate_ListError(t *testing.T) {
	svc, repo := newTestService()
	boom := errors.New("store down")
	repo.listErr = boom

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{Name: "X"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if repo.saves != 0 {
		t.Error("nothing must be saved")
	}
}

func TestUpdate(t *testing.T) {
	svc, repo := newTestService(plumbers("user-1"))

	c, err := svc.Update(context.Background(), "user-1", "cat-1", UpdateInput{Description: strPtr("24h service")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name() != "Plumbers" || c.Description() != "24h service" || c.Color() != "#336699" {
		t.Errorf("category = %q %q %q", c.Name(), c.Description(), c.Color())
	}
	if c.Slug() != "plumbers" {
		t.Error("slug must be stable")
	}
	stored := repo.cats["cat-1"]
	if !stored.UpdatedAt().Equal(testNow) {
		t.Error("updatedAt not stamped")
	}
}

func TestOwnership(t *testing.T) {
	svc, repo := newTestService(plumbers("user-1"))
	ctx := context.Background()

	if _, err := svc.Get(ctx, "user-2", "cat-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("get: %v", err)
	}
	if _, err := svc.Update(ctx, "user-2", "cat-1", UpdateInput{Name: strPtr("Mine")}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("update: %v", err)
	}
	if err := svc.Delete(ctx, "user-2", "cat-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("delete: %v", err)
	}
	if _, ok := repo.cats["cat-1"]; !ok {
		t.Error("category must survive")
	}
	if err := svc.Delete(ctx, "user-1", "cat-1"); err != nil {
		t.Errorf("owner delete: %v", err)
	}
	if err := svc.Delete(ctx, "user-1", "cat-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestList(t *testing.T) {
	svc, _ := newTestService(plumbers("user-1"))

	cats, err := svc.List(context.Background(), "user-1")
	if err != nil || len(cats) != 1 {
		t.Fatalf("list: %v %d", err, len(cats))
	}
	cats, err = svc.List(context.Background(), "user-3")
	if err != nil || cats == nil || len(cats) != 0 {
		t.Errorf("empty list: %v %v", err, cats)
	}
}

func strPtr(s string) *string { return &s }
