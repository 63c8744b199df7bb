package contact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/event"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
	"github.com/kailas-cloud/agenda/internal/usecase/search"
)

func TestCreate_Private(t *testing.T) {
	repo := newMemRepo()
	events := &mockEvents{}
	svc := newTestService(repo, nil).WithEvents(events)

	c, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name: "  Maria Silva ", Email: "Maria@Example.com", Phone: "(11) 98765-4321",
		Lat: fPtr(-23.55), Lon: fPtr(-46.63), Notes: "plumber", Favorite: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID() != "c-000001" || c.OwnerID() != "user-1" {
		t.Errorf("id/owner = %s/%s", c.ID(), c.OwnerID())
	}
	if c.Name() != "Maria Silva" || c.Email() != "maria@example.com" || c.Phone() != "11987654321" {
		t.Errorf("normalized = %q %q %q", c.Name(), c.Email(), c.Phone())
	}
	if c.Slug() != "" || c.IsPublic() {
		t.Error("private contact must not get a slug")
	}
	if _, ok := c.Location(); !ok || !c.IsFavorite() {
		t.Error("location and favorite must be set")
	}
	if !c.CreatedAt().Equal(testNow) {
		t.Errorf("createdAt = %v", c.CreatedAt())
	}
	if _, ok := repo.contacts[c.ID()]; !ok {
		t.Error("contact not saved")
	}
	if len(events.events) != 1 || events.events[0].Type != event.ContactCreated || events.events[0].ContactID != c.ID() {
		t.Errorf("events = %+v", events.events)
	}
}

func TestCreate_PublicDefaultSlug(t *testing.T) {
	svc := newTestService(newMemRepo(), nil)

	c, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name: "João Souza", Email: "joao@example.com", Public: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Slug() != "joao-souza-000001" {
		t.Errorf("slug = %q", c.Slug())
	}
}

func TestCreate_ExplicitSlugCollision(t *testing.T) {
	repo := newMemRepo(
		existing("other-1", "user-2", "Maria", "m1@example.com", true, "maria"),
		existing("other-2", "user-2", "Maria", "m2@example.com", true, "maria-2"),
	)
	svc := newTestService(repo, nil)

	c, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name: "Maria", Email: "maria@example.com", Public: true, Slug: "Maria",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Slug() != "maria-3" {
		t.Errorf("slug = %q, want maria-3", c.Slug())
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := newMemRepo(existing("c-old", "user-1", "Ana", "ana@example.com", false, ""))
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), "user-1", CreateInput{Name: "Ana B", Email: "ANA@example.com"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if repo.saves != 0 {
		t.Error("nothing must be saved")
	}

	if _, err := svc.Create(context.Background(), "user-2", CreateInput{Name: "Ana", Email: "ana@example.com"}); err != nil {
		t.Errorf("another owner may reuse the email: %v", err)
	}
}

func TestCreate_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		owner string
		in    CreateInput
		want  error
	}{
		{"no owner", "", CreateInput{Name: "A", Email: "a@example.com"}, domain.ErrUnauthorized},
		{"no name", "user-1", CreateInput{Email: "a@example.com"}, domain.ErrInvalidArgument},
		{"bad email", "user-1", CreateInput{Name: "A", Email: "nope"}, domain.ErrInvalidArgument},
		{"lat only", "user-1", CreateInput{Name: "A", Email: "a@example.com", Lat: fPtr(1)}, domain.ErrInvalidArgument},
		{"lat out of range", "user-1", CreateInput{Name: "A", Email: "a@example.com", Lat: fPtr(95), Lon: fPtr(1)}, domain.ErrInvalidArgument},
		{"slug on private", "user-1", CreateInput{Name: "A", Email: "a@example.com", Slug: "a"}, domain.ErrInvalidArgument},
		{"bad zip", "user-1", CreateInput{Name: "A", Email: "a@example.com", Address: &domcontact.AddressParams{
			Street: "Rua A", Number: "1", City: "São Paulo", State: "SP", ZipCode: "123",
		}}, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			_, err := newTestService(repo, nil).Create(context.Background(), tt.owner, tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if repo.saves != 0 {
				t.Error("nothing must be saved")
			}
		})
	}
}

func TestCreate_Category(t *testing.T) {
	cats := map[string]domcat.Category{
		"mine":   domcat.Reconstruct("mine", "user-1", "Plumbers", "plumbers", "", "", testNow, testNow),
		"theirs": domcat.Reconstruct("theirs", "user-2", "Painters", "painters", "", "", testNow, testNow),
	}
	svc := newTestService(newMemRepo(), cats)
	ctx := context.Background()

	c, err := svc.Create(ctx, "user-1", CreateInput{Name: "A", Email: "a@example.com", CategoryID: "mine"})
	if err != nil || c.CategoryID() != "mine" {
		t.Fatalf("own category: %v %q", err, c.CategoryID())
	}
	if _, err := svc.Create(ctx, "user-1", CreateInput{Name: "B", Email: "b@example.com", CategoryID: "theirs"}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("foreign category: %v", err)
	}
	if _, err := svc.Create(ctx, "user-1", CreateInput{Name: "C", Email: "c@example.com", CategoryID: "ghost"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("unknown category: %v", err)
	}
}

func TestCreate_EventFailureDoesNotFailWrite(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, nil).WithEvents(&mockEvents{err: errors.New("broker down")})

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.contacts) != 1 {
		t.Error("contact must be saved")
	}
}

func TestCreate_SaveError(t *testing.T) {
	boom := errors.New("store down")
	repo := newMemRepo()
	repo.saveFn = func(*domcontact.Contact) error { return boom }
	events := &mockEvents{}

	_, err := newTestService(repo, nil).WithEvents(events).Create(context.Background(), "user-1", CreateInput{Name: "A", Email: "a@example.com"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if len(events.events) != 0 {
		t.Error("no event after a failed write")
	}
}

func TestUpdate(t *testing.T) {
	repo := newMemRepo(existing("c-1", "user-1", "Maria", "maria@example.com", false, ""))
	events := &mockEvents{}
	svc := newTestService(repo, nil).WithEvents(events)

	c, err := svc.Update(context.Background(), "user-1", "c-1", UpdateInput{
		Name: strPtr("Maria Clara"), Notes: strPtr("night shifts"), Favorite: boolPtr(true),
		Lat: fPtr(-22.9), Lon: fPtr(-43.2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name() != "Maria Clara" || c.Email() != "maria@example.com" {
		t.Errorf("basic info = %q %q", c.Name(), c.Email())
	}
	if c.Notes() != "night shifts" || !c.IsFavorite() {
		t.Error("notes/favorite not applied")
	}
	if loc, ok := c.Location(); !ok || !loc.Equal(geo.ReconstructLocation(-22.9, -43.2)) {
		t.Errorf("location = %v", loc)
	}
	if !c.UpdatedAt().Equal(testNow) {
		t.Errorf("updatedAt = %v, want %v", c.UpdatedAt(), testNow)
	}
	if len(events.events) != 1 || events.events[0].Type != event.ContactUpdated {
		t.Errorf("events = %+v", events.events)
	}
}

func TestUpdate_Visibility(t *testing.T) {
	repo := newMemRepo(existing("c-1", "user-1", "Maria Silva", "maria@example.com", false, ""))
	svc := newTestService(repo, nil)
	ctx := context.Background()

	c, err := svc.Update(ctx, "user-1", "c-1", UpdateInput{Public: boolPtr(true)})
	if err != nil {
		t.Fatalf("make public: %v", err)
	}
	if c.Slug() != "maria-silva-c-1" {
		t.Errorf("slug = %q", c.Slug())
	}

	c, err = svc.Update(ctx, "user-1", "c-1", UpdateInput{Slug: strPtr("maria-encanadora")})
	if err != nil || c.Slug() != "maria-encanadora" {
		t.Fatalf("rename slug: %v %q", err, c.Slug())
	}

	c, err = svc.Update(ctx, "user-1", "c-1", UpdateInput{Public: boolPtr(false)})
	if err != nil {
		t.Fatalf("make private: %v", err)
	}
	if c.IsPublic() || c.Slug() != "" {
		t.Errorf("private contact kept slug %q", c.Slug())
	}

	if _, err := svc.Update(ctx, "user-1", "c-1", UpdateInput{Slug: strPtr("x")}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("slug on private: %v", err)
	}
}

func TestUpdate_Errors(t *testing.T) {
	repo := newMemRepo(
		existing("c-1", "user-1", "Maria", "maria@example.com", false, ""),
		existing("c-2", "user-1", "Ana", "ana@example.com", false, ""),
	)
	svc := newTestService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Update(ctx, "user-2", "c-1", UpdateInput{Name: strPtr("X")}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("foreign contact: %v", err)
	}
	if _, err := svc.Update(ctx, "user-1", "missing", UpdateInput{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing contact: %v", err)
	}
	if _, err := svc.Update(ctx, "user-1", "c-1", UpdateInput{Email: strPtr("ana@example.com")}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("duplicate email: %v", err)
	}
	if repo.saves != 0 {
		t.Errorf("saves = %d, want 0", repo.saves)
	}
}

func TestDelete_CascadesPhoto(t *testing.T) {
	c := existing("c-1", "user-1", "Maria", "maria@example.com", false, "")
	c.SetPhotoURL("https://res.cloudinary.com/demo/image/upload/v1/agenda/c-1.jpg")
	repo := newMemRepo(c)
	photos := &mockPhotos{deleteErr: errors.New("cdn down")}
	events := &mockEvents{}
	svc := newTestService(repo, nil).WithPhotos(photos).WithEvents(events)

	if err := svc.Delete(context.Background(), "user-1", "c-1"); err != nil {
		t.Fatalf("photo failure must not fail the delete: %v", err)
	}
	if _, ok := repo.contacts["c-1"]; ok {
		t.Error("contact not deleted")
	}
	if len(photos.deleted) != 1 {
		t.Errorf("photo deletes = %v", photos.deleted)
	}
	if len(events.events) != 1 || events.events[0].Type != event.ContactDeleted {
		t.Errorf("events = %+v", events.events)
	}
}

func TestDelete_Forbidden(t *testing.T) {
	repo := newMemRepo(existing("c-1", "user-1", "Maria", "maria@example.com", false, ""))
	if err := newTestService(repo, nil).Delete(context.Background(), "user-2", "c-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, ok := repo.contacts["c-1"]; !ok {
		t.Error("contact must survive")
	}
}

func TestGetPublicBySlug(t *testing.T) {
	repo := newMemRepo(
		existing("c-1", "user-1", "Maria", "maria@example.com", true, "maria"),
		existing("c-2", "user-1", "Ana", "ana@example.com", false, "ana"),
	)
	svc := newTestService(repo, nil)
	ctx := context.Background()

	c, err := svc.GetPublicBySlug(ctx, "maria")
	if err != nil || c.ID() != "c-1" {
		t.Fatalf("public slug: %v %q", err, c.ID())
	}
	for _, slug := range []string{"ana", "Not A Slug", ""} {
		if _, err := svc.GetPublicBySlug(ctx, slug); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("%q: expected ErrNotFound, got %v", slug, err)
		}
	}
}

func TestGet_Ownership(t *testing.T) {
	repo := newMemRepo(existing("c-1", "user-1", "Maria", "maria@example.com", true, "maria"))
	svc := newTestService(repo, nil)

	if _, err := svc.Get(context.Background(), "user-1", "c-1"); err != nil {
		t.Errorf("owner: %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-2", "c-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger: %v", err)
	}
	if _, err := svc.Get(context.Background(), "", "c-1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous: %v", err)
	}
}

func TestPhotos(t *testing.T) {
	repo := newMemRepo(existing("c-1", "user-1", "Maria", "maria@example.com", false, ""))
	photos := &mockPhotos{}
	svc := newTestService(repo, nil).WithPhotos(photos)
	ctx := context.Background()

	c, err := svc.UploadPhoto(ctx, "user-1", "c-1", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasSuffix(c.PhotoURL(), "/agenda/c-1.jpg") || photos.uploaded != "jpeg-bytes" {
		t.Errorf("photo url = %q, uploaded %q", c.PhotoURL(), photos.uploaded)
	}
	stored := repo.contacts["c-1"]
	if stored.PhotoURL() == "" {
		t.Error("photo url not persisted")
	}

	c, err = svc.RemovePhoto(ctx, "user-1", "c-1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if c.PhotoURL() != "" || len(photos.deleted) != 1 {
		t.Errorf("after removal url = %q, deletes %v", c.PhotoURL(), photos.deleted)
	}

	saves := repo.saves
	if _, err := svc.RemovePhoto(ctx, "user-1", "c-1"); err != nil || repo.saves != saves {
		t.Errorf("removing a missing photo is a no-op: %v", err)
	}
}

func TestPhotos_NotConfigured(t *testing.T) {
	repo := newMemRepo(existing("c-1", "user-1", "Maria", "maria@example.com", false, ""))
	svc := newTestService(repo, nil)

	if _, err := svc.UploadPhoto(context.Background(), "user-1", "c-1", strings.NewReader("x")); !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("upload: %v", err)
	}
	if _, err := svc.RemovePhoto(context.Background(), "user-1", "c-1"); !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("remove: %v", err)
	}
}

func TestUniqueSlug(t *testing.T) {
	repo := newMemRepo()
	var checked []string
	repo.existsSlugFn = func(slug, _ string) (bool, error) {
		checked = append(checked, slug)
		return !strings.HasSuffix(slug, "-zz9k2q"), nil
	}
	svc := newTestService(repo, nil)
	svc.randomSuffix = func() string { return "zz9k2q" }

	got, err := svc.UniqueSlug(context.Background(), "maria", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "maria-zz9k2q" {
		t.Errorf("slug = %q", got)
	}
	if checked[0] != "maria" || checked[1] != "maria-2" || checked[98] != "maria-99" {
		t.Errorf("numbered candidates out of order: %v", checked[:3])
	}
}

func TestUniqueSlug_Exhausted(t *testing.T) {
	repo := newMemRepo()
	repo.existsSlugFn = func(string, string) (bool, error) { return true, nil }

	_, err := newTestService(repo, nil).UniqueSlug(context.Background(), "maria", "")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestWithSuffix_FitsLimit(t *testing.T) {
	base := strings.Repeat("a", domcontact.MaxSlugLength)
	got := withSuffix(base, "42")
	if len(got) > domcontact.MaxSlugLength || !strings.HasSuffix(got, "-42") {
		t.Errorf("withSuffix = %q (%d)", got, len(got))
	}
}

func TestProximity(t *testing.T) {
	near := existing("near", "user-1", "Near", "near@example.com", false, "")
	near.SetLocation(geo.ReconstructLocation(0, 0.01))
	far := existing("far", "user-1", "Far", "far@example.com", false, "")
	far.SetLocation(geo.ReconstructLocation(0, 2))
	nowhere := existing("nowhere", "user-1", "Nowhere", "nowhere@example.com", false, "")

	var cursors []string
	lister := &mockLister{listFn: func(owner string, p search.Params) (search.Page, error) {
		if owner != "user-1" || p.Limit != proximityPageSize {
			t.Errorf("list(%s, %d)", owner, p.Limit)
		}
		cursors = append(cursors, p.Cursor)
		if p.Cursor == "" {
			return search.Page{Contacts: []search.Hit{{Contact: near}, {Contact: far}}, NextCursor: "far"}, nil
		}
		return search.Page{Contacts: []search.Hit{{Contact: nowhere}}}, nil
	}}
	svc := New(newMemRepo(), &mockCats{}, lister)

	groups, err := svc.Proximity(context.Background(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cursors) != 2 || cursors[1] != "far" {
		t.Errorf("cursors = %v", cursors)
	}
	if len(groups[geo.BucketNearby]) != 1 || groups[geo.BucketNearby][0].ID() != "near" {
		t.Errorf("nearby = %v", groups[geo.BucketNearby])
	}
	if len(groups[geo.BucketFar]) != 1 || len(groups[geo.BucketNoLocation]) != 1 {
		t.Errorf("far = %d, no location = %d", len(groups[geo.BucketFar]), len(groups[geo.BucketNoLocation]))
	}

	if _, err := svc.Proximity(context.Background(), "user-1", 91, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("invalid centre: %v", err)
	}
}
