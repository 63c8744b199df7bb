package chi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
	categoryuc "github.com/kailas-cloud/agenda/internal/usecase/category"
	contactuc "github.com/kailas-cloud/agenda/internal/usecase/contact"
	healthuc "github.com/kailas-cloud/agenda/internal/usecase/health"
	searchuc "github.com/kailas-cloud/agenda/internal/usecase/search"
)

const (
	testSecret = "test-secret"
	testIssuer = "https://auth.example.com"
	testOwner  = "user-1"
)

var testNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

// --- Mock Searcher ---

type mockSearcher struct {
	publicFn func(ctx context.Context, p searchuc.Params) (searchuc.Page, error)
	nearbyFn func(ctx context.Context, p searchuc.Params) (searchuc.Page, error)
	ownedFn  func(ctx context.Context, ownerID string, p searchuc.Params) (searchuc.Page, error)
}

func (m *mockSearcher) SearchPublic(ctx context.Context, p searchuc.Params) (searchuc.Page, error) {
	if m.publicFn != nil {
		return m.publicFn(ctx, p)
	}
	return searchuc.Page{}, nil
}

func (m *mockSearcher) Nearby(ctx context.Context, p searchuc.Params) (searchuc.Page, error) {
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, p)
	}
	return searchuc.Page{}, nil
}

func (m *mockSearcher) ListOwned(ctx context.Context, ownerID string, p searchuc.Params) (searchuc.Page, error) {
	if m.ownedFn != nil {
		return m.ownedFn(ctx, ownerID, p)
	}
	return searchuc.Page{}, nil
}

func (m *mockSearcher) DefaultPageSize() int { return 20 }

// --- Mock Contacts ---

type mockContacts struct {
	createFn    func(ctx context.Context, ownerID string, in contactuc.CreateInput) (domcontact.Contact, error)
	updateFn    func(ctx context.Context, ownerID, id string, in contactuc.UpdateInput) (domcontact.Contact, error)
	deleteFn    func(ctx context.Context, ownerID, id string) error
	getFn       func(ctx context.Context, ownerID, id string) (domcontact.Contact, error)
	bySlugFn    func(ctx context.Context, slug string) (domcontact.Contact, error)
	uploadFn    func(ctx context.Context, ownerID, id string, r io.Reader) (domcontact.Contact, error)
	removeFn    func(ctx context.Context, ownerID, id string) (domcontact.Contact, error)
	proximityFn func(ctx context.Context, ownerID string, lat, lon float64) (map[geo.ProximityBucket][]domcontact.Contact, error)
}

func (m *mockContacts) Create(ctx context.Context, ownerID string, in contactuc.CreateInput) (domcontact.Contact, error) {
	return m.createFn(ctx, ownerID, in)
}

func (m *mockContacts) Update(ctx context.Context, ownerID, id string, in contactuc.UpdateInput) (domcontact.Contact, error) {
	return m.updateFn(ctx, ownerID, id, in)
}

func (m *mockContacts) Delete(ctx context.Context, ownerID, id string) error {
	return m.deleteFn(ctx, ownerID, id)
}

func (m *mockContacts) Get(ctx context.Context, ownerID, id string) (domcontact.Contact, error) {
	return m.getFn(ctx, ownerID, id)
}

func (m *mockContacts) GetPublicBySlug(ctx context.Context, slug string) (domcontact.Contact, error) {
	return m.bySlugFn(ctx, slug)
}

func (m *mockContacts) UploadPhoto(ctx context.Context, ownerID, id string, r io.Reader) (domcontact.Contact, error) {
	return m.uploadFn(ctx, ownerID, id, r)
}

func (m *mockContacts) RemovePhoto(ctx context.Context, ownerID, id string) (domcontact.Contact, error) {
	return m.removeFn(ctx, ownerID, id)
}

func (m *mockContacts) Proximity(
	ctx context.Context, ownerID string, lat, lon float64,
) (map[geo.ProximityBucket][]domcontact.Contact, error) {
	return m.proximityFn(ctx, ownerID, lat, lon)
}

// --- Mock Categories ---

type mockCategories struct {
	createFn func(ctx context.Context, ownerID string, in categoryuc.CreateInput) (domcat.Category, error)
	listFn   func(ctx context.Context, ownerID string) ([]domcat.Category, error)
	updateFn func(ctx context.Context, ownerID, id string, in categoryuc.UpdateInput) (domcat.Category, error)
	deleteFn func(ctx context.Context, ownerID, id string) error
}

func (m *mockCategories) Create(ctx context.Context, ownerID string, in categoryuc.CreateInput) (domcat.Category, error) {
	return m.createFn(ctx, ownerID, in)
}

func (m *mockCategories) List(ctx context.Context, ownerID string) ([]domcat.Category, error) {
	return m.listFn(ctx, ownerID)
}

func (m *mockCategories) Update(
	ctx context.Context, ownerID, id string, in categoryuc.UpdateInput,
) (domcat.Category, error) {
	return m.updateFn(ctx, ownerID, id, in)
}

func (m *mockCategories) Delete(ctx context.Context, ownerID, id string) error {
	return m.deleteFn(ctx, ownerID, id)
}

// --- Mock HealthChecker ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

// --- Mock Limiter ---

type mockLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (m *mockLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.keys = append(m.keys, key)
	return m.allow, m.err
}

// --- Helpers ---

type testEnv struct {
	search     *mockSearcher
	contacts   *mockContacts
	categories *mockCategories
	health     *mockHealth
	limiter    *mockLimiter
	handler    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		search:     &mockSearcher{},
		contacts:   &mockContacts{},
		categories: &mockCategories{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
		limiter: &mockLimiter{allow: true},
	}
	srv := NewServer(env.search, env.contacts, env.categories, env.health, nil).WithMaxUpload(1 << 20)
	env.handler = srv.Router(RouterConfig{
		Auth:          NewTokenVerifier(testSecret, testIssuer),
		PublicLimiter: env.limiter,
	})
	return env
}

func (e *testEnv) do(method, target, body string, authed bool) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+signToken(testOwner, testIssuer, time.Now().Add(time.Hour)))
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func signToken(subject, issuer string, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		panic(err)
	}
	return s
}

func testContact(t *testing.T, id, slug string, public bool) domcontact.Contact {
	t.Helper()
	loc := geo.ReconstructLocation(-23.5505, -46.6333)
	return domcontact.Reconstruct(domcontact.State{
		ID:        id,
		OwnerID:   testOwner,
		Name:      "Maria Silva",
		Email:     "maria@example.com",
		Phone:     "11987654321",
		Slug:      slug,
		Location:  &loc,
		Notes:     "private note",
		Favorite:  true,
		Public:    public,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	})
}

func ptr[T any](v T) *T { return &v }
