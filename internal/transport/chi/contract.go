package chi

import (
	"context"
	"io"

	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
	categoryuc "github.com/kailas-cloud/agenda/internal/usecase/category"
	contactuc "github.com/kailas-cloud/agenda/internal/usecase/contact"
	healthuc "github.com/kailas-cloud/agenda/internal/usecase/health"
	searchuc "github.com/kailas-cloud/agenda/internal/usecase/search"
)

// Searcher pages through contacts.
type Searcher interface {
	SearchPublic(ctx context.Context, p searchuc.Params) (searchuc.Page, error)
	Nearby(ctx context.Context, p searchuc.Params) (searchuc.Page, error)
	ListOwned(ctx context.Context, ownerID string, p searchuc.Params) (searchuc.Page, error)
	DefaultPageSize() int
}

// Contacts manages the contacts of the authenticated owner.
type Contacts interface {
	Create(ctx context.Context, ownerID string, in contactuc.CreateInput) (domcontact.Contact, error)
	Update(ctx context.Context, ownerID, id string, in contactuc.UpdateInput) (domcontact.Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
	Get(ctx context.Context, ownerID, id string) (domcontact.Contact, error)
	GetPublicBySlug(ctx context.Context, slug string) (domcontact.Contact, error)
	UploadPhoto(ctx context.Context, ownerID, id string, r io.Reader) (domcontact.Contact, error)
	RemovePhoto(ctx context.Context, ownerID, id string) (domcontact.Contact, error)
	Proximity(ctx context.Context, ownerID string, lat, lon float64) (map[geo.ProximityBucket][]domcontact.Contact, error)
}

// Categories manages the categories of the authenticated owner.
type Categories interface {
	Create(ctx context.Context, ownerID string, in categoryuc.CreateInput) (domcat.Category, error)
	List(ctx context.Context, ownerID string) ([]domcat.Category, error)
	Update(ctx context.Context, ownerID, id string, in categoryuc.UpdateInput) (domcat.Category, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// HealthChecker reports service health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
