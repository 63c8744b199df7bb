package contact

import (
	"context"
	"io"

	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/event"
	"github.com/kailas-cloud/agenda/internal/usecase/search"
)

// Repository defines the storage contract for contacts.
type Repository interface {
	Save(ctx context.Context, c *domcontact.Contact) error
	Get(ctx context.Context, id string) (domcontact.Contact, error)
	GetBySlug(ctx context.Context, slug string) (domcontact.Contact, error)
	Delete(ctx context.Context, id string) error
	ExistsSlug(ctx context.Context, slug, excludeID string) (bool, error)
	ExistsEmail(ctx context.Context, ownerID, email, excludeID string) (bool, error)
}

// CategoryReader resolves categories assigned to contacts.
type CategoryReader interface {
	Get(ctx context.Context, id string) (domcat.Category, error)
}

// OwnedLister pages through the contacts of one owner.
type OwnedLister interface {
	ListOwned(ctx context.Context, ownerID string, p search.Params) (search.Page, error)
}

// PhotoStore keeps contact photos outside the contact store.
type PhotoStore interface {
	Upload(ctx context.Context, contactID string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// EventPublisher announces contact writes.
type EventPublisher interface {
	Publish(ctx context.Context, e event.Event) error
}
