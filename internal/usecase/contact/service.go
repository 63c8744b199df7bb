package contact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/event"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
	"github.com/kailas-cloud/agenda/internal/usecase/search"
)

// Proximity scan bounds.
const (
	proximityPageSize = 100
	proximityMaxPages = 10
)

// Service handles contact writes and single-contact reads.
// Photos and events are optional collaborators.
type Service struct {
	repo         Repository
	cats         CategoryReader
	lister       OwnedLister
	photos       PhotoStore
	events       EventPublisher
	now          func() time.Time
	newID        func() string
	randomSuffix func() string
	logger       *zap.Logger
}

// New creates a contact service.
func New(repo Repository, cats CategoryReader, lister OwnedLister) *Service {
	return &Service{
		repo:         repo,
		cats:         cats,
		lister:       lister,
		now:          time.Now,
		newID:        uuid.NewString,
		randomSuffix: randomSuffix,
		logger:       zap.NewNop(),
	}
}

// WithPhotos enables photo upload and removal.
func (s *Service) WithPhotos(p PhotoStore) *Service {
	s.photos = p
	return s
}

// WithEvents enables event publishing.
func (s *Service) WithEvents(p EventPublisher) *Service {
	s.events = p
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDs overrides the id generator.
func (s *Service) WithIDs(gen func() string) *Service {
	s.newID = gen
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Create validates in and stores a new contact owned by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (domcontact.Contact, error) {
	if ownerID == "" {
		return domcontact.Contact{}, domain.ErrUnauthorized
	}
	c, err := domcontact.New(domcontact.Params{
		ID:      s.newID(),
		OwnerID: ownerID,
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Public:  in.Public,
		Now:     s.now(),
	})
	if err != nil {
		return domcontact.Contact{}, err
	}

	if in.Address != nil {
		if err := setAddress(&c, *in.Address); err != nil {
			return domcontact.Contact{}, err
		}
	}
	if err := setLocation(&c, in.Lat, in.Lon); err != nil {
		return domcontact.Contact{}, err
	}
	if err := s.assignCategory(ctx, &c, in.CategoryID); err != nil {
		return domcontact.Contact{}, err
	}
	if err := c.UpdateNotes(in.Notes); err != nil {
		return domcontact.Contact{}, err
	}
	if in.Favorite {
		c.MarkFavorite()
	}
	if err := s.checkEmail(ctx, &c); err != nil {
		return domcontact.Contact{}, err
	}
	if c.IsPublic() {
		if err := s.assignSlug(ctx, &c, in.Slug); err != nil {
			return domcontact.Contact{}, err
		}
	} else if in.Slug != "" {
		return domcontact.Contact{}, domain.NewInvalidArgument("slug", "only public contacts have a slug")
	}

	if err := s.repo.Save(ctx, &c); err != nil {
		return domcontact.Contact{}, fmt.Errorf("save contact: %w", err)
	}
	s.publish(ctx, event.ContactCreated, &c)
	return c, nil
}

// Update applies a partial update to a contact of ownerID.
func (s *Service) Update(ctx context.Context, ownerID, id string, in UpdateInput) (domcontact.Contact, error) {
	c, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return domcontact.Contact{}, err
	}

	if in.Name != nil || in.Email != nil || in.Phone != nil {
		prevEmail := c.Email()
		if err := c.UpdateBasicInfo(pick(in.Name, c.Name()), pick(in.Email, c.Email()), pick(in.Phone, c.Phone())); err != nil {
			return domcontact.Contact{}, err
		}
		if c.Email() != prevEmail {
			if err := s.checkEmail(ctx, &c); err != nil {
				return domcontact.Contact{}, err
			}
		}
	}

	switch {
	case in.ClearAddress:
		c.ClearAddress()
	case in.Address != nil:
		if err := setAddress(&c, *in.Address); err != nil {
			return domcontact.Contact{}, err
		}
	}
	if in.ClearLocation {
		c.ClearLocation()
	} else if err := setLocation(&c, in.Lat, in.Lon); err != nil {
		return domcontact.Contact{}, err
	}
	if in.CategoryID != nil {
		if err := s.assignCategory(ctx, &c, *in.CategoryID); err != nil {
			return domcontact.Contact{}, err
		}
	}
	if in.Notes != nil {
		if err := c.UpdateNotes(*in.Notes); err != nil {
			return domcontact.Contact{}, err
		}
	}
	if in.Favorite != nil {
		if *in.Favorite {
			c.MarkFavorite()
		} else {
			c.UnmarkFavorite()
		}
	}
	if err := s.applyVisibility(ctx, &c, in.Public, in.Slug); err != nil {
		return domcontact.Contact{}, err
	}

	c.Touch(s.now())
	if err := s.repo.Save(ctx, &c); err != nil {
		return domcontact.Contact{}, fmt.Errorf("save contact: %w", err)
	}
	s.publish(ctx, event.ContactUpdated, &c)
	return c, nil
}

// applyVisibility handles public/private switches and explicit slugs.
func (s *Service) applyVisibility(ctx context.Context, c *domcontact.Contact, public *bool, slug *string) error {
	requested := ""
	if slug != nil {
		requested = *slug
	}
	if public != nil {
		switch {
		case *public && !c.IsPublic():
			c.MakePublic()
			return s.assignSlug(ctx, c, requested)
		case !*public:
			c.MakePrivate()
		}
	}
	if slug == nil {
		return nil
	}
	if !c.IsPublic() {
		return domain.NewInvalidArgument("slug", "only public contacts have a slug")
	}
	if requested == "" || requested == c.Slug() {
		return nil
	}
	return s.assignSlug(ctx, c, requested)
}

// Delete removes a contact of ownerID. The photo is removed best effort.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	c, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	if url := c.PhotoURL(); url != "" && s.photos != nil {
		if err := s.photos.Delete(ctx, url); err != nil {
			s.logger.Warn("Failed to delete contact photo",
				zap.String("contact_id", id), zap.String("url", url), zap.Error(err))
		}
	}
	s.publish(ctx, event.ContactDeleted, &c)
	return nil
}

// Get returns a contact of ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id string) (domcontact.Contact, error) {
	return s.owned(ctx, ownerID, id)
}

// GetPublicBySlug returns the public contact with slug.
func (s *Service) GetPublicBySlug(ctx context.Context, slug string) (domcontact.Contact, error) {
	if domcontact.ValidateSlug(slug) != nil {
		return domcontact.Contact{}, fmt.Errorf("contact %q: %w", slug, domain.ErrNotFound)
	}
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return domcontact.Contact{}, fmt.Errorf("get contact by slug: %w", err)
	}
	return c, nil
}

// UploadPhoto stores the image from r as the contact photo. Uploads overwrite
// the image keyed by the contact id, so there is no old photo to clean up.
func (s *Service) UploadPhoto(ctx context.Context, ownerID, id string, r io.Reader) (domcontact.Contact, error) {
	if s.photos == nil {
		return domcontact.Contact{}, fmt.Errorf("photo storage: %w", domain.ErrNotImplemented)
	}
	c, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return domcontact.Contact{}, err
	}
	url, err := s.photos.Upload(ctx, id, r)
	if err != nil {
		return domcontact.Contact{}, fmt.Errorf("upload photo: %w", err)
	}

	c.SetPhotoURL(url)
	c.Touch(s.now())
	if err := s.repo.Save(ctx, &c); err != nil {
		return domcontact.Contact{}, fmt.Errorf("save contact: %w", err)
	}
	s.publish(ctx, event.ContactUpdated, &c)
	return c, nil
}

// RemovePhoto deletes the contact photo. A contact without photo is returned unchanged.
func (s *Service) RemovePhoto(ctx context.Context, ownerID, id string) (domcontact.Contact, error) {
	if s.photos == nil {
		return domcontact.Contact{}, fmt.Errorf("photo storage: %w", domain.ErrNotImplemented)
	}
	c, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return domcontact.Contact{}, err
	}
	if c.PhotoURL() == "" {
		return c, nil
	}
	if err := s.photos.Delete(ctx, c.PhotoURL()); err != nil {
		return domcontact.Contact{}, fmt.Errorf("delete photo: %w", err)
	}

	c.RemovePhoto()
	c.Touch(s.now())
	if err := s.repo.Save(ctx, &c); err != nil {
		return domcontact.Contact{}, fmt.Errorf("save contact: %w", err)
	}
	s.publish(ctx, event.ContactUpdated, &c)
	return c, nil
}

// Proximity groups the contacts of ownerID by distance from (lat, lon).
func (s *Service) Proximity(
	ctx context.Context, ownerID string, lat, lon float64,
) (map[geo.ProximityBucket][]domcontact.Contact, error) {
	center, err := geo.NewLocation(lat, lon)
	if err != nil {
		return nil, err
	}

	var all []domcontact.Contact
	cursor := ""
	for range proximityMaxPages {
		page, err := s.lister.ListOwned(ctx, ownerID, search.Params{Limit: proximityPageSize, Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("list contacts: %w", err)
		}
		for _, h := range page.Contacts {
			all = append(all, h.Contact)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return geo.GroupByProximity(center, all, func(c domcontact.Contact) (geo.Location, bool) {
		return c.Location()
	}), nil
}

// owned loads id and checks that ownerID owns it.
func (s *Service) owned(ctx context.Context, ownerID, id string) (domcontact.Contact, error) {
	if ownerID == "" {
		return domcontact.Contact{}, domain.ErrUnauthorized
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domcontact.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	if !c.IsOwnedBy(ownerID) {
		return domcontact.Contact{}, fmt.Errorf("contact %s: %w", id, domain.ErrForbidden)
	}
	return c, nil
}

func (s *Service) checkEmail(ctx context.Context, c *domcontact.Contact) error {
	taken, err := s.repo.ExistsEmail(ctx, c.OwnerID(), c.Email(), c.ID())
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return fmt.Errorf("contact with email %s: %w", c.Email(), domain.ErrAlreadyExists)
	}
	return nil
}

// assignSlug gives a public contact requested, or the default slug, made unique.
func (s *Service) assignSlug(ctx context.Context, c *domcontact.Contact, requested string) error {
	var base string
	var err error
	if requested == "" {
		base, err = domcontact.DefaultSlug(c.Name(), c.ID())
	} else {
		base, err = domcontact.NewSlug(requested)
	}
	if err != nil {
		return err
	}
	slug, err := s.UniqueSlug(ctx, base, c.ID())
	if err != nil {
		return err
	}
	return c.SetSlug(slug)
}

func (s *Service) assignCategory(ctx context.Context, c *domcontact.Contact, categoryID string) error {
	if categoryID == "" {
		c.AssignCategory("")
		return nil
	}
	cat, err := s.cats.Get(ctx, categoryID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewInvalidArgument("category_id", "unknown category "+categoryID)
	}
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if !cat.IsOwnedBy(c.OwnerID()) {
		return fmt.Errorf("category %s: %w", categoryID, domain.ErrForbidden)
	}
	c.AssignCategory(categoryID)
	return nil
}

// publish sends a lifecycle event. Failures are logged and never fail the write.
func (s *Service) publish(ctx context.Context, t event.Type, c *domcontact.Contact) {
	if s.events == nil {
		return
	}
	e := event.Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: s.now().UTC(),
		ContactID:  c.ID(),
		OwnerID:    c.OwnerID(),
		Name:       c.Name(),
		Email:      c.Email(),
		Public:     c.IsPublic(),
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("Failed to publish contact event",
			zap.String("type", string(t)), zap.String("contact_id", c.ID()), zap.Error(err))
	}
}

func setAddress(c *domcontact.Contact, p domcontact.AddressParams) error {
	a, err := domcontact.NewAddress(p)
	if err != nil {
		return err
	}
	c.SetAddress(a)
	return nil
}

func setLocation(c *domcontact.Contact, lat, lon *float64) error {
	if lat == nil && lon == nil {
		return nil
	}
	if lat == nil || lon == nil {
		return domain.NewInvalidArgument("lat/lon", "both coordinates are required")
	}
	l, err := geo.NewLocation(*lat, *lon)
	if err != nil {
		return err
	}
	c.SetLocation(l)
	return nil
}

func pick(v *string, current string) string {
	if v == nil {
		return current
	}
	return *v
}
