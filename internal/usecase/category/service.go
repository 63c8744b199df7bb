package category

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
)

// CreateInput is the data for a new category. An empty Slug is derived from the name.
type CreateInput struct {
	Name        string
	Slug        string
	Description string
	Color       string
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Color       *string
}

// Service handles category CRUD scoped to the owning user.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// New creates a category service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now, newID: uuid.NewString}
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

// Create validates and stores a category. Slugs are unique per owner.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (domcat.Category, error) {
	if ownerID == "" {
		return domcat.Category{}, domain.ErrUnauthorized
	}
	c, err := domcat.New(s.newID(), ownerID, in.Name, in.Slug, in.Description, in.Color, s.now())
	if err != nil {
		return domcat.Category{}, err
	}

	existing, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return domcat.Category{}, fmt.Errorf("list categories: %w", err)
	}
	for _, e := range existing {
		if e.Slug() == c.Slug() {
			return domcat.Category{}, fmt.Errorf("category %q: %w", c.Slug(), domain.ErrAlreadyExists)
		}
	}

	if err := s.repo.Save(ctx, &c); err != nil {
		return domcat.Category{}, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

// List returns the categories of ownerID ordered by name.
func (s *Service) List(ctx context.Context, ownerID string) ([]domcat.Category, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	cats, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Get returns a category of ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id string) (domcat.Category, error) {
	if ownerID == "" {
		return domcat.Category{}, domain.ErrUnauthorized
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return domcat.Category{}, fmt.Errorf("get category: %w", err)
	}
	if !c.IsOwnedBy(ownerID) {
		return domcat.Category{}, fmt.Errorf("category %s: %w", id, domain.ErrForbidden)
	}
	return c, nil
}

// Update applies a partial update to a category of ownerID.
func (s *Service) Update(ctx context.Context, ownerID, id string, in UpdateInput) (domcat.Category, error) {
	c, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return domcat.Category{}, err
	}
	name, desc, color := c.Name(), c.Description(), c.Color()
	if in.Name != nil {
		name = *in.Name
	}
	if in.Description != nil {
		desc = *in.Description
	}
	if in.Color != nil {
		color = *in.Color
	}
	if err := c.Update(name, desc, color, s.now()); err != nil {
		return domcat.Category{}, err
	}
	if err := s.repo.Save(ctx, &c); err != nil {
		return domcat.Category{}, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}

// Delete removes a category of ownerID. Contacts keep the stale id until edited.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
