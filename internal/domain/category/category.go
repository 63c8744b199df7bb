package category

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kailas-cloud/agenda/internal/domain"
	"github.com/kailas-cloud/agenda/internal/domain/contact"
)

// MaxNameLength is the maximum category name length.
const MaxNameLength = 80

var colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category groups contacts of one owner (e.g. "Plumbers").
type Category struct {
	id          string
	ownerID     string
	name        string
	slug        string
	description string
	color       string
	createdAt   time.Time
	updatedAt   time.Time
}

// New validates input and creates a category. An empty slug is derived from the name.
func New(id, ownerID, name, slug, description, color string, now time.Time) (Category, error) {
	if id == "" || ownerID == "" {
		return Category{}, fmt.Errorf("category id and owner are required: %w", domain.ErrInvalidArgument)
	}
	c := Category{id: id, ownerID: ownerID, createdAt: now.UTC(), updatedAt: now.UTC()}
	if err := c.Update(name, description, color, now); err != nil {
		return Category{}, err
	}
	if slug == "" {
		slug = name
	}
	s, err := contact.NewSlug(slug)
	if err != nil {
		return Category{}, err
	}
	c.slug = s
	return c, nil
}

// Reconstruct creates a Category without validation (storage hydration).
func Reconstruct(id, ownerID, name, slug, description, color string, createdAt, updatedAt time.Time) Category {
	return Category{
		id: id, ownerID: ownerID, name: name, slug: slug, description: description, color: color,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// Update replaces the mutable attributes. The slug is stable.
func (c *Category) Update(name, description, color string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("category name is required: %w", domain.ErrInvalidArgument)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("category name too long (max %d): %w", MaxNameLength, domain.ErrInvalidArgument)
	}
	if color != "" && !colorRegex.MatchString(color) {
		return fmt.Errorf("color must be #rrggbb: %w", domain.ErrInvalidArgument)
	}
	c.name = name
	c.description = strings.TrimSpace(description)
	c.color = color
	c.updatedAt = now.UTC()
	return nil
}

// ID returns the category identifier.
func (c *Category) ID() string { return c.id }

// OwnerID returns the owning user.
func (c *Category) OwnerID() string { return c.ownerID }

// Name returns the display name.
func (c *Category) Name() string { return c.name }

// Slug returns the URL-safe name.
func (c *Category) Slug() string { return c.slug }

// Description returns the optional description.
func (c *Category) Description() string { return c.description }

// Color returns the optional #rrggbb color.
func (c *Category) Color() string { return c.color }

// CreatedAt returns the creation time.
func (c *Category) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last modification time.
func (c *Category) UpdatedAt() time.Time { return c.updatedAt }

// IsOwnedBy reports whether ownerID owns the category.
func (c *Category) IsOwnedBy(ownerID string) bool { return ownerID != "" && c.ownerID == ownerID }
