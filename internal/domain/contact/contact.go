// Package contact holds the contact aggregate and its persisted record shape.
package contact

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kailas-cloud/agenda/internal/domain"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
)

// Field limits.
const (
	MaxNameLength  = 200
	MaxEmailLength = 255
	MaxNotesLength = 5000
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Params is the input for New.
type Params struct {
	ID      string
	OwnerID string
	Name    string
	Email   string
	Phone   string
	Public  bool
	Now     time.Time
}

// Contact is the contact aggregate. A slug exists only while the contact is public.
type Contact struct {
	id         string
	ownerID    string
	name       string
	email      string
	phone      string
	address    *Address
	categoryID string
	slug       string
	location   *geo.Location
	notes      string
	favorite   bool
	public     bool
	photoURL   string
	createdAt  time.Time
	updatedAt  time.Time
}

// New validates input and creates a contact.
func New(p Params) (Contact, error) {
	if p.ID == "" {
		return Contact{}, fmt.Errorf("contact id is required: %w", domain.ErrInvalidArgument)
	}
	if p.OwnerID == "" {
		return Contact{}, fmt.Errorf("owner id is required: %w", domain.ErrInvalidArgument)
	}
	name, err := normalizeName(p.Name)
	if err != nil {
		return Contact{}, err
	}
	email, err := NormalizeEmail(p.Email)
	if err != nil {
		return Contact{}, err
	}
	phone, err := NormalizePhone(p.Phone)
	if err != nil {
		return Contact{}, err
	}

	now := p.Now.UTC()
	return Contact{
		id:        p.ID,
		ownerID:   p.OwnerID,
		name:      name,
		email:     email,
		phone:     phone,
		public:    p.Public,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// State is the full persisted state of a contact.
type State struct {
	ID         string
	OwnerID    string
	Name       string
	Email      string
	Phone      string
	Address    *Address
	CategoryID string
	Slug       string
	Location   *geo.Location
	Notes      string
	Favorite   bool
	Public     bool
	PhotoURL   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Reconstruct hydrates a contact from storage without validation.
func Reconstruct(s State) Contact {
	return Contact{
		id: s.ID, ownerID: s.OwnerID, name: s.Name, email: s.Email, phone: s.Phone,
		address: s.Address, categoryID: s.CategoryID, slug: s.Slug, location: s.Location,
		notes: s.Notes, favorite: s.Favorite, public: s.Public, photoURL: s.PhotoURL,
		createdAt: s.CreatedAt, updatedAt: s.UpdatedAt,
	}
}

// State returns a copy of the contact state.
func (c *Contact) State() State {
	return State{
		ID: c.id, OwnerID: c.ownerID, Name: c.name, Email: c.email, Phone: c.phone,
		Address: c.address, CategoryID: c.categoryID, Slug: c.slug, Location: c.location,
		Notes: c.notes, Favorite: c.favorite, Public: c.public, PhotoURL: c.photoURL,
		CreatedAt: c.createdAt, UpdatedAt: c.updatedAt,
	}
}

// ID returns the contact identifier.
func (c *Contact) ID() string { return c.id }

// OwnerID returns the owning user id.
func (c *Contact) OwnerID() string { return c.ownerID }

// Name returns the display name.
func (c *Contact) Name() string { return c.name }

// Email returns the normalized email.
func (c *Contact) Email() string { return c.email }

// Phone returns the phone digits, empty when unset.
func (c *Contact) Phone() string { return c.phone }

// Address returns the postal address, nil when unset.
func (c *Contact) Address() *Address { return c.address }

// CategoryID returns the category, empty when unassigned.
func (c *Contact) CategoryID() string { return c.categoryID }

// Slug returns the public slug, empty for private contacts.
func (c *Contact) Slug() string { return c.slug }

// Location returns the coordinates and whether they are known.
func (c *Contact) Location() (geo.Location, bool) {
	if c.location == nil {
		return geo.Location{}, false
	}
	return *c.location, true
}

// Notes returns free-form notes.
func (c *Contact) Notes() string { return c.notes }

// IsFavorite reports the favorite flag.
func (c *Contact) IsFavorite() bool { return c.favorite }

// IsPublic reports whether the contact is listed in the public directory.
func (c *Contact) IsPublic() bool { return c.public }

// PhotoURL returns the photo URL, empty when unset.
func (c *Contact) PhotoURL() string { return c.photoURL }

// CreatedAt returns the creation time.
func (c *Contact) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last modification time.
func (c *Contact) UpdatedAt() time.Time { return c.updatedAt }

// IsOwnedBy reports whether ownerID owns the contact.
func (c *Contact) IsOwnedBy(ownerID string) bool { return ownerID != "" && c.ownerID == ownerID }

// UpdateBasicInfo replaces name, email and phone. An empty phone clears it.
func (c *Contact) UpdateBasicInfo(name, email, phone string) error {
	n, err := normalizeName(name)
	if err != nil {
		return err
	}
	e, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	p, err := NormalizePhone(phone)
	if err != nil {
		return err
	}
	c.name, c.email, c.phone = n, e, p
	return nil
}

// SetAddress replaces the address; coordinates on the address also become the location.
func (c *Contact) SetAddress(a Address) {
	c.address = &a
	if loc := a.Location(); loc != nil {
		l := *loc
		c.location = &l
	}
}

// ClearAddress removes the address and keeps the location.
func (c *Contact) ClearAddress() { c.address = nil }

// SetLocation replaces the coordinates.
func (c *Contact) SetLocation(l geo.Location) { c.location = &l }

// ClearLocation removes the coordinates.
func (c *Contact) ClearLocation() { c.location = nil }

// AssignCategory sets or clears (empty id) the category.
func (c *Contact) AssignCategory(categoryID string) { c.categoryID = categoryID }

// SetSlug assigns a validated slug. Private contacts cannot carry a slug.
func (c *Contact) SetSlug(slug string) error {
	if !c.public {
		return fmt.Errorf("private contact cannot have a slug: %w", domain.ErrInvalidArgument)
	}
	if err := ValidateSlug(slug); err != nil {
		return err
	}
	c.slug = slug
	return nil
}

// UpdateNotes replaces the notes.
func (c *Contact) UpdateNotes(notes string) error {
	if len(notes) > MaxNotesLength {
		return fmt.Errorf("notes too long (max %d): %w", MaxNotesLength, domain.ErrInvalidArgument)
	}
	c.notes = notes
	return nil
}

// MarkFavorite sets the favorite flag.
func (c *Contact) MarkFavorite() { c.favorite = true }

// UnmarkFavorite clears the favorite flag.
func (c *Contact) UnmarkFavorite() { c.favorite = false }

// MakePublic lists the contact in the public directory. The caller assigns a slug.
func (c *Contact) MakePublic() { c.public = true }

// MakePrivate removes the contact from the public directory and drops its slug.
func (c *Contact) MakePrivate() {
	c.public = false
	c.slug = ""
}

// SetPhotoURL records the uploaded photo.
func (c *Contact) SetPhotoURL(url string) { c.photoURL = url }

// RemovePhoto clears the photo URL.
func (c *Contact) RemovePhoto() { c.photoURL = "" }

// Touch stamps the modification time.
func (c *Contact) Touch(now time.Time) { c.updatedAt = now.UTC() }

// NormalizeEmail lower-cases, trims and validates an email.
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", fmt.Errorf("email is required: %w", domain.ErrInvalidArgument)
	}
	if len(e) > MaxEmailLength {
		return "", fmt.Errorf("email too long (max %d): %w", MaxEmailLength, domain.ErrInvalidArgument)
	}
	if !emailRegex.MatchString(e) {
		return "", fmt.Errorf("email %q is invalid: %w", e, domain.ErrInvalidArgument)
	}
	return e, nil
}

// NormalizePhone strips formatting and validates the digit count.
// An empty input yields an empty phone.
func NormalizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}
	d := digitsOnly(phone)
	if len(d) < MinPhoneDigits || len(d) > MaxPhoneDigits {
		return "", fmt.Errorf("invalid phone number length: %q: %w", phone, domain.ErrInvalidArgument)
	}
	return d, nil
}

func normalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", fmt.Errorf("name is required: %w", domain.ErrInvalidArgument)
	}
	if len(n) > MaxNameLength {
		return "", fmt.Errorf("name too long (max %d): %w", MaxNameLength, domain.ErrInvalidArgument)
	}
	return n, nil
}
