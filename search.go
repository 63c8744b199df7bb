package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	searchuc "github.com/kailas-cloud/agenda/internal/usecase/search"
)

// Errors returned by searches; match them with errors.Is.
var (
	ErrInvalidArgument = domain.ErrInvalidArgument
	ErrNotFound        = domain.ErrNotFound
	ErrCursorNotFound  = domain.ErrCursorNotFound
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64
	Lon float64
}

// Contact is a public directory entry.
type Contact struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Address    string
	CategoryID string
	Slug       string
	PhotoURL   string
	Location   *Location
	CreatedAt  time.Time
	UpdatedAt  time.Time
	// DistanceKm is set for radius searches.
	DistanceKm *float64
}

// SearchParams selects a page of public contacts. Lat and Lon go together;
// RadiusKm needs both.
type SearchParams struct {
	Limit      int
	Cursor     string // NextCursor of the previous page
	CategoryID string
	Search     string
	Lat        *float64
	Lon        *float64
	RadiusKm   *float64
}

// SearchResult is one page of contacts, newest first.
// NextCursor is empty when the page came back short.
type SearchResult struct {
	Contacts   []Contact
	NextCursor string
}

// SearchPublicContacts returns up to p.Limit public contacts, newest first.
func (c *Client) SearchPublicContacts(ctx context.Context, p SearchParams) (SearchResult, error) {
	page, err := c.search.SearchPublic(ctx, p.internal())
	if err != nil {
		return SearchResult{}, fmt.Errorf("search public contacts: %w", err)
	}
	return fromPage(page), nil
}

// NearbyContacts returns public contacts within p.RadiusKm of (p.Lat, p.Lon),
// closest first within the page.
func (c *Client) NearbyContacts(ctx context.Context, p SearchParams) (SearchResult, error) {
	page, err := c.search.Nearby(ctx, p.internal())
	if err != nil {
		return SearchResult{}, fmt.Errorf("nearby contacts: %w", err)
	}
	return fromPage(page), nil
}

func (p SearchParams) internal() searchuc.Params {
	return searchuc.Params{
		Limit:      p.Limit,
		Cursor:     p.Cursor,
		CategoryID: p.CategoryID,
		Search:     p.Search,
		Lat:        p.Lat,
		Lon:        p.Lon,
		RadiusKm:   p.RadiusKm,
	}
}

func fromPage(page searchuc.Page) SearchResult {
	out := SearchResult{Contacts: make([]Contact, 0, len(page.Contacts)), NextCursor: page.NextCursor}
	for _, h := range page.Contacts {
		out.Contacts = append(out.Contacts, fromContact(h.Contact, h.DistanceKm))
	}
	return out
}

func fromContact(c domcontact.Contact, distanceKm *float64) Contact {
	out := Contact{
		ID:         c.ID(),
		Name:       c.Name(),
		Email:      c.Email(),
		Phone:      c.Phone(),
		CategoryID: c.CategoryID(),
		Slug:       c.Slug(),
		PhotoURL:   c.PhotoURL(),
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
		DistanceKm: distanceKm,
	}
	if a := c.Address(); a != nil {
		out.Address = a.String()
	}
	if loc, ok := c.Location(); ok {
		out.Location = &Location{Lat: loc.Latitude(), Lon: loc.Longitude()}
	}
	return out
}
