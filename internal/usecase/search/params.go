package search

import (
	"fmt"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
)

// Params are the caller-facing search inputs.
type Params struct {
	Limit      int
	Cursor     string // id of the last contact of the previous page
	CategoryID string
	Search     string
	Lat        *float64
	Lon        *float64
	RadiusKm   *float64

	// FavoritesOnly keeps contacts the owner marked as favorite. Only owner
	// listings honor it.
	FavoritesOnly bool
}

// Hit is one contact of a page. DistanceKm is set when the search had a centre.
type Hit struct {
	Contact    domcontact.Contact
	DistanceKm *float64
}

// Page is one page of results. NextCursor is empty when the page is not full.
type Page struct {
	Contacts   []Hit
	NextCursor string
	Batches    int
}

// area is a validated search circle.
type area struct {
	center   geo.Location
	radiusKm float64
}

// validate checks p and returns the search circle, nil when the search is not geo-bounded.
func (p Params) validate() (*area, error) {
	if p.Limit <= 0 {
		return nil, domain.NewInvalidArgument("limit", fmt.Sprintf("must be positive, got %d", p.Limit))
	}
	if (p.Lat == nil) != (p.Lon == nil) {
		return nil, domain.NewInvalidArgument("lat/lon", "both coordinates are required")
	}
	if p.Lat == nil {
		if p.RadiusKm != nil {
			return nil, domain.NewInvalidArgument("radius_km", "requires lat and lon")
		}
		return nil, nil
	}
	if p.RadiusKm == nil || !(*p.RadiusKm > 0) {
		return nil, domain.NewInvalidArgument("radius_km", "must be positive when lat and lon are given")
	}
	center, err := geo.NewLocation(*p.Lat, *p.Lon)
	if err != nil {
		return nil, fmt.Errorf("search centre: %w", err)
	}
	return &area{center: center, radiusKm: *p.RadiusKm}, nil
}
