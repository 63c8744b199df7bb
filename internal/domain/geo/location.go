package geo

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/agenda/internal/domain"
)

// Tolerance is the per-coordinate delta under which two locations are equal.
// Covers float round-trips through string storage.
const Tolerance = 1e-6

// Location is an immutable latitude/longitude pair in degrees.
type Location struct {
	lat float64
	lon float64
}

// NewLocation validates coordinates and creates a Location.
func NewLocation(lat, lon float64) (Location, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("latitude %v out of range [-90,90]: %w", lat, domain.ErrInvalidArgument)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("longitude %v out of range [-180,180]: %w", lon, domain.ErrInvalidArgument)
	}
	return Location{lat: lat, lon: lon}, nil
}

// ReconstructLocation hydrates a Location from storage without validation.
func ReconstructLocation(lat, lon float64) Location {
	return Location{lat: lat, lon: lon}
}

// Latitude returns the latitude in degrees.
func (l Location) Latitude() float64 { return l.lat }

// Longitude returns the longitude in degrees.
func (l Location) Longitude() float64 { return l.lon }

// DistanceTo returns the great-circle distance to other in kilometers.
func (l Location) DistanceTo(other Location) float64 {
	return HaversineKm(l.lat, l.lon, other.lat, other.lon)
}

// WithinRadius reports whether l lies within radiusKm of center, boundary included.
func (l Location) WithinRadius(center Location, radiusKm float64) bool {
	return l.DistanceTo(center) <= radiusKm
}

// Equal compares coordinates with Tolerance.
func (l Location) Equal(other Location) bool {
	return math.Abs(l.lat-other.lat) < Tolerance && math.Abs(l.lon-other.lon) < Tolerance
}

func (l Location) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", l.lat, l.lon)
}
