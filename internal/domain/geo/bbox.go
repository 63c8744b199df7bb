package geo

import "math"

// minCosLat guards the longitude delta against blowing up near the poles.
const minCosLat = 1e-9

// BoundingBox is an axis-aligned lat/lon rectangle around a search circle.
// It only narrows candidates; the exact filter is Location.WithinRadius.
type BoundingBox struct {
	latMin, latMax float64
	lonMin, lonMax float64
	latDelta       float64
	lonDelta       float64
	wraps          bool
}

// NewBoundingBox computes the box around center for radiusKm.
// The radius is not validated.
//
// Latitude bounds are clamped to [-90,90]. When the circle reaches a pole or
// crosses the antimeridian a plain min/max longitude comparison would be
// wrong, so the box spans every longitude and WrapsLongitude reports true.
func NewBoundingBox(center Location, radiusKm float64) BoundingBox {
	latDelta := degrees(radiusKm / EarthRadiusKm)

	cosLat := math.Cos(radians(center.lat))
	var lonDelta float64
	if cosLat < minCosLat {
		lonDelta = math.Inf(1)
	} else {
		lonDelta = degrees(radiusKm / (EarthRadiusKm * cosLat))
	}

	b := BoundingBox{
		latMin:   center.lat - latDelta,
		latMax:   center.lat + latDelta,
		lonMin:   center.lon - lonDelta,
		lonMax:   center.lon + lonDelta,
		latDelta: latDelta,
		lonDelta: lonDelta,
	}

	if b.latMin <= -90 || b.latMax >= 90 || b.lonMin < -180 || b.lonMax > 180 {
		b.wraps = true
		b.lonMin, b.lonMax = -180, 180
	}
	b.latMin = math.Max(b.latMin, -90)
	b.latMax = math.Min(b.latMax, 90)

	return b
}

// LatMin returns the southern bound.
func (b BoundingBox) LatMin() float64 { return b.latMin }

// LatMax returns the northern bound.
func (b BoundingBox) LatMax() float64 { return b.latMax }

// LonMin returns the western bound (-180 when the box wraps).
func (b BoundingBox) LonMin() float64 { return b.lonMin }

// LonMax returns the eastern bound (180 when the box wraps).
func (b BoundingBox) LonMax() float64 { return b.lonMax }

// LatDelta returns the unclamped latitude half-height in degrees.
func (b BoundingBox) LatDelta() float64 { return b.latDelta }

// LonDelta returns the unclamped longitude half-width in degrees (+Inf at a pole).
func (b BoundingBox) LonDelta() float64 { return b.lonDelta }

// WrapsLongitude reports whether the longitude range must not be used as a filter.
func (b BoundingBox) WrapsLongitude() bool { return b.wraps }

// Contains reports whether l falls inside the box.
func (b BoundingBox) Contains(l Location) bool {
	if l.lat < b.latMin || l.lat > b.latMax {
		return false
	}
	if b.wraps {
		return true
	}
	return l.lon >= b.lonMin && l.lon <= b.lonMax
}
