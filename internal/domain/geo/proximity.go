package geo

import "sort"

// ProximityBucket classifies a distance from a reference point.
type ProximityBucket string

// Proximity buckets.
const (
	BucketNearby     ProximityBucket = "nearby"
	BucketClose      ProximityBucket = "close"
	BucketModerate   ProximityBucket = "moderate"
	BucketFar        ProximityBucket = "far"
	BucketNoLocation ProximityBucket = "no_location"
)

// Bucket thresholds in kilometers (upper bounds, exclusive).
const (
	NearbyKm   = 5.0
	CloseKm    = 20.0
	ModerateKm = 50.0
)

// Bucket returns the proximity bucket for a distance in kilometers.
func Bucket(distanceKm float64) ProximityBucket {
	switch {
	case distanceKm < NearbyKm:
		return BucketNearby
	case distanceKm < CloseKm:
		return BucketClose
	case distanceKm < ModerateKm:
		return BucketModerate
	default:
		return BucketFar
	}
}

// Ranked pairs an item with its distance to a reference point.
type Ranked[T any] struct {
	Item       T
	DistanceKm float64
}

// SortByDistance returns the items that have a location, closest first.
// locOf reports false for items without a location.
func SortByDistance[T any](center Location, items []T, locOf func(T) (Location, bool)) []Ranked[T] {
	out := make([]Ranked[T], 0, len(items))
	for _, it := range items {
		loc, ok := locOf(it)
		if !ok {
			continue
		}
		out = append(out, Ranked[T]{Item: it, DistanceKm: loc.DistanceTo(center)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// GroupByProximity splits items into proximity buckets around center.
// Order within a bucket follows the input order.
func GroupByProximity[T any](center Location, items []T, locOf func(T) (Location, bool)) map[ProximityBucket][]T {
	groups := map[ProximityBucket][]T{
		BucketNearby:     {},
		BucketClose:      {},
		BucketModerate:   {},
		BucketFar:        {},
		BucketNoLocation: {},
	}
	for _, it := range items {
		loc, ok := locOf(it)
		if !ok {
			groups[BucketNoLocation] = append(groups[BucketNoLocation], it)
			continue
		}
		b := Bucket(loc.DistanceTo(center))
		groups[b] = append(groups[b], it)
	}
	return groups
}

// Center returns the arithmetic mean of the given locations.
func Center(locations []Location) (Location, bool) {
	if len(locations) == 0 {
		return Location{}, false
	}
	var sumLat, sumLon float64
	for _, l := range locations {
		sumLat += l.lat
		sumLon += l.lon
	}
	n := float64(len(locations))
	return Location{lat: sumLat / n, lon: sumLon / n}, true
}
