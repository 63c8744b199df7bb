package geo

import "math"

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// EarthRadiusMeters is EarthRadiusKm in meters.
const EarthRadiusMeters = EarthRadiusKm * 1000

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return EarthRadiusMeters * centralAngle(lat1, lon1, lat2, lon2)
}

// HaversineKm is Haversine in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return EarthRadiusKm * centralAngle(lat1, lon1, lat2, lon2)
}

func centralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := radians(lat1)
	lat2r := radians(lat2)
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a a hair above 1 for antipodal points.
	if a > 1 {
		a = 1
	}
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
// NaN fails both comparisons and is rejected.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
