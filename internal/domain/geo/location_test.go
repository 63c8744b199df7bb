package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/agenda/internal/domain"
)

func almost(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func mustLocation(t *testing.T, lat, lon float64) Location {
	t.Helper()
	l, err := NewLocation(lat, lon)
	if err != nil {
		t.Fatalf("NewLocation(%v, %v): %v", lat, lon, err)
	}
	return l
}

// destination walks distanceKm from origin along bearingDeg on the sphere.
func destination(origin Location, bearingDeg, distanceKm float64) Location {
	d := distanceKm / EarthRadiusKm
	brg := radians(bearingDeg)
	lat1 := radians(origin.Latitude())
	lon1 := radians(origin.Longitude())

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(math.Sin(brg)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))
	return ReconstructLocation(degrees(lat2), degrees(lon2))
}

func TestNewLocation_Valid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"origin", 0, 0},
		{"north pole", 90, 0},
		{"south pole", -90, 0},
		{"antimeridian east", 0, 180},
		{"antimeridian west", 0, -180},
		{"sao paulo", -23.5505, -46.6333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mustLocation(t, tt.lat, tt.lon)
			if l.Latitude() != tt.lat || l.Longitude() != tt.lon {
				t.Errorf("got %v", l)
			}
		})
	}
}

func TestNewLocation_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"lat above", 90.0001, 0},
		{"lat below", -91, 0},
		{"lon above", 0, 180.5},
		{"lon below", 0, -181},
		{"lat nan", math.NaN(), 0},
		{"lon nan", 0, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLocation(tt.lat, tt.lon)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestDistanceTo_SamePoint(t *testing.T) {
	l := mustLocation(t, 40.7128, -74.0060)
	if d := l.DistanceTo(l); d > 1e-9 {
		t.Fatalf("want 0, got %v", d)
	}
}

func TestDistanceTo_Symmetric(t *testing.T) {
	pairs := [][2]Location{
		{mustLocation(t, 40.7128, -74.0060), mustLocation(t, 51.5074, -0.1278)},
		{mustLocation(t, -23.5505, -46.6333), mustLocation(t, -22.9068, -43.1729)},
		{mustLocation(t, 0, 179.9), mustLocation(t, 0, -179.9)},
	}
	for _, p := range pairs {
		ab := p[0].DistanceTo(p[1])
		ba := p[1].DistanceTo(p[0])
		if !almost(ab, ba, 1e-9) {
			t.Errorf("asymmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceTo_NewYorkLondon(t *testing.T) {
	d := mustLocation(t, 40.7128, -74.0060).DistanceTo(mustLocation(t, 51.5074, -0.1278))
	if !almost(d, 5570, 30) {
		t.Fatalf("want ~5570km, got %.1f", d)
	}
}

func TestDistanceTo_Antipodal(t *testing.T) {
	d := mustLocation(t, 0, 0).DistanceTo(mustLocation(t, 0, 180))
	if !almost(d, math.Pi*EarthRadiusKm, 1e-6) {
		t.Fatalf("want half circumference, got %v", d)
	}
}

func TestHaversine_Meters(t *testing.T) {
	km := HaversineKm(10, 10, 10.5, 10.5)
	m := Haversine(10, 10, 10.5, 10.5)
	if !almost(m, km*1000, 1e-6) {
		t.Fatalf("meters %v != km*1000 %v", m, km*1000)
	}
}

func TestWithinRadius_Boundary(t *testing.T) {
	center := mustLocation(t, -23.5505, -46.6333)
	const radius = 5.0

	for _, bearing := range []float64{0, 45, 90, 180, 270} {
		onEdge := destination(center, bearing, radius)
		d := onEdge.DistanceTo(center)
		if !almost(d, radius, 1e-9) {
			t.Fatalf("bearing %v: constructed point at %v km, want %v", bearing, d, radius)
		}
		if !onEdge.WithinRadius(center, d) {
			t.Errorf("bearing %v: point exactly on the radius must be inside", bearing)
		}

		beyond := destination(center, bearing, radius+1e-6)
		if beyond.WithinRadius(center, radius) {
			t.Errorf("bearing %v: point beyond the radius must be outside", bearing)
		}
	}
}

func TestWithinRadius_ZeroRadius(t *testing.T) {
	c := mustLocation(t, 1, 1)
	if !c.WithinRadius(c, 0) {
		t.Fatal("center is within a zero radius of itself")
	}
}

func TestEqual_Tolerance(t *testing.T) {
	a := mustLocation(t, 10, 20)
	if !a.Equal(mustLocation(t, 10+5e-7, 20-5e-7)) {
		t.Error("sub-tolerance delta must be equal")
	}
	if a.Equal(mustLocation(t, 10+2e-6, 20)) {
		t.Error("latitude delta above tolerance must differ")
	}
	if a.Equal(mustLocation(t, 10, 20+2e-6)) {
		t.Error("longitude delta above tolerance must differ")
	}
}

func TestValidateCoordinates(t *testing.T) {
	if !ValidateCoordinates(90, -180) {
		t.Error("bounds are inclusive")
	}
	if ValidateCoordinates(91, 0) || ValidateCoordinates(0, 181) || ValidateCoordinates(math.NaN(), 0) {
		t.Error("out of range accepted")
	}
}
