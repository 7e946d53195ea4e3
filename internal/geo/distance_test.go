package geo_test

import (
	"math"
	"testing"

	"github.com/jonesrussell/contextual-news/internal/geo"
)

func TestDistanceKm_SamePoint(t *testing.T) {
	p := geo.Point{Latitude: 43.65, Longitude: -79.38}

	if d := geo.DistanceKm(p, p); d != 0 {
		t.Fatalf("expected 0 km for identical points, got %f", d)
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Toronto to Ottawa is roughly 350 km great-circle.
	toronto := geo.Point{Latitude: 43.6532, Longitude: -79.3832}
	ottawa := geo.Point{Latitude: 45.4215, Longitude: -75.6972}

	d := geo.DistanceKm(toronto, ottawa)
	if d < 330 || d > 370 {
		t.Fatalf("Toronto-Ottawa distance out of expected range: %f km", d)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := geo.Point{Latitude: 51.5074, Longitude: -0.1278}
	b := geo.Point{Latitude: 48.8566, Longitude: 2.3522}

	ab := geo.DistanceKm(a, b)
	ba := geo.DistanceKm(b, a)

	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestDistanceKm_SmallOffset(t *testing.T) {
	// One degree of latitude is about 111 km.
	a := geo.Point{Latitude: 0, Longitude: 0}
	b := geo.Point{Latitude: 1, Longitude: 0}

	d := geo.DistanceKm(a, b)
	if d < 110 || d > 112 {
		t.Fatalf("one degree of latitude should be ~111 km, got %f", d)
	}
}

func TestDistanceKm_NaNPropagates(t *testing.T) {
	a := geo.Point{Latitude: math.NaN(), Longitude: 0}
	b := geo.Point{Latitude: 0, Longitude: 0}

	if d := geo.DistanceKm(a, b); !math.IsNaN(d) {
		t.Fatalf("expected NaN to propagate, got %f", d)
	}
}
