package match

import (
	"math"
	"testing"
)

var (
	milan   = Coordinate{Lat: 45.4654, Lon: 9.1859}
	toronto = Coordinate{Lat: 43.6532, Lon: -79.3832}
	lisbon  = Coordinate{Lat: 38.7223, Lon: -9.1393}
)

func TestDistanceMilanToronto(t *testing.T) {
	d := DistanceKM(milan.Lat, milan.Lon, toronto.Lat, toronto.Lon)
	if math.Abs(d-6680) > 50 {
		t.Errorf("Milan-Toronto distance = %.1f km; want 6680 +/- 50", d)
	}
}

func TestDistanceIdentity(t *testing.T) {
	points := []Coordinate{milan, toronto, {0, 0}, {-90, 0}, {90, 180}}
	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %v; want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]Coordinate{
		{milan, toronto},
		{milan, lisbon},
		{{0, 179.9}, {0, -179.9}},
		{{-45, 10}, {45, -10}},
	}
	for _, pair := range pairs {
		ab := Distance(pair[0], pair[1])
		ba := Distance(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Distance(%v,%v)=%v but reverse=%v", pair[0], pair[1], ab, ba)
		}
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	ac := Distance(milan, toronto)
	ab := Distance(milan, lisbon)
	bc := Distance(lisbon, toronto)
	if ac > ab+bc+1e-6 {
		t.Errorf("triangle inequality violated: %v > %v + %v", ac, ab, bc)
	}
}

func TestDistanceAntimeridian(t *testing.T) {
	// Two points 0.2 degrees of longitude apart across the antimeridian.
	d := DistanceKM(0, 179.9, 0, -179.9)
	if d > 25 {
		t.Errorf("antimeridian distance = %.1f km; want a short hop", d)
	}
}
