package geospatial_test

import (
	"math"
	"testing"

	"github.com/calummacrae/buswatch/internal/pkg/geospatial"
)

func TestHaversine_SamePoint(t *testing.T) {
	d := geospatial.Haversine(55.8617, -4.2583, 55.8617, -4.2583)
	if d != 0 {
		t.Errorf("expected 0 meters for identical points, got %v", d)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Glasgow George Square to Edinburgh Waverley, roughly 67.5 km.
	d := geospatial.Haversine(55.8617, -4.2583, 55.9533, -3.1883)
	if math.Abs(d-67463.7) > 1.0 {
		t.Errorf("expected ~67463.7 meters, got %v", d)
	}
}

func TestHaversine_Antipodal(t *testing.T) {
	// Antipodal points are half the Earth's circumference apart.
	d := geospatial.Haversine(0, 0, 0, 180)
	want := math.Pi * 6371000.0
	if math.Abs(d-want) > 1e-6 {
		t.Errorf("expected %v meters, got %v", want, d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	ab := geospatial.Haversine(55.8617, -4.2583, 51.5007, -0.1246)
	ba := geospatial.Haversine(51.5007, -0.1246, 55.8617, -4.2583)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("expected symmetric distances, got %v and %v", ab, ba)
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(55.8617, -4.2583, 500)

	if minLat >= 55.8617 || maxLat <= 55.8617 {
		t.Errorf("expected box to straddle the center latitude, got [%v, %v]", minLat, maxLat)
	}
	if minLon >= -4.2583 || maxLon <= -4.2583 {
		t.Errorf("expected box to straddle the center longitude, got [%v, %v]", minLon, maxLon)
	}

	// A point 500 m due north must land inside the box.
	north := 55.8617 + 500.0/111320.0
	if north > maxLat {
		t.Errorf("expected %v <= %v", north, maxLat)
	}
}
