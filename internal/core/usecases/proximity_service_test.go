package usecases_test

import (
	"math"
	"testing"

	"github.com/calummacrae/buswatch/internal/core/domain"
	"github.com/calummacrae/buswatch/internal/core/usecases"
	"github.com/calummacrae/buswatch/internal/pkg/geospatial"
)

const (
	baseLat = 51.5
	baseLon = -0.1

	// Latitude offsets that land a point almost exactly 200 m and 201 m
	// due north of (baseLat, baseLon).
	offset200m = 0.0017986432118374611
	offset201m = 0.0018076364278966485
)

func singleWaypoint() []domain.Waypoint {
	return []domain.Waypoint{
		{Name: "Central Station", Location: domain.GeoPoint{Lat: baseLat, Lon: baseLon}},
	}
}

func TestProximityService_FirstWithinRange_AtWaypoint(t *testing.T) {
	svc := usecases.NewProximityService(singleWaypoint(), 200)

	w, d, ok := svc.FirstWithinRange(domain.GeoPoint{Lat: baseLat, Lon: baseLon})
	if !ok {
		t.Fatal("expected a match for a vehicle at the waypoint itself")
	}
	if w.Name != "Central Station" {
		t.Errorf("expected Central Station, got %s", w.Name)
	}
	if d != 0 {
		t.Errorf("expected distance 0, got %v", d)
	}
}

func TestProximityService_FirstWithinRange_WithinThreshold(t *testing.T) {
	svc := usecases.NewProximityService(singleWaypoint(), 200)

	_, d, ok := svc.FirstWithinRange(domain.GeoPoint{Lat: baseLat + offset200m, Lon: baseLon})
	if !ok {
		t.Fatalf("expected a match at %v meters", d)
	}
	if d > 200 {
		t.Errorf("expected distance at or under 200, got %v", d)
	}
}

func TestProximityService_FirstWithinRange_BeyondThreshold(t *testing.T) {
	svc := usecases.NewProximityService(singleWaypoint(), 200)

	_, _, ok := svc.FirstWithinRange(domain.GeoPoint{Lat: baseLat + offset201m, Lon: baseLon})
	if ok {
		t.Error("expected no match for a vehicle 201 meters away")
	}
}

func TestProximityService_FirstWithinRange_ThresholdIsInclusive(t *testing.T) {
	vehicle := domain.GeoPoint{Lat: baseLat + offset201m, Lon: baseLon}
	d := geospatial.Haversine(vehicle.Lat, vehicle.Lon, baseLat, baseLon)

	svc := usecases.NewProximityService(singleWaypoint(), d)
	if _, _, ok := svc.FirstWithinRange(vehicle); !ok {
		t.Error("expected a match at exactly the threshold distance")
	}

	svc = usecases.NewProximityService(singleWaypoint(), math.Nextafter(d, 0))
	if _, _, ok := svc.FirstWithinRange(vehicle); ok {
		t.Error("expected no match just past the threshold")
	}
}

func TestProximityService_FirstWithinRange_PrefersConfiguredOrder(t *testing.T) {
	// The second waypoint is much closer, but the first in-range waypoint
	// in configured order is the one reported.
	waypoints := []domain.Waypoint{
		{Name: "Farther", Location: domain.GeoPoint{Lat: baseLat + 0.001618778890653715, Lon: baseLon}},  // ~180 m
		{Name: "Nearer", Location: domain.GeoPoint{Lat: baseLat + 0.0004496608029593653, Lon: baseLon}}, // ~50 m
	}
	svc := usecases.NewProximityService(waypoints, 200)

	w, d, ok := svc.FirstWithinRange(domain.GeoPoint{Lat: baseLat, Lon: baseLon})
	if !ok {
		t.Fatal("expected a match")
	}
	if w.Name != "Farther" {
		t.Errorf("expected Farther (first in configured order), got %s", w.Name)
	}
	if math.Abs(d-180) > 0.1 {
		t.Errorf("expected ~180 meters, got %v", d)
	}
}

func TestProximityService_FirstWithinRange_NoWaypoints(t *testing.T) {
	svc := usecases.NewProximityService(nil, 200)

	_, _, ok := svc.FirstWithinRange(domain.GeoPoint{Lat: baseLat, Lon: baseLon})
	if ok {
		t.Error("expected no match with no waypoints configured")
	}
}

func TestProximityService_DefaultThreshold(t *testing.T) {
	svc := usecases.NewProximityService(singleWaypoint(), 0)

	if _, _, ok := svc.FirstWithinRange(domain.GeoPoint{Lat: baseLat + offset200m, Lon: baseLon}); !ok {
		t.Error("expected the default 200 meter threshold to apply")
	}
	if _, _, ok := svc.FirstWithinRange(domain.GeoPoint{Lat: baseLat + offset201m, Lon: baseLon}); ok {
		t.Error("expected no match past the default threshold")
	}
}
