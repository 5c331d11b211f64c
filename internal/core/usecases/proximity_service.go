package usecases

import (
	"github.com/calummacrae/buswatch/internal/core/domain"
	"github.com/calummacrae/buswatch/internal/pkg/geospatial"
)

// DefaultThresholdMeters is the alert distance used when none is configured.
const DefaultThresholdMeters = 200.0

// ProximityService decides whether a vehicle is close enough to a watched
// waypoint to alert on.
type ProximityService struct {
	waypoints []domain.Waypoint
	threshold float64
}

// NewProximityService creates a new ProximityService. A threshold of zero
// or less falls back to DefaultThresholdMeters.
func NewProximityService(waypoints []domain.Waypoint, thresholdMeters float64) *ProximityService {
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultThresholdMeters
	}
	return &ProximityService{waypoints: waypoints, threshold: thresholdMeters}
}

// FirstWithinRange returns the first waypoint, in configured order, at or
// under the threshold distance from p. Configured order wins over
// closeness: a nearer waypoint later in the list is not preferred.
func (s *ProximityService) FirstWithinRange(p domain.GeoPoint) (domain.Waypoint, float64, bool) {
	for _, w := range s.waypoints {
		d := geospatial.Haversine(p.Lat, p.Lon, w.Location.Lat, w.Location.Lon)
		if d <= s.threshold {
			return w, d, true
		}
	}
	return domain.Waypoint{}, 0, false
}
