package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Waypoint is a named location watched for approaching vehicles.
type Waypoint struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
}

// ParseWaypoints parses a semicolon-separated list of "Name,lat,lng"
// records. Records with the wrong field count or non-numeric coordinates
// are skipped, with one warning string returned per skipped record.
// Names are kept as-is: duplicates and out-of-range coordinates are the
// caller's problem.
func ParseWaypoints(raw string) ([]Waypoint, []string) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var (
		waypoints []Waypoint
		warnings  []string
	)
	for _, rec := range strings.Split(raw, ";") {
		parts := strings.Split(rec, ",")
		if len(parts) != 3 {
			warnings = append(warnings, fmt.Sprintf("bus stop record %q is not in Name,lat,lng form, skipping", strings.TrimSpace(rec)))
			continue
		}

		name := strings.TrimSpace(parts[0])
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if latErr != nil || lngErr != nil {
			warnings = append(warnings, fmt.Sprintf("bus stop %q has invalid coordinates, skipping", name))
			continue
		}

		waypoints = append(waypoints, Waypoint{Name: name, Location: GeoPoint{Lat: lat, Lon: lng}})
	}

	return waypoints, warnings
}
