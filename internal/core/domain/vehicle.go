package domain

import "time"

// Vehicle is a single real-time vehicle reading from the tracking feed.
type Vehicle struct {
	ServiceNumber      string   `json:"service_number"`
	ServiceDescription string   `json:"service_description"`
	Location           GeoPoint `json:"location"`
}

// Match records a vehicle observed within the alert threshold of a waypoint.
type Match struct {
	Vehicle        Vehicle   `json:"vehicle"`
	Waypoint       Waypoint  `json:"waypoint"`
	DistanceMeters float64   `json:"distance_meters"`
	ObservedAt     time.Time `json:"observed_at"`
}
