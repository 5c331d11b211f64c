package ops

import (
	"sync"
	"time"

	"github.com/calummacrae/buswatch/internal/core/domain"
	"github.com/calummacrae/buswatch/internal/core/usecases"
	"github.com/calummacrae/buswatch/internal/pkg/geospatial"
)

// Status is a point-in-time snapshot of the watcher, served on /v1/status.
type Status struct {
	StartedAt    time.Time       `json:"started_at"`
	Uptime       string          `json:"uptime"`
	Waypoints    int             `json:"waypoints"`
	Origin       domain.GeoPoint `json:"origin"`
	RadiusMeters int             `json:"radius_meters"`
	Coverage     domain.Bounds   `json:"coverage"`
	PollInterval string          `json:"poll_interval"`

	CyclesRun         uint64     `json:"cycles_run"`
	LastCycleAt       *time.Time `json:"last_cycle_at,omitempty"`
	LastCycleOK       bool       `json:"last_cycle_ok"`
	LastCycleVehicles int        `json:"last_cycle_vehicles"`
	LastCycleMatches  int        `json:"last_cycle_matches"`
	MatchesTotal      uint64     `json:"matches_total"`
	NotifyFailures    uint64     `json:"notify_failures_total"`
	PublishFailures   uint64     `json:"publish_failures_total"`
	LastError         string     `json:"last_error,omitempty"`
	LastErrorAt       *time.Time `json:"last_error_at,omitempty"`
}

// StatusTracker accumulates per-cycle outcomes for the ops endpoints.
// The poll loop writes, HTTP handlers read.
type StatusTracker struct {
	startedAt    time.Time
	waypoints    int
	origin       domain.GeoPoint
	radiusMeters int
	pollInterval time.Duration
	coverage     domain.Bounds

	mu                sync.Mutex
	cyclesRun         uint64
	lastCycleAt       time.Time
	lastCycleOK       bool
	lastCycleVehicles int
	lastCycleMatches  int
	matchesTotal      uint64
	notifyFailures    uint64
	publishFailures   uint64
	lastError         string
	lastErrorAt       time.Time
}

// NewStatusTracker creates a tracker for the given watch configuration.
func NewStatusTracker(waypoints []domain.Waypoint, origin domain.GeoPoint, radiusMeters int, pollInterval time.Duration) *StatusTracker {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(origin.Lat, origin.Lon, float64(radiusMeters))

	return &StatusTracker{
		startedAt:    time.Now(),
		waypoints:    len(waypoints),
		origin:       origin,
		radiusMeters: radiusMeters,
		pollInterval: pollInterval,
		coverage:     domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon},
	}
}

// StartedAt returns the process start time.
func (t *StatusTracker) StartedAt() time.Time {
	return t.startedAt
}

// RecordCycle folds one polling cycle's outcome into the tracker.
func (t *StatusTracker) RecordCycle(summary usecases.CycleSummary, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.cyclesRun++
	t.lastCycleAt = now
	t.lastCycleOK = err == nil

	if err != nil {
		t.lastError = err.Error()
		t.lastErrorAt = now
		t.lastCycleVehicles = 0
		t.lastCycleMatches = 0
		return
	}

	t.lastCycleVehicles = summary.VehiclesSeen
	t.lastCycleMatches = len(summary.Matches)
	t.matchesTotal += uint64(len(summary.Matches))
	t.notifyFailures += uint64(summary.NotifyFailures)
	t.publishFailures += uint64(summary.PublishFailures)
}

// Snapshot returns a copy of the current state.
func (t *StatusTracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Status{
		StartedAt:         t.startedAt,
		Uptime:            time.Since(t.startedAt).String(),
		Waypoints:         t.waypoints,
		Origin:            t.origin,
		RadiusMeters:      t.radiusMeters,
		Coverage:          t.coverage,
		PollInterval:      t.pollInterval.String(),
		CyclesRun:         t.cyclesRun,
		LastCycleOK:       t.lastCycleOK,
		LastCycleVehicles: t.lastCycleVehicles,
		LastCycleMatches:  t.lastCycleMatches,
		MatchesTotal:      t.matchesTotal,
		NotifyFailures:    t.notifyFailures,
		PublishFailures:   t.publishFailures,
		LastError:         t.lastError,
	}
	if !t.lastCycleAt.IsZero() {
		at := t.lastCycleAt
		s.LastCycleAt = &at
	}
	if !t.lastErrorAt.IsZero() {
		at := t.lastErrorAt
		s.LastErrorAt = &at
	}

	return s
}
