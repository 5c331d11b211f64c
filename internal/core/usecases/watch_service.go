package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calummacrae/buswatch/internal/core/domain"
	"github.com/calummacrae/buswatch/internal/core/ports"
)

// CycleSummary reports what a single polling cycle saw and did.
type CycleSummary struct {
	VehiclesSeen    int
	Matches         []domain.Match
	NotifyFailures  int
	PublishFailures int
}

// WatchService runs one polling cycle: fetch vehicle positions, match
// them against the watched waypoints and alert on every match.
type WatchService struct {
	source    ports.VehicleSource
	proximity *ProximityService
	notifier  ports.Notifier
	events    ports.EventPublisher
}

// NewWatchService creates a new WatchService. events may be nil when no
// broker is configured.
func NewWatchService(
	source ports.VehicleSource,
	proximity *ProximityService,
	notifier ports.Notifier,
	events ports.EventPublisher,
) *WatchService {
	return &WatchService{source: source, proximity: proximity, notifier: notifier, events: events}
}

// CheckVehicles fetches the current vehicle positions and alerts for each
// vehicle within range of a waypoint. Every matching vehicle produces its
// own notification, sent in feed order; a failed send or publish is
// counted and the cycle carries on.
func (s *WatchService) CheckVehicles(ctx context.Context) (CycleSummary, error) {
	vehicles, err := s.source.Fetch(ctx)
	if err != nil {
		return CycleSummary{}, fmt.Errorf("fetch vehicles: %w", err)
	}

	summary := CycleSummary{VehiclesSeen: len(vehicles)}
	for _, v := range vehicles {
		waypoint, distance, ok := s.proximity.FirstWithinRange(v.Location)
		if !ok {
			slog.Debug("vehicle not near any stop", "service", v.ServiceNumber)
			continue
		}

		match := domain.Match{
			Vehicle:        v,
			Waypoint:       waypoint,
			DistanceMeters: distance,
			ObservedAt:     time.Now(),
		}
		summary.Matches = append(summary.Matches, match)

		if err := s.notifier.Notify(ctx, match); err != nil {
			summary.NotifyFailures++
			slog.Error("send notification",
				"service", v.ServiceNumber,
				"stop", waypoint.Name,
				"error", err)
		}

		if s.events != nil {
			if err := s.events.PublishMatch(ctx, match); err != nil {
				summary.PublishFailures++
				slog.Warn("publish match event",
					"service", v.ServiceNumber,
					"error", err)
			}
		}
	}

	return summary, nil
}
