package ops_test

import (
	"errors"
	"testing"

	"github.com/calummacrae/buswatch/internal/core/domain"
	"github.com/calummacrae/buswatch/internal/core/usecases"
)

func TestStatusTracker_BeforeAnyCycle(t *testing.T) {
	snap := makeTracker().Snapshot()

	if snap.CyclesRun != 0 {
		t.Errorf("expected 0 cycles, got %d", snap.CyclesRun)
	}
	if snap.LastCycleAt != nil {
		t.Errorf("expected no last cycle time, got %v", snap.LastCycleAt)
	}
	if snap.LastError != "" {
		t.Errorf("expected no error, got %q", snap.LastError)
	}
}

func TestStatusTracker_AccumulatesAcrossCycles(t *testing.T) {
	tracker := makeTracker()

	tracker.RecordCycle(usecases.CycleSummary{
		VehiclesSeen:   4,
		Matches:        []domain.Match{{Waypoint: domain.Waypoint{Name: "Central Station"}}},
		NotifyFailures: 1,
	}, nil)
	tracker.RecordCycle(usecases.CycleSummary{
		VehiclesSeen: 6,
		Matches: []domain.Match{
			{Waypoint: domain.Waypoint{Name: "Central Station"}},
			{Waypoint: domain.Waypoint{Name: "Botanic Gardens"}},
		},
	}, nil)

	snap := tracker.Snapshot()
	if snap.CyclesRun != 2 {
		t.Errorf("expected 2 cycles, got %d", snap.CyclesRun)
	}
	if snap.MatchesTotal != 3 {
		t.Errorf("expected 3 matches total, got %d", snap.MatchesTotal)
	}
	if snap.NotifyFailures != 1 {
		t.Errorf("expected 1 notify failure, got %d", snap.NotifyFailures)
	}
	if snap.LastCycleVehicles != 6 || snap.LastCycleMatches != 2 {
		t.Errorf("unexpected last cycle counters: %d vehicles, %d matches",
			snap.LastCycleVehicles, snap.LastCycleMatches)
	}
	if !snap.LastCycleOK {
		t.Error("expected the last cycle to be marked ok")
	}
	if snap.LastCycleAt == nil {
		t.Error("expected a last cycle time")
	}
}

func TestStatusTracker_RecordsCycleError(t *testing.T) {
	tracker := makeTracker()
	tracker.RecordCycle(usecases.CycleSummary{VehiclesSeen: 3}, nil)
	tracker.RecordCycle(usecases.CycleSummary{}, errors.New("fetch vehicles: timeout"))

	snap := tracker.Snapshot()
	if snap.LastCycleOK {
		t.Error("expected the last cycle to be marked failed")
	}
	if snap.LastError != "fetch vehicles: timeout" {
		t.Errorf("unexpected last error: %q", snap.LastError)
	}
	if snap.LastErrorAt == nil {
		t.Error("expected a last error time")
	}
	if snap.LastCycleVehicles != 0 {
		t.Errorf("expected last cycle vehicles reset on error, got %d", snap.LastCycleVehicles)
	}
	if snap.CyclesRun != 2 {
		t.Errorf("expected failed cycles to still count, got %d", snap.CyclesRun)
	}
}
