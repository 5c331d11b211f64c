//go:build integration
// +build integration

package natsadapter

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/calummacrae/buswatch/internal/core/domain"
)

// natsURL returns the broker address for integration runs.
func natsURL() string {
	if url := os.Getenv("NATS_URL"); url != "" {
		return url
	}
	return nats.DefaultURL
}

func TestPublisher_PublishMatch_Integration(t *testing.T) {
	pub, err := NewPublisher(natsURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pub.Close()

	sub, err := nats.Connect(natsURL())
	if err != nil {
		t.Fatalf("subscriber connect: %v", err)
	}
	defer sub.Close()

	inbox := make(chan *nats.Msg, 1)
	subscription, err := sub.ChanSubscribe("buswatch.match.>", inbox)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer subscription.Unsubscribe()
	if err := sub.Flush(); err != nil {
		t.Fatalf("flush subscription: %v", err)
	}

	match := domain.Match{
		Vehicle: domain.Vehicle{
			ServiceNumber:      "X7 Express",
			ServiceDescription: "Glasgow - East Kilbride",
			Location:           domain.GeoPoint{Lat: 55.8642, Lon: -4.2518},
		},
		Waypoint: domain.Waypoint{
			Name:     "Central Station",
			Location: domain.GeoPoint{Lat: 55.8642, Lon: -4.2518},
		},
		DistanceMeters: 42,
		ObservedAt:     time.Now(),
	}

	if err := pub.PublishMatch(context.Background(), match); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := pub.conn.Flush(); err != nil {
		t.Fatalf("flush publish: %v", err)
	}

	select {
	case msg := <-inbox:
		// The space in the service number maps to a dash in the subject.
		if msg.Subject != "buswatch.match.X7-Express" {
			t.Errorf("unexpected subject: %s", msg.Subject)
		}
		var got domain.Match
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.Vehicle.ServiceNumber != "X7 Express" {
			t.Errorf("unexpected service number: %q", got.Vehicle.ServiceNumber)
		}
		if got.Waypoint.Name != "Central Station" {
			t.Errorf("unexpected waypoint: %q", got.Waypoint.Name)
		}
		if got.DistanceMeters != 42 {
			t.Errorf("unexpected distance: %v", got.DistanceMeters)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no match event received within 3s")
	}
}
