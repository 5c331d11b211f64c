package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/calummacrae/buswatch/internal/core/domain"
)

// subjectPrefix is the root of the buswatch subject hierarchy.
const subjectPrefix = "buswatch.match."

// Publisher implements ports.EventPublisher on a plain NATS connection.
// Publishes are fire-and-forget: no stream, no ack, no redelivery.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS. The connection keeps retrying in the
// background, so a late-starting server is tolerated.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("buswatch-watcher"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: conn}, nil
}

// PublishMatch emits one event per proximity match on
// buswatch.match.<serviceNumber>.
func (p *Publisher) PublishMatch(ctx context.Context, m domain.Match) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return p.conn.Publish(subjectPrefix+subjectToken(m.Vehicle.ServiceNumber), data)
}

// IsConnected reports whether the connection is currently up.
func (p *Publisher) IsConnected() bool {
	return p != nil && p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// subjectToken makes a service number safe to embed in a subject.
// Spaces, dots and wildcard characters would otherwise split or match
// across the hierarchy.
func subjectToken(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}
