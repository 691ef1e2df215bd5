// Package natsadapter carries position snapshots between producers and the
// map sync core over NATS JetStream.
package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jmateos/dispatchmap/internal/core/domain"
)

// Subjects carrying full item-set snapshots, one message per batch.
const (
	SubjectVehicles = "dispatch.positions.vehicles"
	SubjectChargers = "dispatch.positions.chargers"
)

// Publisher emits position snapshots to JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream and ensures the
// positions stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Snapshots supersede each other quickly; a short retention window is
	// enough to ride out consumer restarts.
	cfg := nats.StreamConfig{
		Name:      "DISPATCH_POSITIONS",
		Subjects:  []string{"dispatch.positions.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSnapshot publishes the full current item set of one type.
func (p *Publisher) PublishSnapshot(ctx context.Context, itemType domain.ItemType, items []domain.MapItem) error {
	subject, err := subjectFor(itemType)
	if err != nil {
		return err
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data)
	return err
}

func subjectFor(itemType domain.ItemType) (string, error) {
	switch itemType {
	case domain.ItemTypeVehicles:
		return SubjectVehicles, nil
	case domain.ItemTypeChargers:
		return SubjectChargers, nil
	default:
		return "", fmt.Errorf("unknown item type %q", itemType)
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
