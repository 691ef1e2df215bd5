package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jmateos/dispatchmap/internal/core/domain"
	"github.com/jmateos/dispatchmap/internal/core/ports"
	"github.com/jmateos/dispatchmap/internal/pkg/metrics"
)

// Subscriber feeds position snapshots from NATS JetStream into the map core.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribePositions relays every vehicle and charger snapshot into sink.
// A snapshot is the full current item set of one type; the sink replaces
// the corresponding resource's features wholesale.
func (s *Subscriber) SubscribePositions(ctx context.Context, sink ports.MapUpdater) error {
	for subject, itemType := range map[string]domain.ItemType{
		SubjectVehicles: domain.ItemTypeVehicles,
		SubjectChargers: domain.ItemTypeChargers,
	} {
		sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
			var items []domain.MapItem
			if err := json.Unmarshal(msg.Data, &items); err != nil {
				_ = msg.Nak()
				return
			}
			if err := sink.UpdateMap(items, itemType, ports.UpdateOptions{}); err != nil {
				_ = msg.Nak()
				return
			}
			metrics.PositionsConsumed.WithLabelValues(string(itemType)).Add(float64(len(items)))
			_ = msg.Ack()
		},
			nats.Durable("map-sync-"+string(itemType)),
			nats.ManualAck(),
			nats.MaxDeliver(3),
		)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

// Conn exposes the underlying connection for health checks.
func (s *Subscriber) Conn() *nats.Conn {
	return s.conn
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
