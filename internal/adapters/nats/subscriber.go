package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// ShapeEventHandler processes one shape event. Returning an error asks
// JetStream to redeliver it.
type ShapeEventHandler func(ctx context.Context, ev *domain.ShapeEvent) error

// Subscriber consumes shape events from the SHAPES stream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS with JetStream enabled.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeShapeEvents delivers every shape event to handler through the
// durable consumer named durable. Undecodable messages are terminated so
// they are not redelivered forever.
func (s *Subscriber) SubscribeShapeEvents(ctx context.Context, durable string, handler ShapeEventHandler) error {
	sub, err := s.js.Subscribe(SubjectAll, func(msg *nats.Msg) {
		var ev domain.ShapeEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(5),
		nats.DeliverNew(),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", durable, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
