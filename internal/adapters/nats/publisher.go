package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

const (
	// StreamName is the JetStream stream holding shape events.
	StreamName = "SHAPES"
	// SubjectAll matches every shape event subject.
	SubjectAll = "shapes.>"

	EventCreated = "created"
	EventDeleted = "deleted"
)

// Subject returns the subject of a shape event, e.g. "shapes.ride.created".
func Subject(kind domain.ShapeKind, eventType string) string {
	return "shapes." + string(kind) + "." + eventType
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	now  func() time.Time
}

// NewPublisher connects to NATS and makes sure the SHAPES stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// already there, bring its config up to date
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, now: time.Now}, nil
}

func (p *Publisher) PublishRideCreated(ctx context.Context, ride *domain.Ride) error {
	return p.publish(ctx, domain.ShapeEvent{
		Type:   EventCreated,
		Kind:   domain.KindRide,
		ID:     ride.ID,
		Coords: ride.Coordinates,
	})
}

func (p *Publisher) PublishZoneCreated(ctx context.Context, zone *domain.AvoidZone) error {
	return p.publish(ctx, domain.ShapeEvent{
		Type:   EventCreated,
		Kind:   domain.KindZone,
		ID:     zone.ID,
		Coords: zone.Coordinates,
	})
}

func (p *Publisher) PublishShapeDeleted(ctx context.Context, kind domain.ShapeKind, id string) error {
	return p.publish(ctx, domain.ShapeEvent{Type: EventDeleted, Kind: kind, ID: id})
}

func (p *Publisher) publish(ctx context.Context, ev domain.ShapeEvent) error {
	ev.OccurredAt = p.now().UTC()
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	// Msg-Id lets JetStream drop duplicates when a workflow activity retries.
	_, err = p.js.Publish(Subject(ev.Kind, ev.Type), data,
		nats.Context(ctx),
		nats.MsgId(ev.Type+":"+string(ev.Kind)+":"+ev.ID),
	)
	return err
}

// Conn returns the underlying connection, e.g. for readiness checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("ridemycity"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
