package natsadapter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// runJetStream starts an in-process NATS server with JetStream on a random
// port and returns its client URL.
func runJetStream(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		ServerName: "ridemycity-test",
		Host:       "127.0.0.1",
		Port:       -1,
		JetStream:  true,
		StoreDir:   t.TempDir(),
		NoLog:      true,
		NoSigs:     true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns.ClientURL()
}

func newTestPublisher(t *testing.T, url string) *Publisher {
	t.Helper()
	p, err := NewPublisher(url)
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(p.Close)
	return p
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "shapes.ride.created", Subject(domain.KindRide, EventCreated))
	assert.Equal(t, "shapes.avoid-zone.deleted", Subject(domain.KindZone, EventDeleted))
}

func TestPublisher_EnsuresStreamTwice(t *testing.T) {
	url := runJetStream(t)
	newTestPublisher(t, url)
	p := newTestPublisher(t, url)

	info, err := p.js.StreamInfo(StreamName)
	require.NoError(t, err)
	assert.Equal(t, []string{SubjectAll}, info.Config.Subjects)
}

func TestPublisher_DeduplicatesRetriedDeletes(t *testing.T) {
	p := newTestPublisher(t, runJetStream(t))
	ctx := context.Background()

	require.NoError(t, p.PublishShapeDeleted(ctx, domain.KindRide, "r1"))
	require.NoError(t, p.PublishShapeDeleted(ctx, domain.KindRide, "r1"))
	require.NoError(t, p.PublishShapeDeleted(ctx, domain.KindZone, "r1"))

	info, err := p.js.StreamInfo(StreamName)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.State.Msgs)
}

func TestSubscriber_ReceivesShapeEvents(t *testing.T) {
	url := runJetStream(t)
	p := newTestPublisher(t, url)

	sub, err := NewSubscriber(url)
	require.NoError(t, err)
	t.Cleanup(sub.Close)

	var (
		mu     sync.Mutex
		events []domain.ShapeEvent
	)
	ctx := context.Background()
	err = sub.SubscribeShapeEvents(ctx, "test-consumer", func(ctx context.Context, ev *domain.ShapeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, *ev)
		return nil
	})
	require.NoError(t, err)

	ride := &domain.Ride{ID: "r1", Coordinates: []domain.Coordinate{{-99.1332, 19.4326}, {-99.1767, 19.427}}}
	require.NoError(t, p.PublishRideCreated(ctx, ride))
	require.NoError(t, p.PublishShapeDeleted(ctx, domain.KindRide, "r1"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 2
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, EventCreated, events[0].Type)
	assert.Equal(t, domain.KindRide, events[0].Kind)
	assert.Len(t, events[0].Coords, 2)
	assert.Equal(t, EventDeleted, events[1].Type)
	assert.Empty(t, events[1].Coords)
	assert.True(t, events[1].OccurredAt.Equal(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestSubscriber_RedeliversOnHandlerError(t *testing.T) {
	url := runJetStream(t)
	p := newTestPublisher(t, url)

	sub, err := NewSubscriber(url)
	require.NoError(t, err)
	t.Cleanup(sub.Close)

	var calls atomic.Int32
	err = sub.SubscribeShapeEvents(context.Background(), "flaky", func(ctx context.Context, ev *domain.ShapeEvent) error {
		if calls.Add(1) == 1 {
			return assert.AnError
		}
		return nil
	})
	require.NoError(t, err)

	zone := &domain.AvoidZone{ID: "z1", Coordinates: []domain.Coordinate{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	require.NoError(t, p.PublishZoneCreated(context.Background(), zone))

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)
}
