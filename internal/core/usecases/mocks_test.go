package usecases_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/paulmach/orb"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// --- Mock repositories ---

type mockRideRepo struct {
	createFn func(ctx context.Context, r *domain.Ride) error
	getFn    func(ctx context.Context, id string) (*domain.Ride, error)
	listFn   func(ctx context.Context) ([]domain.Ride, error)
	deleteFn func(ctx context.Context, id string) error

	created []domain.Ride
}

func (m *mockRideRepo) Create(ctx context.Context, r *domain.Ride) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	r.ID = fmt.Sprintf("r%d", len(m.created)+1)
	m.created = append(m.created, *r)
	return nil
}

func (m *mockRideRepo) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRideRepo) List(ctx context.Context) ([]domain.Ride, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return m.created, nil
}

func (m *mockRideRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockZoneRepo struct {
	createFn func(ctx context.Context, z *domain.AvoidZone) error
	listFn   func(ctx context.Context) ([]domain.AvoidZone, error)
	deleteFn func(ctx context.Context, id string) error

	created []domain.AvoidZone
}

func (m *mockZoneRepo) Create(ctx context.Context, z *domain.AvoidZone) error {
	if m.createFn != nil {
		return m.createFn(ctx, z)
	}
	z.ID = fmt.Sprintf("z%d", len(m.created)+1)
	m.created = append(m.created, *z)
	return nil
}

func (m *mockZoneRepo) GetByID(ctx context.Context, id string) (*domain.AvoidZone, error) {
	return nil, domain.ErrNotFound
}

func (m *mockZoneRepo) List(ctx context.Context) ([]domain.AvoidZone, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return m.created, nil
}

func (m *mockZoneRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock collaborators ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type mockEvents struct {
	rides   []string
	zones   []string
	deleted []string
}

func (m *mockEvents) PublishRideCreated(ctx context.Context, r *domain.Ride) error {
	m.rides = append(m.rides, r.ID)
	return nil
}

func (m *mockEvents) PublishZoneCreated(ctx context.Context, z *domain.AvoidZone) error {
	m.zones = append(m.zones, z.ID)
	return nil
}

func (m *mockEvents) PublishShapeDeleted(ctx context.Context, kind domain.ShapeKind, id string) error {
	m.deleted = append(m.deleted, string(kind)+":"+id)
	return nil
}

type mockScheduler struct {
	err       error
	scheduled []string
}

func (m *mockScheduler) ScheduleCleanup(ctx context.Context, kind domain.ShapeKind, id string) error {
	if m.err != nil {
		return m.err
	}
	m.scheduled = append(m.scheduled, string(kind)+":"+id)
	return nil
}

type mockBoundaries struct {
	fetchFn func(ctx context.Context, place string) (*domain.Boundary, error)
	calls   atomic.Int32
}

func (m *mockBoundaries) FetchBoundary(ctx context.Context, place string) (*domain.Boundary, error) {
	m.calls.Add(1)
	if m.fetchFn != nil {
		return m.fetchFn(ctx, place)
	}
	return nil, domain.ErrBoundaryNotFound
}

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, q string) ([]domain.GeocodeResult, error)
	calls     atomic.Int32
}

func (m *mockGeocoder) Geocode(ctx context.Context, q string) ([]domain.GeocodeResult, error) {
	m.calls.Add(1)
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, q)
	}
	return nil, nil
}

type mockSink struct {
	rides [][]domain.Coordinate
	zones [][]domain.Coordinate
}

func (m *mockSink) RideReady(points []domain.Coordinate) { m.rides = append(m.rides, points) }
func (m *mockSink) ZoneReady(ring []domain.Coordinate)   { m.zones = append(m.zones, ring) }

// recordingRenderer keeps the last value sent to every layer.
type recordingRenderer struct {
	mu        sync.Mutex
	line      orb.LineString
	polygon   orb.Polygon
	markers   []domain.Coordinate
	mask      orb.Polygon
	outline   domain.CityGeometry
	selection map[domain.ShapeKind][]domain.Coordinate
	dimmed    bool
	fits      []orb.Bound
	calls     int
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{selection: make(map[domain.ShapeKind][]domain.Coordinate)}
}

func (r *recordingRenderer) RenderPreviewLine(l orb.LineString) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.line = l
	r.calls++
}

func (r *recordingRenderer) RenderPreviewPolygon(p orb.Polygon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polygon = p
	r.calls++
}

func (r *recordingRenderer) RenderMarkers(mode domain.DrawingMode, pts []domain.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers = pts
	r.calls++
}

func (r *recordingRenderer) RenderMask(p orb.Polygon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mask = p
}

func (r *recordingRenderer) RenderBoundaryOutline(g domain.CityGeometry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outline = g
}

func (r *recordingRenderer) RenderSelection(kind domain.ShapeKind, coords []domain.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selection[kind] = coords
}

func (r *recordingRenderer) SetDimmed(d bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dimmed = d
}

func (r *recordingRenderer) FitViewport(b orb.Bound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fits = append(r.fits, b)
}

var (
	zocalo = domain.Coordinate{-99.1332, 19.4326}
	angel  = domain.Coordinate{-99.1767, 19.4270}
)
