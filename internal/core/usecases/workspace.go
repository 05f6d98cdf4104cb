package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/ports"
	"github.com/samirrijal/ridemycity/internal/pkg/metrics"
)

// Workspace is one map surface: a drawing session, a selection, the saved
// shapes it shows and a boundary view, all rendering to the same renderer.
//
// Methods serialize on the workspace lock, so the session and selection are
// only ever touched by one caller at a time. Boundary lookups run outside
// that lock; BoundaryView orders them on its own.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	drawing   *DrawingSession
	selection *Selection
	shapes    *SavedShapes
	boundary  *BoundaryView
	renderer  ports.MapRenderer
	svc       *ShapeService
	pending   []SaveOutcome
}

// WorkspaceView is a snapshot of everything a workspace shows.
type WorkspaceView struct {
	ID        string        `json:"id"`
	Drawing   DrawingView   `json:"drawing"`
	Selection SelectionView `json:"selection"`
	Boundary  string        `json:"boundary,omitempty"`
	Rides     int           `json:"rides"`
	Zones     int           `json:"zones"`
}

// SaveResult is what a workspace save produced.
type SaveResult struct {
	Outcome SaveOutcome       `json:"outcome"`
	Ride    *domain.Ride      `json:"ride,omitempty"`
	Zone    *domain.AvoidZone `json:"zone,omitempty"`
}

func newWorkspace(id string, svc *ShapeService, boundaries ports.BoundaryProvider, renderer ports.MapRenderer) *Workspace {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	w := &Workspace{
		ID:        id,
		CreatedAt: time.Now(),
		shapes:    NewSavedShapes(),
		renderer:  renderer,
		svc:       svc,
	}
	w.drawing = NewDrawingSession(renderer, w)
	w.selection = NewSelection(w.shapes, renderer)
	w.boundary = NewBoundaryView(boundaries, renderer)
	return w
}

// RideReady queues a finished ride; Save persists it.
func (w *Workspace) RideReady(points []domain.Coordinate) {
	w.pending = append(w.pending, SaveOutcome{Emitted: true, Kind: domain.KindRide, Points: points})
}

// ZoneReady queues a finished zone; Save persists it.
func (w *Workspace) ZoneReady(ring []domain.Coordinate) {
	w.pending = append(w.pending, SaveOutcome{Emitted: true, Kind: domain.KindZone, Points: ring})
}

// Renderer returns the renderer the workspace draws to.
func (w *Workspace) Renderer() ports.MapRenderer { return w.renderer }

// Reload replaces the saved shapes with the current persisted ones.
func (w *Workspace) Reload(ctx context.Context) error {
	if w.svc == nil {
		return nil
	}
	rides, err := w.svc.ListRides(ctx)
	if err != nil {
		return fmt.Errorf("load rides: %w", err)
	}
	zones, err := w.svc.ListZones(ctx)
	if err != nil {
		return fmt.Errorf("load avoid zones: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.shapes.Load(rides, zones)
	return nil
}

// View returns the current snapshot.
func (w *Workspace) View() WorkspaceView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Workspace) viewLocked() WorkspaceView {
	v := WorkspaceView{
		ID:        w.ID,
		Drawing:   w.drawing.View(),
		Selection: w.selection.View(),
		Rides:     len(w.shapes.rides),
		Zones:     len(w.shapes.zones),
	}
	if b, _ := w.boundary.Current(); b != nil {
		v.Boundary = b.DisplayName
	}
	return v
}

// apply runs fn under the workspace lock and returns the resulting view.
func (w *Workspace) apply(fn func()) WorkspaceView {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
	return w.viewLocked()
}

func (w *Workspace) Start(mode domain.DrawingMode) WorkspaceView {
	return w.apply(func() { w.drawing.Start(mode) })
}

func (w *Workspace) AddPoint(c domain.Coordinate) WorkspaceView {
	return w.apply(func() { w.drawing.AddPoint(c) })
}

func (w *Workspace) MoveCursor(c domain.Coordinate) WorkspaceView {
	return w.apply(func() { w.drawing.MoveCursor(c) })
}

func (w *Workspace) ClearCursor() WorkspaceView { return w.apply(w.drawing.ClearCursor) }
func (w *Workspace) Undo() WorkspaceView { return w.apply(w.drawing.Undo) }
func (w *Workspace) Cancel() WorkspaceView { return w.apply(w.drawing.Cancel) }

func (w *Workspace) SelectRide(id string) WorkspaceView {
	return w.apply(func() { w.selection.SelectRide(id) })
}

func (w *Workspace) SelectZone(id string) WorkspaceView {
	return w.apply(func() { w.selection.SelectZone(id) })
}

// Save finishes the drawing and persists whatever it produced. A drawing
// with too few points is cleared and nothing is stored.
func (w *Workspace) Save(ctx context.Context) (SaveResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	outcome := w.drawing.Save()
	pending := w.pending
	w.pending = nil

	res := SaveResult{Outcome: outcome}
	if w.svc == nil {
		return res, nil
	}
	for _, p := range pending {
		switch p.Kind {
		case domain.KindRide:
			ride, err := w.svc.CreateRide(ctx, p.Points)
			if err != nil {
				return res, err
			}
			w.shapes.AddRide(*ride)
			res.Ride = ride
		case domain.KindZone:
			zone, err := w.svc.CreateZone(ctx, p.Points)
			if err != nil {
				return res, err
			}
			w.shapes.AddZone(*zone)
			res.Zone = zone
		}
	}
	return res, nil
}

// DeleteRide clears the ride's selection, deletes it and drops it from the map.
func (w *Workspace) DeleteRide(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.selection.Forget(domain.KindRide, id)
	if w.svc != nil {
		if err := w.svc.DeleteRide(ctx, id); err != nil {
			return err
		}
	}
	w.shapes.RemoveRide(id)
	return nil
}

// DeleteZone clears the zone's selection, deletes it and drops it from the map.
func (w *Workspace) DeleteZone(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.selection.Forget(domain.KindZone, id)
	if w.svc != nil {
		if err := w.svc.DeleteZone(ctx, id); err != nil {
			return err
		}
	}
	w.shapes.RemoveZone(id)
	return nil
}

// SearchBoundary looks up a place and shows its boundary if still current.
func (w *Workspace) SearchBoundary(ctx context.Context, place string) (*domain.Boundary, error) {
	return w.boundary.Search(ctx, place)
}

// ClearBoundary hides the boundary.
func (w *Workspace) ClearBoundary() { w.boundary.Clear() }

// SavedRides returns the rides currently on the map.
func (w *Workspace) SavedRides() []domain.Ride {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shapes.Rides()
}

// SavedZones returns the zones currently on the map.
func (w *Workspace) SavedZones() []domain.AvoidZone {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shapes.Zones()
}

// WorkspaceRegistry tracks live workspaces by id.
type WorkspaceRegistry struct {
	shapes     *ShapeService
	boundaries ports.BoundaryProvider

	mu    sync.RWMutex
	items map[string]*Workspace
}

// NewWorkspaceRegistry creates an empty registry.
func NewWorkspaceRegistry(shapes *ShapeService, boundaries ports.BoundaryProvider) *WorkspaceRegistry {
	return &WorkspaceRegistry{
		shapes:     shapes,
		boundaries: boundaries,
		items:      make(map[string]*Workspace),
	}
}

// Create opens a workspace drawing to renderer and loads the saved shapes.
func (r *WorkspaceRegistry) Create(ctx context.Context, renderer ports.MapRenderer) (*Workspace, error) {
	w := newWorkspace(uuid.NewString(), r.shapes, r.boundaries, renderer)
	if err := w.Reload(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.items[w.ID] = w
	n := len(r.items)
	r.mu.Unlock()

	metrics.ActiveWorkspaces.Set(float64(n))
	return w, nil
}

// Get returns the workspace with id.
func (r *WorkspaceRegistry) Get(id string) (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.items[id]
	return w, ok
}

// Remove closes a workspace, cancelling any boundary lookup in flight.
func (r *WorkspaceRegistry) Remove(id string) bool {
	r.mu.Lock()
	w, ok := r.items[id]
	delete(r.items, id)
	n := len(r.items)
	r.mu.Unlock()

	if !ok {
		return false
	}
	w.ClearBoundary()
	metrics.ActiveWorkspaces.Set(float64(n))
	return true
}

// Len returns the number of live workspaces.
func (r *WorkspaceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
