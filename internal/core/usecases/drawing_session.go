package usecases

import (
	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/ports"
	"github.com/samirrijal/ridemycity/internal/pkg/geospatial"
)

// DrawingState is the state of a DrawingSession.
type DrawingState string

const (
	StateIdle        DrawingState = "idle"
	StateDrawingRide DrawingState = "drawing-ride"
	StateDrawingZone DrawingState = "drawing-zone"
)

const (
	minRidePoints = 2
	minZonePoints = 3
)

// DrawingView is the derived state of a session after a transition.
// Views are never modified once published.
type DrawingView struct {
	State      DrawingState        `json:"state"`
	Mode       domain.DrawingMode  `json:"mode"`
	Markers    []domain.Coordinate `json:"markers"`
	Cursor     *domain.Coordinate  `json:"cursor,omitempty"`
	Preview    Preview             `json:"-"`
	DistanceKm float64             `json:"distance_km"`
	Distance   string              `json:"distance,omitempty"`
}

// SaveOutcome describes what Save handed to the shape sink, if anything.
type SaveOutcome struct {
	Emitted bool                `json:"emitted"`
	Kind    domain.ShapeKind    `json:"kind,omitempty"`
	Points  []domain.Coordinate `json:"coordinates,omitempty"`
}

// DrawingSession accumulates clicked points into a ride or an avoid zone.
//
// The session owns its point buffer and cursor; they change only through the
// transition methods. Each transition recomputes the view synchronously and
// pushes it to the renderer. A session is not safe for concurrent use.
type DrawingSession struct {
	mode     domain.DrawingMode
	points   []domain.Coordinate
	cursor   *domain.Coordinate
	renderer ports.MapRenderer
	sink     ports.ShapeSink
	view     DrawingView
}

// NewDrawingSession creates an idle session. renderer and sink may be nil.
func NewDrawingSession(renderer ports.MapRenderer, sink ports.ShapeSink) *DrawingSession {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	s := &DrawingSession{mode: domain.ModeNone, renderer: renderer, sink: sink}
	s.view = s.derive()
	return s
}

// View returns the latest snapshot.
func (s *DrawingSession) View() DrawingView { return s.view }

// Mode returns the current drawing mode.
func (s *DrawingSession) Mode() domain.DrawingMode { return s.mode }

// State returns the state machine state.
func (s *DrawingSession) State() DrawingState { return stateOf(s.mode) }

// StartRide enters ride drawing, dropping any stale points.
func (s *DrawingSession) StartRide() { s.start(domain.ModeRide) }

// StartZone enters avoid-zone drawing, dropping any stale points.
func (s *DrawingSession) StartZone() { s.start(domain.ModeAvoidZone) }

// Start dispatches to StartRide, StartZone or Cancel.
func (s *DrawingSession) Start(mode domain.DrawingMode) {
	switch mode {
	case domain.ModeRide:
		s.StartRide()
	case domain.ModeAvoidZone:
		s.StartZone()
	default:
		s.Cancel()
	}
}

func (s *DrawingSession) start(mode domain.DrawingMode) {
	s.mode = mode
	s.points = nil
	s.cursor = nil
	s.publish()
}

// AddPoint commits a clicked coordinate. Ignored while idle.
func (s *DrawingSession) AddPoint(c domain.Coordinate) {
	if s.mode == domain.ModeNone {
		return
	}
	s.points = append(s.points, c)
	s.publish()
}

// MoveCursor updates the hover position. Only ride mode uses a cursor.
func (s *DrawingSession) MoveCursor(c domain.Coordinate) {
	if s.mode != domain.ModeRide {
		return
	}
	s.cursor = &c
	s.publish()
}

// ClearCursor drops the hover position, recomputing only if one was set.
func (s *DrawingSession) ClearCursor() {
	if s.cursor == nil {
		return
	}
	s.cursor = nil
	s.publish()
}

// Undo removes the last committed point and its marker.
func (s *DrawingSession) Undo() {
	if s.mode == domain.ModeNone || len(s.points) == 0 {
		return
	}
	s.points = s.points[:len(s.points)-1]
	s.publish()
}

// Cancel discards the drawing and returns to idle.
func (s *DrawingSession) Cancel() {
	if s.mode == domain.ModeNone && len(s.points) == 0 && s.cursor == nil {
		return
	}
	s.reset()
	s.publish()
}

// Save finishes the drawing and returns to idle. A ride needs at least two
// points and a zone more than two; with fewer the drawing is just cleared.
func (s *DrawingSession) Save() SaveOutcome {
	if s.mode == domain.ModeNone {
		return SaveOutcome{}
	}

	var out SaveOutcome
	switch {
	case s.mode == domain.ModeRide && len(s.points) >= minRidePoints:
		out = SaveOutcome{Emitted: true, Kind: domain.KindRide, Points: clonePoints(s.points)}
		if s.sink != nil {
			s.sink.RideReady(clonePoints(out.Points))
		}
	case s.mode == domain.ModeAvoidZone && len(s.points) >= minZonePoints:
		ring := clonePoints(geospatial.EnsureClosedRing(s.points))
		out = SaveOutcome{Emitted: true, Kind: domain.KindZone, Points: ring}
		if s.sink != nil {
			s.sink.ZoneReady(clonePoints(ring))
		}
	}

	s.reset()
	s.publish()
	return out
}

func (s *DrawingSession) reset() {
	s.mode = domain.ModeNone
	s.points = nil
	s.cursor = nil
}

func (s *DrawingSession) publish() {
	s.view = s.derive()
	s.renderer.RenderPreviewLine(s.view.Preview.Line)
	s.renderer.RenderPreviewPolygon(s.view.Preview.Polygon)
	s.renderer.RenderMarkers(s.view.Mode, s.view.Markers)
}

// derive is the pure part of a transition: session state in, view out.
func (s *DrawingSession) derive() DrawingView {
	v := DrawingView{
		State:   stateOf(s.mode),
		Mode:    s.mode,
		Markers: clonePoints(s.points),
		Preview: BuildPreview(s.mode, s.points, s.cursor),
	}
	if v.Markers == nil {
		v.Markers = []domain.Coordinate{}
	}
	if s.cursor != nil {
		c := *s.cursor
		v.Cursor = &c
	}
	if s.mode == domain.ModeRide {
		v.DistanceKm = geospatial.DistanceKm(s.points)
		v.Distance = geospatial.FormatKm(v.DistanceKm)
	}
	return v
}

func stateOf(mode domain.DrawingMode) DrawingState {
	switch mode {
	case domain.ModeRide:
		return StateDrawingRide
	case domain.ModeAvoidZone:
		return StateDrawingZone
	}
	return StateIdle
}
