package usecases_test

import (
	"testing"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/usecases"
)

func TestDrawingSession_RunningDistance(t *testing.T) {
	s := usecases.NewDrawingSession(nil, nil)
	s.StartRide()
	s.AddPoint(zocalo)
	s.AddPoint(angel)

	v := s.View()
	if v.State != usecases.StateDrawingRide {
		t.Fatalf("expected drawing-ride, got %s", v.State)
	}
	if v.DistanceKm <= 3 || v.DistanceKm >= 5 {
		t.Errorf("expected Zócalo to Ángel between 3 and 5 km, got %f", v.DistanceKm)
	}
	if v.Distance == "" {
		t.Error("expected formatted distance")
	}
}

func TestDrawingSession_ZoneSaveEmitsClosedRing(t *testing.T) {
	sink := &mockSink{}
	s := usecases.NewDrawingSession(nil, sink)
	s.StartZone()
	s.AddPoint(domain.Coordinate{0, 0})
	s.AddPoint(domain.Coordinate{1, 0})
	s.AddPoint(domain.Coordinate{1, 1})

	out := s.Save()
	if !out.Emitted || out.Kind != domain.KindZone {
		t.Fatalf("expected zone emitted, got %+v", out)
	}
	if len(sink.zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(sink.zones))
	}
	ring := sink.zones[0]
	if len(ring) != 4 || ring[0] != ring[3] {
		t.Errorf("expected closed ring of 4, got %v", ring)
	}
	if s.State() != usecases.StateIdle {
		t.Errorf("expected idle after save, got %s", s.State())
	}
}

func TestDrawingSession_SaveBelowThresholdClears(t *testing.T) {
	sink := &mockSink{}
	r := newRecordingRenderer()
	s := usecases.NewDrawingSession(r, sink)
	s.StartRide()
	s.AddPoint(zocalo)

	out := s.Save()
	if out.Emitted {
		t.Errorf("expected nothing emitted, got %+v", out)
	}
	if len(sink.rides) != 0 {
		t.Errorf("expected no ride, got %d", len(sink.rides))
	}
	if s.State() != usecases.StateIdle {
		t.Errorf("expected idle, got %s", s.State())
	}
	if len(s.View().Markers) != 0 || len(r.markers) != 0 {
		t.Error("markers should be cleared")
	}
}

func TestDrawingSession_CursorOnlyInRideMode(t *testing.T) {
	r := newRecordingRenderer()
	s := usecases.NewDrawingSession(r, nil)

	s.StartZone()
	s.MoveCursor(domain.Coordinate{1, 1})
	if s.View().Cursor != nil {
		t.Error("cursor must be ignored in zone mode")
	}

	s.StartRide()
	s.AddPoint(domain.Coordinate{0, 0})
	s.MoveCursor(domain.Coordinate{0, 1})
	if len(r.line) != 2 {
		t.Fatalf("expected rubber-band line, got %v", r.line)
	}
	if s.View().DistanceKm != 0 {
		t.Errorf("cursor must not count toward distance, got %f", s.View().DistanceKm)
	}

	s.ClearCursor()
	if r.line != nil {
		t.Errorf("expected line cleared, got %v", r.line)
	}
}

func TestDrawingSession_ClearCursorWithoutCursorIsQuiet(t *testing.T) {
	r := newRecordingRenderer()
	s := usecases.NewDrawingSession(r, nil)
	s.StartRide()
	before := r.calls
	s.ClearCursor()
	if r.calls != before {
		t.Errorf("expected no render, got %d calls", r.calls-before)
	}
}

func TestDrawingSession_Undo(t *testing.T) {
	s := usecases.NewDrawingSession(nil, nil)

	s.Undo() // idle: no-op
	s.StartRide()
	s.Undo() // no points: no-op
	s.AddPoint(domain.Coordinate{0, 0})
	s.AddPoint(domain.Coordinate{0, 1})
	s.Undo()

	v := s.View()
	if len(v.Markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(v.Markers))
	}
	if v.DistanceKm != 0 {
		t.Errorf("expected distance 0 after undo, got %f", v.DistanceKm)
	}
	if v.Preview.Line != nil {
		t.Error("expected no line with one point")
	}
}

func TestDrawingSession_AddPointWhileIdleIgnored(t *testing.T) {
	s := usecases.NewDrawingSession(nil, nil)
	s.AddPoint(domain.Coordinate{0, 0})
	if len(s.View().Markers) != 0 {
		t.Error("idle session must not collect points")
	}
}

func TestDrawingSession_StartClearsStalePoints(t *testing.T) {
	s := usecases.NewDrawingSession(nil, nil)
	s.StartRide()
	s.AddPoint(domain.Coordinate{0, 0})
	s.AddPoint(domain.Coordinate{0, 1})
	s.StartZone()

	v := s.View()
	if v.State != usecases.StateDrawingZone || len(v.Markers) != 0 {
		t.Errorf("expected fresh zone drawing, got %+v", v)
	}
}

func TestDrawingSession_Cancel(t *testing.T) {
	r := newRecordingRenderer()
	s := usecases.NewDrawingSession(r, nil)
	s.StartZone()
	s.AddPoint(domain.Coordinate{0, 0})
	s.AddPoint(domain.Coordinate{1, 0})
	s.AddPoint(domain.Coordinate{1, 1})
	if r.polygon == nil {
		t.Fatal("expected polygon preview")
	}

	s.Cancel()
	if s.State() != usecases.StateIdle {
		t.Errorf("expected idle, got %s", s.State())
	}
	if r.polygon != nil || len(r.markers) != 0 {
		t.Error("preview not cleared")
	}
}

func TestDrawingSession_ViewsAreSnapshots(t *testing.T) {
	s := usecases.NewDrawingSession(nil, nil)
	s.StartRide()
	s.AddPoint(domain.Coordinate{0, 0})
	first := s.View()
	s.AddPoint(domain.Coordinate{0, 1})
	if len(first.Markers) != 1 {
		t.Errorf("earlier view changed: %v", first.Markers)
	}
}
