package mapview

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/pkg/config"
)

// Recorder implements ports.MapRenderer by keeping the latest content of
// every layer as GeoJSON. Map clients poll Snapshot and draw it as is.
//
// A Recorder is safe for concurrent use: boundary lookups render from their
// own goroutine while drawing actions render from the request goroutine.
type Recorder struct {
	cfg config.MapConfig

	mu       sync.Mutex
	layers   map[string]*geojson.FeatureCollection
	dimmed   bool
	viewport *Viewport
	version  uint64
}

// Viewport is the last requested camera fit.
type Viewport struct {
	Bounds  domain.Bounds  `json:"bounds"`
	Padding config.Padding `json:"padding"`
	MaxZoom float64        `json:"max_zoom"`
}

// Style is the paint state of saved shapes, which depends on dimming.
type Style struct {
	RideColor          string  `json:"ride_color"`
	RideOpacity        float64 `json:"ride_opacity"`
	ZoneColor          string  `json:"zone_color"`
	ZoneFillOpacity    float64 `json:"zone_fill_opacity"`
	ZoneOutlineOpacity float64 `json:"zone_outline_opacity"`
}

// Snapshot is a copy of everything currently rendered.
type Snapshot struct {
	Version  uint64                                `json:"version"`
	Layers   map[string]*geojson.FeatureCollection `json:"layers"`
	Dimmed   bool                                  `json:"dimmed"`
	Style    Style                                 `json:"style"`
	Viewport *Viewport                             `json:"viewport,omitempty"`
}

// NewRecorder creates an empty recorder styled by cfg.
func NewRecorder(cfg config.MapConfig) *Recorder {
	return &Recorder{
		cfg:    cfg,
		layers: make(map[string]*geojson.FeatureCollection),
	}
}

func (r *Recorder) RenderPreviewLine(line orb.LineString) {
	if len(line) == 0 {
		r.clear(r.cfg.Layers.DraftLine)
		return
	}
	f := geojson.NewFeature(line)
	f.Properties["color"] = r.cfg.RideColor
	r.set(r.cfg.Layers.DraftLine, f)
}

func (r *Recorder) RenderPreviewPolygon(poly orb.Polygon) {
	if len(poly) == 0 {
		r.clear(r.cfg.Layers.DraftPolygon)
		return
	}
	f := geojson.NewFeature(poly)
	f.Properties["color"] = r.cfg.ZoneColor
	f.Properties["fill_opacity"] = r.cfg.ZoneFillOpacity
	r.set(r.cfg.Layers.DraftPolygon, f)
}

func (r *Recorder) RenderMarkers(mode domain.DrawingMode, points []domain.Coordinate) {
	if len(points) == 0 {
		r.clear(r.cfg.Layers.DraftMarkers)
		return
	}
	color := r.cfg.RideColor
	if mode == domain.ModeAvoidZone {
		color = r.cfg.ZoneColor
	}
	features := make([]*geojson.Feature, len(points))
	for i, p := range points {
		f := geojson.NewFeature(p)
		f.Properties["index"] = i
		f.Properties["mode"] = string(mode)
		f.Properties["color"] = color
		features[i] = f
	}
	r.set(r.cfg.Layers.DraftMarkers, features...)
}

func (r *Recorder) RenderMask(mask orb.Polygon) {
	if len(mask) == 0 {
		r.clear(r.cfg.Layers.Mask)
		return
	}
	f := geojson.NewFeature(mask)
	f.Properties["color"] = r.cfg.MaskColor
	f.Properties["opacity"] = r.cfg.MaskOpacity
	r.set(r.cfg.Layers.Mask, f)
}

func (r *Recorder) RenderBoundaryOutline(geom domain.CityGeometry) {
	if geom == nil {
		r.clear(r.cfg.Layers.BoundaryOutline)
		return
	}
	r.set(r.cfg.Layers.BoundaryOutline, geojson.NewFeature(geom))
}

func (r *Recorder) RenderSelection(kind domain.ShapeKind, coords []domain.Coordinate) {
	layer := r.cfg.Layers.SelectedRide
	if kind == domain.KindZone {
		layer = r.cfg.Layers.SelectedZone
	}
	if len(coords) == 0 {
		r.clear(layer)
		return
	}

	var f *geojson.Feature
	if kind == domain.KindZone {
		ring := make(orb.Ring, len(coords))
		copy(ring, coords)
		f = geojson.NewFeature(orb.Polygon{ring})
		f.Properties["color"] = r.cfg.ZoneColor
		f.Properties["fill_opacity"] = r.cfg.ZoneFillOpacity
	} else {
		line := make(orb.LineString, len(coords))
		copy(line, coords)
		f = geojson.NewFeature(line)
		f.Properties["color"] = r.cfg.RideColor
	}
	f.Properties["kind"] = string(kind)
	r.set(layer, f)
}

func (r *Recorder) SetDimmed(dimmed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dimmed = dimmed
	r.version++
}

func (r *Recorder) FitViewport(bounds orb.Bound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = &Viewport{
		Bounds:  domain.BoundsFromOrb(bounds),
		Padding: r.cfg.FitPadding,
		MaxZoom: r.cfg.FitMaxZoom,
	}
	r.version++
}

// Snapshot returns a copy of the rendered state.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	layers := make(map[string]*geojson.FeatureCollection, len(r.layers))
	for name, fc := range r.layers {
		cp := geojson.NewFeatureCollection()
		cp.Features = append(cp.Features, fc.Features...)
		layers[name] = cp
	}
	s := Snapshot{
		Version: r.version,
		Layers:  layers,
		Dimmed:  r.dimmed,
		Style:   r.styleLocked(),
	}
	if r.viewport != nil {
		vp := *r.viewport
		s.Viewport = &vp
	}
	return s
}

// Layer returns the features of one layer, or nil when it is empty.
func (r *Recorder) Layer(name string) *geojson.FeatureCollection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layers[name]
}

func (r *Recorder) styleLocked() Style {
	s := Style{
		RideColor:          r.cfg.RideColor,
		RideOpacity:        r.cfg.RideOpacity,
		ZoneColor:          r.cfg.ZoneColor,
		ZoneFillOpacity:    r.cfg.ZoneFillOpacity,
		ZoneOutlineOpacity: r.cfg.ZoneOutlineOpacity,
	}
	if r.dimmed {
		s.RideOpacity = r.cfg.RideDimmedOpacity
		s.ZoneFillOpacity = r.cfg.ZoneFillDimmed
		s.ZoneOutlineOpacity = r.cfg.ZoneOutlineDimmed
	}
	return s
}

func (r *Recorder) set(layer string, features ...*geojson.Feature) {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		f.Properties["layer"] = layer
		fc.Append(f)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layers[layer] = fc
	r.version++
}

func (r *Recorder) clear(layer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.layers[layer]; ok {
		delete(r.layers, layer)
		r.version++
	}
}
