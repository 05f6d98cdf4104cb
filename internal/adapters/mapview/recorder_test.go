package mapview

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/ports"
	"github.com/samirrijal/ridemycity/internal/pkg/config"
)

var _ ports.MapRenderer = (*Recorder)(nil)

func testMapConfig() config.MapConfig {
	return config.MapConfig{
		Layers: config.LayerNames{
			DraftLine:       "draw-line",
			DraftPolygon:    "draw-polygon",
			DraftMarkers:    "draw-markers",
			Mask:            "city-mask",
			BoundaryOutline: "city-boundary",
			SelectedRide:    "selected-ride",
			SelectedZone:    "selected-zone",
		},
		RideColor:          "#2563eb",
		ZoneColor:          "#dc2626",
		MaskColor:          "#000000",
		MaskOpacity:        0.45,
		RideOpacity:        0.72,
		RideDimmedOpacity:  0.15,
		ZoneFillOpacity:    0.18,
		ZoneFillDimmed:     0.05,
		ZoneOutlineOpacity: 1,
		ZoneOutlineDimmed:  0.15,
		FitPadding:         config.Padding{Top: 80, Bottom: 80, Left: 360, Right: 80},
		FitMaxZoom:         16,
	}
}

func TestRecorder_PreviewLayers(t *testing.T) {
	r := NewRecorder(testMapConfig())

	r.RenderPreviewLine(orb.LineString{{0, 0}, {1, 1}})
	r.RenderMarkers(domain.ModeRide, []domain.Coordinate{{0, 0}, {1, 1}})

	snap := r.Snapshot()
	require.Contains(t, snap.Layers, "draw-line")
	line := snap.Layers["draw-line"]
	require.Len(t, line.Features, 1)
	assert.Equal(t, orb.LineString{{0, 0}, {1, 1}}, line.Features[0].Geometry)
	assert.Equal(t, "#2563eb", line.Features[0].Properties["color"])
	assert.Equal(t, "draw-line", line.Features[0].Properties["layer"])

	markers := snap.Layers["draw-markers"]
	require.Len(t, markers.Features, 2)
	assert.Equal(t, 1, markers.Features[1].Properties["index"])
	assert.Equal(t, "ride", markers.Features[1].Properties["mode"])

	r.RenderPreviewLine(nil)
	r.RenderMarkers(domain.ModeNone, nil)
	snap = r.Snapshot()
	assert.NotContains(t, snap.Layers, "draw-line")
	assert.NotContains(t, snap.Layers, "draw-markers")
}

func TestRecorder_ZoneMarkersUseZoneColor(t *testing.T) {
	r := NewRecorder(testMapConfig())
	r.RenderMarkers(domain.ModeAvoidZone, []domain.Coordinate{{0, 0}})
	fc := r.Layer("draw-markers")
	require.NotNil(t, fc)
	assert.Equal(t, "#dc2626", fc.Features[0].Properties["color"])
}

func TestRecorder_SelectionAndDimming(t *testing.T) {
	r := NewRecorder(testMapConfig())

	r.RenderSelection(domain.KindZone, []domain.Coordinate{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
	r.SetDimmed(true)
	r.FitViewport(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}})

	snap := r.Snapshot()
	require.Contains(t, snap.Layers, "selected-zone")
	_, isPoly := snap.Layers["selected-zone"].Features[0].Geometry.(orb.Polygon)
	assert.True(t, isPoly)
	assert.True(t, snap.Dimmed)
	assert.Equal(t, 0.15, snap.Style.RideOpacity)
	assert.Equal(t, 0.05, snap.Style.ZoneFillOpacity)
	assert.Equal(t, 0.15, snap.Style.ZoneOutlineOpacity)
	require.NotNil(t, snap.Viewport)
	assert.Equal(t, domain.Bounds{MinLat: 0, MinLon: 0, MaxLat: 1, MaxLon: 1}, snap.Viewport.Bounds)
	assert.Equal(t, 360, snap.Viewport.Padding.Left)
	assert.Equal(t, 16.0, snap.Viewport.MaxZoom)

	r.RenderSelection(domain.KindZone, nil)
	r.SetDimmed(false)
	snap = r.Snapshot()
	assert.NotContains(t, snap.Layers, "selected-zone")
	assert.Equal(t, 0.72, snap.Style.RideOpacity)
	assert.Equal(t, 1.0, snap.Style.ZoneOutlineOpacity)
}

func TestRecorder_SelectionCopiesCoordinates(t *testing.T) {
	r := NewRecorder(testMapConfig())
	coords := []domain.Coordinate{{0, 0}, {1, 1}}
	r.RenderSelection(domain.KindRide, coords)
	coords[0] = domain.Coordinate{9, 9}

	got := r.Layer("selected-ride").Features[0].Geometry.(orb.LineString)
	assert.Equal(t, orb.Point{0, 0}, got[0])
}

func TestRecorder_MaskAndOutline(t *testing.T) {
	r := NewRecorder(testMapConfig())
	poly := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}

	r.RenderMask(orb.Polygon{{{-180, -90}, {180, -90}, {180, 90}, {-180, 90}, {-180, -90}}, poly[0]})
	r.RenderBoundaryOutline(poly)

	snap := r.Snapshot()
	require.Contains(t, snap.Layers, "city-mask")
	require.Contains(t, snap.Layers, "city-boundary")
	assert.Equal(t, 0.45, snap.Layers["city-mask"].Features[0].Properties["opacity"])

	r.RenderMask(nil)
	r.RenderBoundaryOutline(nil)
	snap = r.Snapshot()
	assert.Empty(t, snap.Layers)
}

func TestRecorder_VersionOnlyMovesOnChange(t *testing.T) {
	r := NewRecorder(testMapConfig())
	r.RenderMask(nil)
	assert.Equal(t, uint64(0), r.Snapshot().Version)

	r.RenderPreviewLine(orb.LineString{{0, 0}, {1, 1}})
	assert.Equal(t, uint64(1), r.Snapshot().Version)
}

func TestSnapshot_JSON(t *testing.T) {
	r := NewRecorder(testMapConfig())
	r.RenderPreviewLine(orb.LineString{{0, 0}, {1, 1}})

	data, err := json.Marshal(r.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	layers := decoded["layers"].(map[string]any)
	line := layers["draw-line"].(map[string]any)
	assert.Equal(t, "FeatureCollection", line["type"])
}
