package geospatial

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
)

// EncodePolyline encodes a path with Google's polyline algorithm (precision 5).
func EncodePolyline(points []orb.Point) string {
	if len(points) == 0 {
		return ""
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		// go-polyline expects [lat, lng].
		coords[i] = []float64{p.Lat(), p.Lon()}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of EncodePolyline.
func DecodePolyline(encoded string) ([]orb.Point, error) {
	if encoded == "" {
		return nil, nil
	}
	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("decode polyline: %d trailing bytes", len(rest))
	}
	points := make([]orb.Point, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			return nil, fmt.Errorf("decode polyline: short coordinate")
		}
		points = append(points, orb.Point{c[1], c[0]})
	}
	return points, nil
}
