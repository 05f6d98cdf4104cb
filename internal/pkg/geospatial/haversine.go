package geospatial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// DistanceKm returns the length in kilometers of the path through points,
// summing the haversine distance of every consecutive pair. Fewer than two
// points have no segments and yield 0.
func DistanceKm(points []orb.Point) float64 {
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		total += Haversine(prev.Lat(), prev.Lon(), cur.Lat(), cur.Lon())
	}
	return total / 1000
}

// FormatKm renders a distance with two decimals, as shown next to a ride.
func FormatKm(km float64) string {
	return fmt.Sprintf("%.2f", km)
}

// RoundKm rounds a distance to two decimals.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// Bounds returns the bounding box of points. An empty input gives the zero Bound.
func Bounds(points []orb.Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	return orb.MultiPoint(points).Bound()
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
