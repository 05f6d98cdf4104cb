package geospatial

import "github.com/paulmach/orb"

// worldRing covers the whole map, counter-clockwise from the south-west corner.
var worldRing = orb.Ring{
	{-180, -90},
	{180, -90},
	{180, 90},
	{-180, 90},
	{-180, -90},
}

// WorldRing returns a copy of the ring covering the whole world.
func WorldRing() orb.Ring {
	r := make(orb.Ring, len(worldRing))
	copy(r, worldRing)
	return r
}

// InvertedMask builds a "world minus city" polygon: the world ring followed by
// the outer ring of every polygon in city, used as holes. Interior rings of the
// city are ignored and rings are used as provided, without re-closing.
//
// Geometries other than Polygon and MultiPolygon return nil.
func InvertedMask(city orb.Geometry) orb.Polygon {
	switch g := city.(type) {
	case orb.Polygon:
		mask := orb.Polygon{WorldRing()}
		if len(g) > 0 {
			mask = append(mask, g[0])
		}
		return mask
	case orb.MultiPolygon:
		mask := make(orb.Polygon, 1, len(g)+1)
		mask[0] = WorldRing()
		for _, poly := range g {
			if len(poly) == 0 {
				continue
			}
			mask = append(mask, poly[0])
		}
		return mask
	}
	return nil
}
