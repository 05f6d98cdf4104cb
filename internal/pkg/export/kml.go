// Package export renders saved shapes in interchange formats.
package export

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/twpayne/go-kml"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/pkg/geospatial"
)

// RideKML writes ride as a KML document with a single LineString placemark.
func RideKML(w io.Writer, ride *domain.Ride) error {
	doc := kml.KML(
		kml.Document(
			kml.Name("RideMyCity ride "+ride.ID),
			kml.Placemark(
				kml.Name("Ride "+ride.ID),
				kml.Description(fmt.Sprintf("%s km", geospatial.FormatKm(ride.DistanceKm))),
				kml.LineString(
					kml.Coordinates(kmlCoordinates(ride.Coordinates)...),
				),
			),
		),
	)
	return write(w, doc)
}

// ZoneKML writes zone as a KML document with a single Polygon placemark.
func ZoneKML(w io.Writer, zone *domain.AvoidZone) error {
	ring := geospatial.EnsureClosedRing(zone.Coordinates)
	doc := kml.KML(
		kml.Document(
			kml.Name("RideMyCity avoid zone "+zone.ID),
			kml.Placemark(
				kml.Name("Avoid zone "+zone.ID),
				kml.Polygon(
					kml.OuterBoundaryIs(
						kml.LinearRing(
							kml.Coordinates(kmlCoordinates(ring)...),
						),
					),
				),
			),
		),
	)
	return write(w, doc)
}

func write(w io.Writer, doc *kml.CompoundElement) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return doc.WriteIndent(w, "", "  ")
}

func kmlCoordinates(points []domain.Coordinate) []kml.Coordinate {
	out := make([]kml.Coordinate, len(points))
	for i, p := range points {
		out[i] = kml.Coordinate{Lon: p.Lon(), Lat: p.Lat()}
	}
	return out
}
