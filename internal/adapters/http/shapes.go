package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/ridemycity/internal/core/usecases"
	"github.com/samirrijal/ridemycity/internal/pkg/export"
	"github.com/samirrijal/ridemycity/internal/pkg/geospatial"
)

// ListRidesHandler returns saved rides, oldest first.
func ListRidesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rides, err := deps.Shapes.ListRides(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paginate(c, rides))
	}
}

// CreateRideHandler stores a ride drawn elsewhere.
func CreateRideHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req rideRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		coords, err := toCoordinates(req.Coordinates)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		ride, err := deps.Shapes.CreateRide(c.UserContext(), coords)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/rides/" + ride.ID)
		return c.Status(fiber.StatusCreated).JSON(ride)
	}
}

// GetRideHandler returns a single ride.
func GetRideHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ride, err := deps.Shapes.GetRide(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(ride)
	}
}

// DeleteRideHandler removes a ride.
func DeleteRideHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Shapes.DeleteRide(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RideKMLHandler exports a ride as KML.
func RideKMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ride, err := deps.Shapes.GetRide(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		var buf bytes.Buffer
		if err := export.RideKML(&buf, ride); err != nil {
			return errFromDomain(c, err)
		}
		return sendKML(c, "ride-"+ride.ID, buf.Bytes())
	}
}

// ListZonesHandler returns saved avoid zones, oldest first.
func ListZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zones, err := deps.Shapes.ListZones(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paginate(c, zones))
	}
}

// CreateZoneHandler stores an avoid zone. An open ring is closed first.
func CreateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req zoneRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		coords, err := toCoordinates(req.Coordinates)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		zone, err := deps.Shapes.CreateZone(c.UserContext(), coords)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Location("/v1/avoid-zones/" + zone.ID)
		return c.Status(fiber.StatusCreated).JSON(zone)
	}
}

// GetZoneHandler returns a single avoid zone.
func GetZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zone, err := deps.Shapes.GetZone(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(zone)
	}
}

// DeleteZoneHandler removes an avoid zone.
func DeleteZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Shapes.DeleteZone(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ZoneKMLHandler exports an avoid zone as KML.
func ZoneKMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zone, err := deps.Shapes.GetZone(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		var buf bytes.Buffer
		if err := export.ZoneKML(&buf, zone); err != nil {
			return errFromDomain(c, err)
		}
		return sendKML(c, "avoid-zone-"+zone.ID, buf.Bytes())
	}
}

// ShapesHandler returns every saved shape as one GeoJSON FeatureCollection.
func ShapesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		rides, err := deps.Shapes.ListRides(ctx)
		if err != nil {
			return errFromDomain(c, err)
		}
		zones, err := deps.Shapes.ListZones(ctx)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(usecases.ShapesFeatureCollection(rides, zones), "application/geo+json")
	}
}

// StatsHandler returns totals over everything saved.
func StatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Stats.Summary(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(stats)
	}
}

// DistanceResponse is the length of a path.
type DistanceResponse struct {
	DistanceKm float64 `json:"distance_km"`
	Distance   string  `json:"distance"`
	Polyline   string  `json:"polyline,omitempty"`
}

// DistanceHandler measures a path without storing it.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req coordinatesRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		coords, err := toCoordinates(req.Coordinates)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		km := geospatial.DistanceKm(coords)
		return c.JSON(DistanceResponse{
			DistanceKm: geospatial.RoundKm(km),
			Distance:   geospatial.FormatKm(km),
			Polyline:   geospatial.EncodePolyline(coords),
		})
	}
}

func sendKML(c *fiber.Ctx, name string, data []byte) error {
	c.Set(fiber.HeaderContentType, "application/vnd.google-earth.kml+xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`.kml"`)
	return c.Send(data)
}
