package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/pkg/geospatial"
)

const maxQueryLen = 200

// BoundaryResponse is a place outline plus the mask that hides everything
// outside it.
type BoundaryResponse struct {
	DisplayName string            `json:"display_name"`
	BoundingBox *domain.Bounds    `json:"bounding_box,omitempty"`
	Geometry    *geojson.Geometry `json:"geometry"`
	Mask        *geojson.Geometry `json:"mask,omitempty"`
}

func newBoundaryResponse(b *domain.Boundary) BoundaryResponse {
	resp := BoundaryResponse{
		DisplayName: b.DisplayName,
		BoundingBox: b.BoundingBox,
		Geometry:    geojson.NewGeometry(b.Geometry),
	}
	if mask := geospatial.InvertedMask(b.Geometry); mask != nil {
		resp.Mask = geojson.NewGeometry(mask)
	}
	return resp
}

func queryParam(c *fiber.Ctx) (string, string) {
	q := strings.TrimSpace(c.Query("q"))
	switch {
	case q == "":
		return "", `query parameter "q" is required`
	case len(q) > maxQueryLen:
		return "", "query too long (max 200 characters)"
	}
	return q, ""
}

// GeocodeHandler returns candidate places for ?q=.
func GeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, problem := queryParam(c)
		if problem != "" {
			return errBadRequest(c, problem)
		}
		results, err := deps.Geo.Geocode(c.UserContext(), q)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(results)
	}
}

// BoundaryHandler returns the administrative boundary of ?q=.
func BoundaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, problem := queryParam(c)
		if problem != "" {
			return errBadRequest(c, problem)
		}
		b, err := deps.Geo.FetchBoundary(c.UserContext(), q)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(newBoundaryResponse(b))
	}
}
