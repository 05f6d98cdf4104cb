package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names instead of Go ones.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON parses the request body into dst and validates it. On failure
// the 400 response has already been written and the returned error is the
// result of writing it; callers return it as is.
func bindJSON(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, errBadRequest(c, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return false, validationError(c, err)
	}
	return true, nil
}

func validationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errBadRequest(c, err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = describe(fe)
	}
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(fiber.StatusBadRequest).JSON(APIError{
		Status:    fiber.StatusBadRequest,
		Code:      "bad_request",
		Message:   "request validation failed",
		Fields:    fields,
		RequestID: reqID,
	})
}

// fieldPath drops the struct name prefix: "pointRequest.lat" -> "lat".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " items"
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must have exactly " + fe.Param() + " items"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "latitude":
		return "must be a latitude between -90 and 90"
	case "longitude":
		return "must be a longitude between -180 and 180"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

// pointRequest is a single map position.
type pointRequest struct {
	Lng *float64 `json:"lng" validate:"required,longitude"`
	Lat *float64 `json:"lat" validate:"required,latitude"`
}

func (p pointRequest) coordinate() domain.Coordinate {
	return domain.Coordinate{*p.Lng, *p.Lat}
}

// coordinatesRequest carries [lng, lat] pairs in drawing order.
type coordinatesRequest struct {
	Coordinates [][]float64 `json:"coordinates" validate:"required,dive,len=2"`
}

type rideRequest struct {
	Coordinates [][]float64 `json:"coordinates" validate:"required,min=2,dive,len=2"`
}

type zoneRequest struct {
	Coordinates [][]float64 `json:"coordinates" validate:"required,min=3,dive,len=2"`
}

type drawRequest struct {
	Mode string `json:"mode" validate:"required,oneof=ride avoid-zone none"`
}

type boundaryRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

// toCoordinates converts validated pairs and checks their ranges.
func toCoordinates(pairs [][]float64) ([]domain.Coordinate, error) {
	out := make([]domain.Coordinate, len(pairs))
	for i, p := range pairs {
		lng, lat := p[0], p[1]
		if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("coordinate %d out of range: [%g, %g]", i, lng, lat)
		}
		out[i] = domain.Coordinate{lng, lat}
	}
	return out, nil
}
