package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int               `json:"status"`
	Code      string            `json:"code"`    // bad_request, not_found, conflict, bad_gateway, ...
	Message   string            `json:"message"` // Human-readable message
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errFromDomain maps a usecase error onto the matching HTTP status.
// Unexpected errors are logged and reported without their details.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, "resource not found")
	case errors.Is(err, domain.ErrBoundaryNotFound):
		return errNotFound(c, "no boundary found for the given query")
	case errors.Is(err, domain.ErrInvalidShape):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrStaleResult):
		return errConflict(c, "superseded by a newer boundary search")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return newError(c, fiber.StatusServiceUnavailable, "unavailable", "geocoder temporarily unavailable")
	case errors.Is(err, domain.ErrUpstream):
		return newError(c, fiber.StatusBadGateway, "bad_gateway", "geocoder request failed")
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal server error")
}
