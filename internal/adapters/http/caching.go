package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a default Cache-Control on GET responses that did
// not set one themselves. Saved shapes change on every save, so they are
// only cached briefly; geocoder answers are stable for much longer.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case strings.HasPrefix(path, "/v1/workspaces"):
		return "no-store"
	case strings.HasPrefix(path, "/v1/geo/boundary"):
		return "public, max-age=86400"
	case strings.HasPrefix(path, "/v1/geo/"):
		return "public, max-age=3600"
	case path == "/v1/stats":
		return "public, max-age=60"
	case strings.HasPrefix(path, "/v1/"):
		return "private, max-age=5"
	}
	return ""
}
