package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/ridemycity/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// RouterConfig tunes the middleware chain.
type RouterConfig struct {
	// RateLimit is the number of requests per minute per IP. Zero disables it.
	RateLimit int
}

// DefaultRouterConfig matches production settings.
var DefaultRouterConfig = RouterConfig{RateLimit: 600}

// deprecatedRoutes are still served but announce their successor.
var deprecatedRoutes = []DeprecatedRoute{
	{
		Path:        "/v1/geo/search",
		SunsetDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/geo/geocode",
	},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, cfg RouterConfig) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(deprecatedRoutes))

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	t := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1 := app.Group("/v1")

	// saved shapes
	v1.Get("/rides", t(ListRidesHandler(deps)))
	v1.Post("/rides", t(CreateRideHandler(deps)))
	v1.Get("/rides/:id", t(GetRideHandler(deps)))
	v1.Delete("/rides/:id", t(DeleteRideHandler(deps)))
	v1.Get("/rides/:id/kml", t(RideKMLHandler(deps)))
	v1.Get("/avoid-zones", t(ListZonesHandler(deps)))
	v1.Post("/avoid-zones", t(CreateZoneHandler(deps)))
	v1.Get("/avoid-zones/:id", t(GetZoneHandler(deps)))
	v1.Delete("/avoid-zones/:id", t(DeleteZoneHandler(deps)))
	v1.Get("/avoid-zones/:id/kml", t(ZoneKMLHandler(deps)))
	v1.Get("/shapes", t(ShapesHandler(deps)))
	v1.Get("/stats", t(StatsHandler(deps)))
	v1.Post("/distance", DistanceHandler(deps))

	// geocoding
	v1.Get("/geo/geocode", t(GeocodeHandler(deps)))
	v1.Get("/geo/search", t(GeocodeHandler(deps)))
	v1.Get("/geo/boundary", t(BoundaryHandler(deps)))

	// drawing workspaces
	ws := v1.Group("/workspaces")
	ws.Post("/", t(CreateWorkspaceHandler(deps)))
	ws.Get("/:id", GetWorkspaceHandler(deps))
	ws.Delete("/:id", DeleteWorkspaceHandler(deps))
	ws.Get("/:id/map", WorkspaceMapHandler(deps))
	ws.Post("/:id/draw", DrawHandler(deps))
	ws.Post("/:id/points", AddPointHandler(deps))
	ws.Put("/:id/cursor", MoveCursorHandler(deps))
	ws.Delete("/:id/cursor", ClearCursorHandler(deps))
	ws.Post("/:id/undo", UndoHandler(deps))
	ws.Post("/:id/cancel", CancelHandler(deps))
	ws.Post("/:id/save", t(SaveHandler(deps)))
	ws.Post("/:id/select/rides/:rideID", SelectRideHandler(deps))
	ws.Post("/:id/select/zones/:zoneID", SelectZoneHandler(deps))
	ws.Delete("/:id/rides/:rideID", t(WorkspaceDeleteRideHandler(deps)))
	ws.Delete("/:id/zones/:zoneID", t(WorkspaceDeleteZoneHandler(deps)))
	ws.Post("/:id/boundary", t(SearchBoundaryHandler(deps)))
	ws.Delete("/:id/boundary", ClearBoundaryHandler(deps))

	app.Post("/graphql", t(GraphQLHandler(deps)))

	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
