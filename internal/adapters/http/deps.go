package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/ridemycity/internal/adapters/postgres"
	"github.com/samirrijal/ridemycity/internal/adapters/valkey"
	"github.com/samirrijal/ridemycity/internal/core/usecases"
	"github.com/samirrijal/ridemycity/internal/pkg/config"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Shapes     *usecases.ShapeService
	Stats      *usecases.StatsService
	Geo        *usecases.GeoService
	Workspaces *usecases.WorkspaceRegistry
	Map        config.MapConfig
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
