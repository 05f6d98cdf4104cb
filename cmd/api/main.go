package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/ridemycity/internal/adapters/http"
	natsadapter "github.com/samirrijal/ridemycity/internal/adapters/nats"
	"github.com/samirrijal/ridemycity/internal/adapters/nominatim"
	"github.com/samirrijal/ridemycity/internal/adapters/postgres"
	"github.com/samirrijal/ridemycity/internal/adapters/temporal"
	"github.com/samirrijal/ridemycity/internal/adapters/valkey"
	"github.com/samirrijal/ridemycity/internal/core/ports"
	"github.com/samirrijal/ridemycity/internal/core/usecases"
	"github.com/samirrijal/ridemycity/internal/pkg/config"
	"github.com/samirrijal/ridemycity/internal/pkg/logging"
	"github.com/samirrijal/ridemycity/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("ridemycity-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), "ridemycity-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolMetrics(ctx, 15*time.Second)

	// Cache, events and cleanup workflows are optional. Interfaces are only
	// assigned on success so the services see a real nil.
	var (
		cacheSvc  ports.CacheService
		events    ports.EventPublisher
		scheduler ports.CleanupScheduler
	)

	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Namespace)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	if cfg.Temporal.Enabled {
		sched, err := temporal.NewScheduler(cfg.Temporal.HostPort, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue)
		if err != nil {
			slog.Warn("temporal unavailable, cleanup runs inline", "error", err)
		} else {
			defer sched.Close()
			scheduler = sched
		}
	}

	geocoder := nominatim.New(nominatim.Config{
		BaseURL:          cfg.Geocoder.BaseURL,
		UserAgent:        cfg.Geocoder.UserAgent,
		AcceptLanguage:   cfg.Geocoder.AcceptLanguage,
		ResultsLimit:     cfg.Geocoder.ResultsLimit,
		Timeout:          cfg.Geocoder.Timeout,
		FailureThreshold: cfg.Geocoder.FailureThreshold,
		OpenTimeout:      cfg.Geocoder.OpenTimeout,
	})

	// Repos
	rideRepo := postgres.NewRideRepo(db)
	zoneRepo := postgres.NewAvoidZoneRepo(db)

	// Use cases
	shapeSvc := usecases.NewShapeService(rideRepo, zoneRepo, events, cacheSvc, scheduler)
	statsSvc := usecases.NewStatsService(rideRepo, zoneRepo, cacheSvc)
	geoSvc := usecases.NewGeoService(geocoder, geocoder, cacheSvc)

	deps := &http.Dependencies{
		Shapes:     shapeSvc,
		Stats:      statsSvc,
		Geo:        geoSvc,
		Workspaces: usecases.NewWorkspaceRegistry(shapeSvc, geoSvc),
		Map:        cfg.Map,
		DB:         db,
		Cache:      cache,
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "RideMyCity API",
		Immutable:    true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000, http://localhost:5173",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, If-None-Match",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps, http.DefaultRouterConfig)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
