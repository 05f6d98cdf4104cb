package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/ridemycity/internal/adapters/nats"
	"github.com/samirrijal/ridemycity/internal/adapters/postgres"
	"github.com/samirrijal/ridemycity/internal/adapters/valkey"
	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/usecases"
	"github.com/samirrijal/ridemycity/internal/pkg/config"
	"github.com/samirrijal/ridemycity/internal/pkg/logging"
	"github.com/samirrijal/ridemycity/internal/workflows"
)

const statsWarmerDurable = "stats-warmer"

func main() {
	cfg, err := config.Load("ridemycity-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), "ridemycity-worker")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	cache, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Namespace)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	rides := postgres.NewRideRepo(db)
	zones := postgres.NewAvoidZoneRepo(db)
	shapes := usecases.NewShapeService(rides, zones, pub, cache, nil)
	stats := usecases.NewStatsService(rides, zones, cache)

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()
	if err := sub.SubscribeShapeEvents(ctx, statsWarmerDurable, warmStats(shapes, stats)); err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	slog.Info("stats warmer subscribed", "durable", statsWarmerDurable)

	if !cfg.Temporal.Enabled {
		slog.Info("temporal disabled, only warming stats")
		<-ctx.Done()
		return
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ShapeCleanupWorkflow)
	w.RegisterActivity(&workflows.CleanupActivities{Shapes: shapes})

	slog.Info("cleanup worker started", "task_queue", cfg.Temporal.TaskQueue)
	interrupt := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()
	if err := w.Run(interrupt); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// warmStats recomputes the cached stats summary after every shape change so
// the next API read is served from the cache.
func warmStats(shapes *usecases.ShapeService, stats *usecases.StatsService) natsadapter.ShapeEventHandler {
	return func(ctx context.Context, ev *domain.ShapeEvent) error {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := shapes.InvalidateStats(ctx); err != nil {
			return err
		}
		st, err := stats.Summary(ctx)
		if err != nil {
			slog.WarnContext(ctx, "warm stats", "event", ev.Type, "kind", ev.Kind, "id", ev.ID, "error", err)
			return err
		}
		slog.DebugContext(ctx, "stats warmed", "rides", st.TotalRides, "zones", st.TotalZones)
		return nil
	}
}
