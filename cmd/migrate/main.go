package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/ridemycity/internal/adapters/postgres"
	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/usecases"
	"github.com/samirrijal/ridemycity/internal/pkg/config"
)

var upFiles = []string{
	"migrations/001_init_extensions.sql",
	"migrations/002_shapes.sql",
}

const downFile = "migrations/down.sql"

// Sample shapes around the Mexico City historic centre.
var (
	seedRide = []domain.Coordinate{
		{-99.1332, 19.4326},
		{-99.138, 19.435},
		{-99.135, 19.438},
		{-99.13, 19.44},
	}
	seedZone = []domain.Coordinate{
		{-99.152, 19.423},
		{-99.148, 19.423},
		{-99.148, 19.427},
		{-99.152, 19.427},
	}
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|seed>")
	}

	cfg, err := config.Load("ridemycity-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		apply(ctx, db.Pool, upFiles)
	case "down":
		apply(ctx, db.Pool, []string{downFile})
	case "seed":
		seed(ctx, db)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func apply(ctx context.Context, pool *pgxpool.Pool, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		if _, err := pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

// seed stores the sample shapes through ShapeService so distance and
// polyline are derived the same way as for user drawings.
func seed(ctx context.Context, db *postgres.DB) {
	rides := postgres.NewRideRepo(db)
	zones := postgres.NewAvoidZoneRepo(db)
	svc := usecases.NewShapeService(rides, zones, nil, nil, nil)

	existingRides, err := rides.List(ctx)
	if err != nil {
		log.Fatalf("list rides: %v", err)
	}
	existingZones, err := zones.List(ctx)
	if err != nil {
		log.Fatalf("list avoid zones: %v", err)
	}
	if len(existingRides) > 0 || len(existingZones) > 0 {
		log.Println("shapes already present, skipping seed")
		return
	}

	ride, err := svc.CreateRide(ctx, seedRide)
	if err != nil {
		log.Fatalf("seed ride: %v", err)
	}
	fmt.Printf("OK  ride %s (%.2f km)\n", ride.ID, ride.DistanceKm)

	zone, err := svc.CreateZone(ctx, seedZone)
	if err != nil {
		log.Fatalf("seed avoid zone: %v", err)
	}
	fmt.Printf("OK  avoid zone %s\n", zone.ID)
}
