package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// RideRepo implements ports.RideRepository on a PostGIS table.
type RideRepo struct {
	db *DB
}

func NewRideRepo(db *DB) *RideRepo { return &RideRepo{db: db} }

const rideColumns = `id::text, coordinates, distance_km, polyline, created_at`

func (r *RideRepo) Create(ctx context.Context, ride *domain.Ride) error {
	coords, err := json.Marshal(ride.Coordinates)
	if err != nil {
		return fmt.Errorf("encode coordinates: %w", err)
	}
	geom, err := geojson.NewGeometry(orb.LineString(ride.Coordinates)).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO rides (coordinates, path, distance_km, polyline)
		VALUES ($1::jsonb, ST_SetSRID(ST_GeomFromGeoJSON($2), 4326), $3, $4)
		RETURNING id::text, created_at
	`, string(coords), string(geom), ride.DistanceKm, ride.Polyline).Scan(&ride.ID, &ride.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

func (r *RideRepo) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	row := r.db.Pool.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	ride, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ride, nil
}

func (r *RideRepo) List(ctx context.Context) ([]domain.Ride, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+rideColumns+` FROM rides ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, *ride)
	}
	return rides, rows.Err()
}

func (r *RideRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM rides WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanRide(row pgx.Row) (*domain.Ride, error) {
	var (
		ride   domain.Ride
		coords []byte
	)
	if err := row.Scan(&ride.ID, &coords, &ride.DistanceKm, &ride.Polyline, &ride.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(coords, &ride.Coordinates); err != nil {
		return nil, fmt.Errorf("decode ride %s coordinates: %w", ride.ID, err)
	}
	return &ride, nil
}
