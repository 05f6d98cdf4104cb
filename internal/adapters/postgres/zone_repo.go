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

// AvoidZoneRepo implements ports.AvoidZoneRepository on a PostGIS table.
type AvoidZoneRepo struct {
	db *DB
}

func NewAvoidZoneRepo(db *DB) *AvoidZoneRepo { return &AvoidZoneRepo{db: db} }

func (r *AvoidZoneRepo) Create(ctx context.Context, zone *domain.AvoidZone) error {
	coords, err := json.Marshal(zone.Coordinates)
	if err != nil {
		return fmt.Errorf("encode coordinates: %w", err)
	}
	geom, err := geojson.NewGeometry(orb.Polygon{orb.Ring(zone.Coordinates)}).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode area: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO avoid_zones (coordinates, area)
		VALUES ($1::jsonb, ST_SetSRID(ST_GeomFromGeoJSON($2), 4326))
		RETURNING id::text, created_at
	`, string(coords), string(geom)).Scan(&zone.ID, &zone.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert avoid zone: %w", err)
	}
	return nil
}

func (r *AvoidZoneRepo) GetByID(ctx context.Context, id string) (*domain.AvoidZone, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id::text, coordinates, created_at FROM avoid_zones WHERE id = $1
	`, id)
	zone, err := scanZone(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return zone, nil
}

func (r *AvoidZoneRepo) List(ctx context.Context) ([]domain.AvoidZone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, coordinates, created_at FROM avoid_zones ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.AvoidZone
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *zone)
	}
	return zones, rows.Err()
}

func (r *AvoidZoneRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM avoid_zones WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanZone(row pgx.Row) (*domain.AvoidZone, error) {
	var (
		zone   domain.AvoidZone
		coords []byte
	)
	if err := row.Scan(&zone.ID, &coords, &zone.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(coords, &zone.Coordinates); err != nil {
		return nil, fmt.Errorf("decode avoid zone %s coordinates: %w", zone.ID, err)
	}
	return &zone, nil
}
