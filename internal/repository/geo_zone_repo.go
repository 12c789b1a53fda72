package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/print24/pricing_api/internal/models"
)

// GeoZoneRepository handles database operations for geographic zone data.
type GeoZoneRepository struct {
	db *sqlx.DB
}

// NewGeoZoneRepository creates a new GeoZoneRepository.
func NewGeoZoneRepository(db *sqlx.DB) *GeoZoneRepository {
	return &GeoZoneRepository{db: db}
}

// ResolveByPincode returns the zone whose pincode range contains the given
// pincode. When multiple ranges match, the highest-priority zone wins.
// Returns nil (not an error) when no range matches: an unzoned context is
// priced globally.
func (r *GeoZoneRepository) ResolveByPincode(ctx context.Context, pincode string) (*models.GeoZone, error) {
	const q = `
        SELECT z.* FROM geo_zones z
        JOIN pincode_ranges pr ON pr.geo_zone_id = z.id
        WHERE z.is_active = true
          AND pr.pincode_start <= $1
          AND pr.pincode_end >= $1
        ORDER BY z.priority DESC, pr.id ASC
        LIMIT 1`

	var z models.GeoZone
	if err := r.db.GetContext(ctx, &z, q, pincode); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &z, nil
}

// GetByID returns a zone by id.
func (r *GeoZoneRepository) GetByID(ctx context.Context, id int) (*models.GeoZone, error) {
	const q = `SELECT * FROM geo_zones WHERE id = $1 LIMIT 1`

	var z models.GeoZone
	if err := r.db.GetContext(ctx, &z, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &z, nil
}

// GetAncestry returns a zone and its ancestors, nearest first.
func (r *GeoZoneRepository) GetAncestry(ctx context.Context, id int) ([]models.GeoZone, error) {
	const q = `
        WITH RECURSIVE ancestry AS (
            SELECT z.*, 0 AS depth FROM geo_zones z WHERE z.id = $1
            UNION ALL
            SELECT p.*, a.depth + 1 FROM geo_zones p
            JOIN ancestry a ON p.id = a.parent_zone_id
        )
        SELECT id, name, level, parent_zone_id, currency, priority, is_active, created_at, updated_at
        FROM ancestry ORDER BY depth`

	var zones []models.GeoZone
	if err := r.db.SelectContext(ctx, &zones, q, id); err != nil {
		return nil, err
	}
	return zones, nil
}

// List returns all active zones.
func (r *GeoZoneRepository) List(ctx context.Context) ([]models.GeoZone, error) {
	const q = `SELECT * FROM geo_zones WHERE is_active = true ORDER BY level, priority DESC, name`

	var zones []models.GeoZone
	if err := r.db.SelectContext(ctx, &zones, q); err != nil {
		return nil, err
	}
	return zones, nil
}
