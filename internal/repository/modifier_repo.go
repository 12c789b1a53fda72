package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/print24/pricing_api/internal/models"
)

// ModifierRepository handles data access for price modifiers.
type ModifierRepository struct {
	db *sqlx.DB
}

// NewModifierRepository creates a new ModifierRepository.
func NewModifierRepository(db *sqlx.DB) *ModifierRepository {
	return &ModifierRepository{db: db}
}

// ListCandidates returns active modifiers whose validity window contains
// now. Scope, quantity and condition matching happen in the matcher; the
// database only narrows by the cheap indexed predicates.
func (r *ModifierRepository) ListCandidates(ctx context.Context, now time.Time) ([]models.PriceModifier, error) {
	const q = `
        SELECT * FROM price_modifiers
        WHERE is_active = true
          AND (valid_from IS NULL OR valid_from <= $1)
          AND (valid_to IS NULL OR valid_to >= $1)
        ORDER BY priority ASC, id ASC`

	var modifiers []models.PriceModifier
	if err := r.db.SelectContext(ctx, &modifiers, q, now); err != nil {
		return nil, err
	}
	return modifiers, nil
}

// ListActiveForProduct returns active modifiers that either target the
// product directly or are not product-scoped at all. Used by the conflict
// analyzer.
func (r *ModifierRepository) ListActiveForProduct(ctx context.Context, productID int) ([]models.PriceModifier, error) {
	const q = `
        SELECT * FROM price_modifiers
        WHERE is_active = true
          AND (product_id IS NULL OR product_id = $1)
        ORDER BY priority ASC, id ASC`

	var modifiers []models.PriceModifier
	if err := r.db.SelectContext(ctx, &modifiers, q, productID); err != nil {
		return nil, err
	}
	return modifiers, nil
}

// GetByID returns a modifier by id.
func (r *ModifierRepository) GetByID(ctx context.Context, id int) (*models.PriceModifier, error) {
	const q = `SELECT * FROM price_modifiers WHERE id = $1 LIMIT 1`

	var m models.PriceModifier
	if err := r.db.GetContext(ctx, &m, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// List returns all modifiers, applied-first ordering.
func (r *ModifierRepository) List(ctx context.Context) ([]models.PriceModifier, error) {
	const q = `SELECT * FROM price_modifiers ORDER BY priority ASC, id ASC`

	var modifiers []models.PriceModifier
	if err := r.db.SelectContext(ctx, &modifiers, q); err != nil {
		return nil, err
	}
	return modifiers, nil
}

// Create inserts a modifier.
func (r *ModifierRepository) Create(ctx context.Context, m *models.PriceModifier) error {
	const q = `
        INSERT INTO price_modifiers
            (name, applies_to, geo_zone_id, user_segment_id, product_id,
             attribute_type, attribute_value, conditions, modifier_type, value,
             min_quantity, max_quantity, valid_from, valid_to,
             is_stackable, priority, is_active, reason, promo_code)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		m.Name, m.AppliesTo, m.GeoZoneID, m.UserSegmentID, m.ProductID,
		m.AttributeType, m.AttributeValue, m.Conditions, m.ModifierType, m.Value,
		m.MinQuantity, m.MaxQuantity, m.ValidFrom, m.ValidTo,
		m.IsStackable, m.Priority, m.IsActive, m.Reason, m.PromoCode,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// Update updates a modifier.
func (r *ModifierRepository) Update(ctx context.Context, m *models.PriceModifier) error {
	const q = `
        UPDATE price_modifiers
        SET name = $1, applies_to = $2, geo_zone_id = $3, user_segment_id = $4,
            product_id = $5, attribute_type = $6, attribute_value = $7,
            conditions = $8, modifier_type = $9, value = $10,
            min_quantity = $11, max_quantity = $12, valid_from = $13, valid_to = $14,
            is_stackable = $15, priority = $16, is_active = $17, reason = $18,
            promo_code = $19, updated_at = NOW()
        WHERE id = $20
        RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, q,
		m.Name, m.AppliesTo, m.GeoZoneID, m.UserSegmentID, m.ProductID,
		m.AttributeType, m.AttributeValue, m.Conditions, m.ModifierType, m.Value,
		m.MinQuantity, m.MaxQuantity, m.ValidFrom, m.ValidTo,
		m.IsStackable, m.Priority, m.IsActive, m.Reason, m.PromoCode,
		m.ID,
	).Scan(&m.UpdatedAt)
}

// Delete removes a modifier.
func (r *ModifierRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM price_modifiers WHERE id = $1`, id)
	return err
}
