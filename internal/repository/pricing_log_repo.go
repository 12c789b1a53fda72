package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/print24/pricing_api/internal/models"
)

// PricingLogRepository writes and reads the append-only pricing audit trail.
type PricingLogRepository struct {
	db *sqlx.DB
}

// NewPricingLogRepository creates a new PricingLogRepository.
func NewPricingLogRepository(db *sqlx.DB) *PricingLogRepository {
	return &PricingLogRepository{db: db}
}

// Insert appends one audit row. Rows are never updated or deleted.
func (r *PricingLogRepository) Insert(ctx context.Context, row *models.PricingCalculationLog) error {
	const q = `
        INSERT INTO pricing_calculation_logs
            (order_id, pricing_key, modifier_id, scope, before_amount, after_amount, reason, applied_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id`

	return r.db.QueryRowxContext(ctx, q,
		row.OrderID, row.PricingKey, row.ModifierID, row.Scope,
		row.BeforeAmount, row.AfterAmount, row.Reason, row.AppliedAt,
	).Scan(&row.ID)
}

// ListByOrder returns the audit trail of one order in application order.
func (r *PricingLogRepository) ListByOrder(ctx context.Context, orderID int) ([]models.PricingCalculationLog, error) {
	const q = `SELECT * FROM pricing_calculation_logs WHERE order_id = $1 ORDER BY id`

	var rows []models.PricingCalculationLog
	if err := r.db.SelectContext(ctx, &rows, q, orderID); err != nil {
		return nil, err
	}
	return rows, nil
}
