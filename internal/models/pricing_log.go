package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingCalculationLog is one append-only audit row per applied modifier,
// written as a side effect of order creation. Rows are never mutated.
type PricingCalculationLog struct {
	ID           int             `db:"id" json:"id"`
	OrderID      int             `db:"order_id" json:"orderId"`
	PricingKey   string          `db:"pricing_key" json:"pricingKey"`
	ModifierID   *int            `db:"modifier_id" json:"modifierId,omitempty"`
	Scope        ModifierScope   `db:"scope" json:"scope"`
	BeforeAmount decimal.Decimal `db:"before_amount" json:"beforeAmount"`
	AfterAmount  decimal.Decimal `db:"after_amount" json:"afterAmount"`
	Reason       string          `db:"reason" json:"reason"`
	AppliedAt    time.Time       `db:"applied_at" json:"appliedAt"`
}
