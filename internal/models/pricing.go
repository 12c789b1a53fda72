package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppliedModifier records one waterfall step for audit transparency:
// the running price before and after, and the signed impact.
type AppliedModifier struct {
	ModifierID int             `json:"modifierId"`
	Name       string          `json:"name"`
	Scope      ModifierScope   `json:"scope"`
	Type       ModifierType    `json:"type"`
	Value      decimal.Decimal `json:"value"`
	Before     decimal.Decimal `json:"before"`
	After      decimal.Decimal `json:"after"`
	Impact     decimal.Decimal `json:"impact"`
	Reason     string          `json:"reason,omitempty"`
}

// PriceBreakdown is the full result of resolving one product's price in a
// context: the base, the unit price after modifiers, and order totals.
type PriceBreakdown struct {
	PricingKey       string            `json:"pricingKey"`
	ProductID        int               `json:"productId"`
	Currency         string            `json:"currency"`
	BasePrice        decimal.Decimal   `json:"basePrice"`
	UnitPrice        decimal.Decimal   `json:"unitPrice"`
	Quantity         int               `json:"quantity"`
	Subtotal         decimal.Decimal   `json:"subtotal"`
	GSTPercentage    decimal.Decimal   `json:"gstPercentage"`
	GSTAmount        decimal.Decimal   `json:"gstAmount"`
	TotalPayable     decimal.Decimal   `json:"totalPayable"`
	PriceBookSource  int               `json:"priceBookSource"`
	AppliedModifiers []AppliedModifier `json:"appliedModifiers"`
	CalculatedAt     time.Time         `json:"calculatedAt"`
}

// PriceSnapshot is the immutable copy of a breakdown embedded in an order
// at creation time. It is never recomputed, even if the books or modifiers
// it was derived from later change.
type PriceSnapshot struct {
	SnapshotID string         `json:"snapshotId"`
	Breakdown  PriceBreakdown `json:"breakdown"`
	Checksum   string         `json:"checksum"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ResolutionResult is the per-product outcome of a batch resolve. A product
// with no base price anywhere in the hierarchy is unavailable, not an error.
type ResolutionResult struct {
	ProductID         int             `json:"product_id"`
	IsAvailable       bool            `json:"is_available"`
	Currency          string          `json:"currency,omitempty"`
	Breakdown         *PriceBreakdown `json:"price_breakdown,omitempty"`
	RestrictionReason string          `json:"restriction_reason,omitempty"`
}
