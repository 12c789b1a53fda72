package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the slice of the catalog the pricing engine needs: identity,
// category for condition matching, and the GST rate for totals. The full
// catalog (attributes, assets, descriptions) lives in the catalog service.
type Product struct {
	ID            int             `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Category      string          `db:"category" json:"category"`
	GSTPercentage decimal.Decimal `db:"gst_percentage" json:"gstPercentage"`
	IsActive      bool            `db:"is_active" json:"isActive"`
	CreatedAt     time.Time       `db:"created_at" json:"-"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}
