package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates order lifecycle states relevant to pricing.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order holds the pricing-relevant part of an order: the immutable price
// snapshot blob and the totals it was created with. The snapshot is opaque
// to the database and is never recomputed after creation.
type Order struct {
	ID           int             `db:"id" json:"id"`
	OrderNumber  string          `db:"order_number" json:"orderNumber"`
	UserID       *int            `db:"user_id" json:"userId,omitempty"`
	ProductID    int             `db:"product_id" json:"productId"`
	Quantity     int             `db:"quantity" json:"quantity"`
	Currency     string          `db:"currency" json:"currency"`
	Subtotal     decimal.Decimal `db:"subtotal" json:"subtotal"`
	GSTAmount    decimal.Decimal `db:"gst_amount" json:"gstAmount"`
	TotalPayable decimal.Decimal `db:"total_payable" json:"totalPayable"`
	Snapshot     json.RawMessage `db:"snapshot" json:"snapshot"`
	Status       OrderStatus     `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}
