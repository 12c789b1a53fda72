package models

import "time"

// SegmentCodeRetail is the fallback segment when no default is configured.
const SegmentCodeRetail = "RETAIL"

// UserSegment is a customer segment (RETAIL, VIP, WHOLESALE, ...). Exactly
// one segment should carry IsDefault=true.
type UserSegment struct {
	ID        int       `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	IsDefault bool      `db:"is_default" json:"isDefault"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
