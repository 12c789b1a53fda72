package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationLogic enumerates how a price book derives its entries.
type CalculationLogic string

const (
	CalculationFixed   CalculationLogic = "FIXED"   // entries hold absolute prices
	CalculationDerived CalculationLogic = "DERIVED" // entries derived from the parent book
)

// PriceBook is a named container of per-product base prices, optionally
// scoped to a geo zone and/or user segment. At most one book system-wide
// may have IsMaster=true; the swap is transactional and backed by a partial
// unique index.
type PriceBook struct {
	ID               int              `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	Currency         string           `db:"currency" json:"currency"`
	IsMaster         bool             `db:"is_master" json:"isMaster"`
	IsDefault        bool             `db:"is_default" json:"isDefault"`
	GeoZoneID        *int             `db:"geo_zone_id" json:"geoZoneId,omitempty"`
	UserSegmentID    *int             `db:"user_segment_id" json:"userSegmentId,omitempty"`
	ParentBookID     *int             `db:"parent_book_id" json:"parentBookId,omitempty"`
	IsOverride       bool             `db:"is_override" json:"isOverride"`
	OverridePriority int              `db:"override_priority" json:"overridePriority"`
	IsVirtual        bool             `db:"is_virtual" json:"isVirtual"`
	CalculationLogic CalculationLogic `db:"calculation_logic" json:"calculationLogic"`
	IsActive         bool             `db:"is_active" json:"isActive"`
	CreatedAt        time.Time        `db:"created_at" json:"-"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

// PriceBookEntry is one product's base price inside a book. Unique per
// (price_book_id, product_id); orphaned entries are excluded on read and
// swept by the prune worker.
type PriceBookEntry struct {
	ID             int                 `db:"id" json:"id"`
	PriceBookID    int                 `db:"price_book_id" json:"priceBookId"`
	ProductID      int                 `db:"product_id" json:"productId"`
	BasePrice      decimal.Decimal     `db:"base_price" json:"basePrice"`
	CompareAtPrice decimal.NullDecimal `db:"compare_at_price" json:"compareAtPrice,omitempty"`
	IsActive       bool                `db:"is_active" json:"isActive"`
	CreatedAt      time.Time           `db:"created_at" json:"-"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updatedAt"`
}

// PriceLevel identifies one level of the price hierarchy, from least to
// most specific.
type PriceLevel string

const (
	LevelMaster      PriceLevel = "MASTER"
	LevelZone        PriceLevel = "ZONE"
	LevelSegment     PriceLevel = "SEGMENT"
	LevelZoneSegment PriceLevel = "ZONE_SEGMENT"
	LevelProduct     PriceLevel = "PRODUCT"
)

// HierarchyLevel describes one level's contribution when listing the price
// hierarchy for a product.
type HierarchyLevel struct {
	Level       PriceLevel          `json:"level"`
	BookID      *int                `json:"bookId,omitempty"`
	BookName    string              `json:"bookName,omitempty"`
	Price       decimal.NullDecimal `json:"price,omitempty"`
	HasEntry    bool                `json:"hasEntry"`
	IsEffective bool                `json:"isEffective"`
}
