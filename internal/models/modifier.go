package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModifierScope enumerates what a modifier matches against.
type ModifierScope string

const (
	ScopeGlobal      ModifierScope = "GLOBAL"
	ScopeZone        ModifierScope = "ZONE"
	ScopeSegment     ModifierScope = "SEGMENT"
	ScopeProduct     ModifierScope = "PRODUCT"
	ScopeAttribute   ModifierScope = "ATTRIBUTE"
	ScopeCombination ModifierScope = "COMBINATION"
)

// KnownScope reports whether s is a supported modifier scope.
func KnownScope(s ModifierScope) bool {
	switch s {
	case ScopeGlobal, ScopeZone, ScopeSegment, ScopeProduct, ScopeAttribute, ScopeCombination:
		return true
	}
	return false
}

// ModifierType enumerates how a modifier adjusts the running price.
type ModifierType string

const (
	PercentInc ModifierType = "PERCENT_INC"
	PercentDec ModifierType = "PERCENT_DEC"
	FlatInc    ModifierType = "FLAT_INC"
	FlatDec    ModifierType = "FLAT_DEC"
)

// KnownModifierType reports whether t is a supported adjustment type.
func KnownModifierType(t ModifierType) bool {
	switch t {
	case PercentInc, PercentDec, FlatInc, FlatDec:
		return true
	}
	return false
}

// IsFlat reports whether the type adjusts by an absolute amount.
func (t ModifierType) IsFlat() bool { return t == FlatInc || t == FlatDec }

// PriceModifier is a rule that adjusts the running price when its scope and
// conditions match the resolution context. Conditions is required and
// meaningful only for COMBINATION scope.
//
// IsStackable is stored and returned but not consulted by the waterfall
// fold; exclusivity semantics are undefined until product requirements
// settle them.
type PriceModifier struct {
	ID             int             `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	AppliesTo      ModifierScope   `db:"applies_to" json:"appliesTo"`
	GeoZoneID      *int            `db:"geo_zone_id" json:"geoZoneId,omitempty"`
	UserSegmentID  *int            `db:"user_segment_id" json:"userSegmentId,omitempty"`
	ProductID      *int            `db:"product_id" json:"productId,omitempty"`
	AttributeType  *string         `db:"attribute_type" json:"attributeType,omitempty"`
	AttributeValue *string         `db:"attribute_value" json:"attributeValue,omitempty"`
	Conditions     ConditionTree   `db:"conditions" json:"conditions"`
	ModifierType   ModifierType    `db:"modifier_type" json:"modifierType"`
	Value          decimal.Decimal `db:"value" json:"value"`
	MinQuantity    *int            `db:"min_quantity" json:"minQuantity,omitempty"`
	MaxQuantity    *int            `db:"max_quantity" json:"maxQuantity,omitempty"`
	ValidFrom      *time.Time      `db:"valid_from" json:"validFrom,omitempty"`
	ValidTo        *time.Time      `db:"valid_to" json:"validTo,omitempty"`
	IsStackable    bool            `db:"is_stackable" json:"isStackable"`
	Priority       int             `db:"priority" json:"priority"`
	IsActive       bool            `db:"is_active" json:"isActive"`
	Reason         string          `db:"reason" json:"reason,omitempty"`
	PromoCode      *string         `db:"promo_code" json:"promoCode,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"-"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// SelectedAttribute is one attribute choice made by the customer, matched
// by ATTRIBUTE-scoped modifiers.
type SelectedAttribute struct {
	AttributeType string `json:"attributeType"`
	Value         string `json:"value"`
}
