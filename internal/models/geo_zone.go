package models

import "time"

// GeoZone is a geographic pricing zone. Zones form a hierarchy via
// ParentZoneID; Priority breaks ties when multiple pincode ranges match.
type GeoZone struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Level        int       `db:"level" json:"level"`
	ParentZoneID *int      `db:"parent_zone_id" json:"parentZoneId,omitempty"`
	Currency     string    `db:"currency" json:"currency"`
	Priority     int       `db:"priority" json:"priority"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// PincodeRange maps an inclusive postal-code range to a zone. Pincodes are
// stored as fixed-width strings so lexical range comparison is valid.
type PincodeRange struct {
	ID           int    `db:"id" json:"id"`
	GeoZoneID    int    `db:"geo_zone_id" json:"geoZoneId"`
	PincodeStart string `db:"pincode_start" json:"pincodeStart"`
	PincodeEnd   string `db:"pincode_end" json:"pincodeEnd"`
}
