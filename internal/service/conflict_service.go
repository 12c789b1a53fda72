package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
	"github.com/print24/pricing_api/internal/utils"
)

// Resolution enumerates the admin's choices for resolving price conflicts.
// None is ever applied automatically.
type Resolution string

const (
	// ResolutionOverwrite deletes every conflicting more-specific override
	// so the new price becomes uniform.
	ResolutionOverwrite Resolution = "OVERWRITE"
	// ResolutionPreserve applies the new base only and leaves overrides
	// untouched (they stay stale relative to the new base until edited).
	ResolutionPreserve Resolution = "PRESERVE"
	// ResolutionRelative shifts conflicting flat-type modifiers by the
	// base-price delta. Percent modifiers already scale with the new base
	// and are left alone.
	ResolutionRelative Resolution = "RELATIVE"
)

// Conflict describes one more-specific override that would become
// materially inconsistent with a proposed price.
type Conflict struct {
	Source        string          `json:"source"` // PRICE_BOOK_ENTRY or MODIFIER
	EntryID       *int            `json:"entryId,omitempty"`
	ModifierID    *int            `json:"modifierId,omitempty"`
	ModifierType  string          `json:"modifierType,omitempty"`
	BookID        *int            `json:"bookId,omitempty"`
	BookName      string          `json:"bookName,omitempty"`
	GeoZoneID     *int            `json:"geoZoneId,omitempty"`
	UserSegmentID *int            `json:"userSegmentId,omitempty"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	ProposedPrice decimal.Decimal `json:"proposedPrice"`
	DeltaPercent  decimal.Decimal `json:"deltaPercent"`
	Direction     string          `json:"direction"` // increase or decrease relative to the proposal
}

// ConflictReport is the outcome of a detection pass: advisory data for the
// admin, never an error.
type ConflictReport struct {
	HasConflict       bool            `json:"hasConflict"`
	BaselinePrice     decimal.Decimal `json:"baselinePrice"`
	Conflicts         []Conflict      `json:"conflicts"`
	AffectedItems     []string        `json:"affectedItems"`
	ResolutionOptions []Resolution    `json:"resolutionOptions"`
}

// ConflictService detects inconsistencies between a proposed price change
// at one hierarchy level and more-specific overrides, and executes the
// admin's chosen resolution.
type ConflictService struct {
	books        BasePriceStore
	modifiers    ModifierStore
	applier      ResolutionApplier
	thresholdPct decimal.Decimal
}

// NewConflictService constructs a ConflictService. thresholdPct is the
// minimum percentage delta worth flagging; sub-threshold differences are
// rounding noise.
func NewConflictService(books BasePriceStore, modifiers ModifierStore, applier ResolutionApplier, thresholdPct float64) *ConflictService {
	return &ConflictService{
		books:        books,
		modifiers:    modifiers,
		applier:      applier,
		thresholdPct: decimal.NewFromFloat(thresholdPct),
	}
}

// DetectConflicts scans more-specific price book entries and modifiers for
// material inconsistency with newPrice at updateLevel.
func (s *ConflictService) DetectConflicts(ctx context.Context, productID int, updateLevel models.PriceLevel, zoneID, segmentID *int, newPrice decimal.Decimal) (*ConflictReport, error) {
	report := &ConflictReport{
		Conflicts:         []Conflict{},
		AffectedItems:     []string{},
		ResolutionOptions: []Resolution{ResolutionOverwrite, ResolutionPreserve, ResolutionRelative},
	}

	baseline, err := s.books.FindBaseEntry(ctx, productID, nil, nil)
	if err != nil {
		return nil, err
	}
	if baseline != nil {
		report.BaselinePrice = baseline.BasePrice
	}

	entries, err := s.books.ListEntriesForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !entryMoreSpecific(e, updateLevel, zoneID, segmentID) {
			continue
		}
		if c := s.priceConflict(e.BasePrice, newPrice); c != nil {
			entryID := e.ID
			bookID := e.PriceBookID
			c.Source = "PRICE_BOOK_ENTRY"
			c.EntryID = &entryID
			c.BookID = &bookID
			c.BookName = e.BookName
			c.GeoZoneID = e.GeoZoneID
			c.UserSegmentID = e.UserSegmentID
			report.Conflicts = append(report.Conflicts, *c)
			report.AffectedItems = append(report.AffectedItems, fmt.Sprintf("price book %q entry %d", e.BookName, e.ID))
		}
	}

	modifiers, err := s.modifiers.ListActiveForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, m := range modifiers {
		if !modifierMoreSpecific(&m, updateLevel, zoneID, segmentID) {
			continue
		}
		// The modifier's current effective price is its adjustment applied
		// to the current baseline.
		effective := report.BaselinePrice.Add(adjustmentFor(&m, report.BaselinePrice))
		if c := s.priceConflict(effective, newPrice); c != nil {
			modifierID := m.ID
			c.Source = "MODIFIER"
			c.ModifierID = &modifierID
			c.ModifierType = string(m.ModifierType)
			c.GeoZoneID = m.GeoZoneID
			c.UserSegmentID = m.UserSegmentID
			report.Conflicts = append(report.Conflicts, *c)
			report.AffectedItems = append(report.AffectedItems, fmt.Sprintf("modifier %q (%d)", m.Name, m.ID))
		}
	}

	report.HasConflict = len(report.Conflicts) > 0
	return report, nil
}

// ResolveConflict executes exactly one resolution strategy and returns the
// number of modifiers/entries deleted or adjusted. Re-running a resolution
// on an already-clean state modifies zero rows and still succeeds.
func (s *ConflictService) ResolveConflict(ctx context.Context, productID int, updateLevel models.PriceLevel, zoneID, segmentID *int, newPrice decimal.Decimal, resolution Resolution) (int, error) {
	report, err := s.DetectConflicts(ctx, productID, updateLevel, zoneID, segmentID, newPrice)
	if err != nil {
		return 0, err
	}

	var plan repository.ResolutionPlan
	switch resolution {
	case ResolutionPreserve:
		// Nothing to mutate: overrides are deliberately left in place.

	case ResolutionOverwrite:
		for _, c := range report.Conflicts {
			switch {
			case c.EntryID != nil:
				plan.DeleteEntryIDs = append(plan.DeleteEntryIDs, *c.EntryID)
			case c.ModifierID != nil:
				plan.DeleteModifierIDs = append(plan.DeleteModifierIDs, *c.ModifierID)
			}
		}

	case ResolutionRelative:
		oldPrice, err := s.currentLevelPrice(ctx, productID, updateLevel, zoneID, segmentID)
		if err != nil {
			return 0, err
		}
		delta := newPrice.Sub(oldPrice)
		plan.ShiftModifiers = map[int]decimal.Decimal{}
		for _, c := range report.Conflicts {
			if c.ModifierID == nil {
				continue
			}
			// Only flat modifiers shift; percent modifiers scale with the
			// new base on their own.
			if models.ModifierType(c.ModifierType).IsFlat() {
				plan.ShiftModifiers[*c.ModifierID] = delta
			}
		}

	default:
		return 0, fmt.Errorf("%w: unknown resolution %q", utils.ErrValidation, resolution)
	}

	modified, err := s.applier.Apply(ctx, plan)
	if err != nil {
		return 0, err
	}
	log.Info().
		Int("product_id", productID).
		Str("update_level", string(updateLevel)).
		Str("resolution", string(resolution)).
		Int("modified", modified).
		Msg("conflict resolution applied")
	return modified, nil
}

// priceConflict returns a conflict when the percentage difference between
// current and proposed exceeds the threshold, nil otherwise.
func (s *ConflictService) priceConflict(current, proposed decimal.Decimal) *Conflict {
	if proposed.IsZero() {
		return nil
	}
	deltaPct := current.Sub(proposed).Div(proposed).Mul(hundred)
	if deltaPct.Abs().LessThanOrEqual(s.thresholdPct) {
		return nil
	}
	direction := "increase"
	if deltaPct.IsNegative() {
		direction = "decrease"
	}
	return &Conflict{
		CurrentPrice:  current,
		ProposedPrice: proposed,
		DeltaPercent:  deltaPct.Round(4),
		Direction:     direction,
	}
}

// currentLevelPrice is the effective price at the level being updated,
// before the update.
func (s *ConflictService) currentLevelPrice(ctx context.Context, productID int, updateLevel models.PriceLevel, zoneID, segmentID *int) (decimal.Decimal, error) {
	var entry *repository.BaseEntry
	var err error
	switch updateLevel {
	case models.LevelZone:
		entry, err = s.books.FindBaseEntry(ctx, productID, zoneID, nil)
	case models.LevelSegment:
		entry, err = s.books.FindBaseEntry(ctx, productID, nil, segmentID)
	case models.LevelZoneSegment:
		entry, err = s.books.FindBaseEntry(ctx, productID, zoneID, segmentID)
	default:
		entry, err = s.books.FindBaseEntry(ctx, productID, nil, nil)
	}
	if err != nil {
		return decimal.Zero, err
	}
	if entry == nil {
		return decimal.Zero, nil
	}
	return entry.BasePrice, nil
}

// entryMoreSpecific reports whether an entry's book sits at a level more
// specific than the one being updated. Updating the master checks every
// scoped book; updating a zone checks zone+segment books within that zone;
// updating a segment checks zone+segment books for that segment.
func entryMoreSpecific(e repository.EntryWithBook, updateLevel models.PriceLevel, zoneID, segmentID *int) bool {
	if e.IsMaster {
		return false
	}
	switch updateLevel {
	case models.LevelMaster:
		return true
	case models.LevelZone:
		return e.GeoZoneID != nil && intsMatch(e.GeoZoneID, zoneID) && e.UserSegmentID != nil
	case models.LevelSegment:
		return e.UserSegmentID != nil && intsMatch(e.UserSegmentID, segmentID) && e.GeoZoneID != nil
	default:
		return false
	}
}

// modifierMoreSpecific reports whether a modifier's scope is more specific
// than the level being updated.
func modifierMoreSpecific(m *models.PriceModifier, updateLevel models.PriceLevel, zoneID, segmentID *int) bool {
	switch updateLevel {
	case models.LevelMaster:
		switch m.AppliesTo {
		case models.ScopeZone, models.ScopeSegment, models.ScopeProduct:
			return true
		}
		return false
	case models.LevelZone:
		// Segment- and product-scoped rules sit below a zone update.
		return m.AppliesTo == models.ScopeSegment || m.AppliesTo == models.ScopeProduct
	case models.LevelSegment:
		if m.AppliesTo != models.ScopeProduct {
			return false
		}
		// A product modifier scoped to a different segment is not affected.
		return m.UserSegmentID == nil || intsMatch(m.UserSegmentID, segmentID)
	default:
		return false
	}
}
