package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/utils"
)

// MatchContext carries everything a modifier can match against for one
// resolution.
type MatchContext struct {
	ProductID          int
	Category           string
	ZoneID             *int
	ZoneName           string
	SegmentID          *int
	SegmentCode        string
	Quantity           int
	SelectedAttributes []models.SelectedAttribute
	PromoCodes         []string
	Now                time.Time
}

// flatten exposes the context as the flat record COMBINATION condition
// trees evaluate against. Symbolic names (zone name, segment code) are the
// primary fields; ids are exposed alongside for conditions written against
// them. Selected attributes appear as attr_{type}.
func (c *MatchContext) flatten() map[string]interface{} {
	flat := map[string]interface{}{
		"product_id": c.ProductID,
		"category":   c.Category,
		"quantity":   c.Quantity,
	}
	if c.ZoneName != "" {
		flat["geo_zone"] = c.ZoneName
	}
	if c.ZoneID != nil {
		flat["geo_zone_id"] = *c.ZoneID
	}
	if c.SegmentCode != "" {
		flat["user_segment"] = c.SegmentCode
	}
	if c.SegmentID != nil {
		flat["user_segment_id"] = *c.SegmentID
	}
	for _, attr := range c.SelectedAttributes {
		flat["attr_"+attr.AttributeType] = attr.Value
	}
	return flat
}

// ModifierService selects the modifiers applicable to a resolution context
// and validates admin writes.
type ModifierService struct {
	store     ModifierStore
	evaluator *ConditionEvaluator
}

// NewModifierService constructs a ModifierService.
func NewModifierService(store ModifierStore, evaluator *ConditionEvaluator) *ModifierService {
	return &ModifierService{store: store, evaluator: evaluator}
}

// SelectApplicable returns the active, in-window modifiers matching the
// context, in priority-ascending order. A modifier that cannot be evaluated
// (malformed scope data, missing conditions) is treated as not matching and
// skipped; one bad rule never aborts resolution for the whole request.
func (s *ModifierService) SelectApplicable(ctx context.Context, mctx *MatchContext) ([]models.PriceModifier, error) {
	candidates, err := s.store.ListCandidates(ctx, mctx.Now)
	if err != nil {
		return nil, err
	}

	flat := mctx.flatten()
	applicable := make([]models.PriceModifier, 0, len(candidates))
	for _, m := range candidates {
		if !quantityInBounds(&m, mctx.Quantity) {
			continue
		}
		if m.PromoCode != nil && !containsString(mctx.PromoCodes, *m.PromoCode) {
			continue
		}
		if s.matchesScope(&m, mctx, flat) {
			applicable = append(applicable, m)
		}
	}
	return applicable, nil
}

func (s *ModifierService) matchesScope(m *models.PriceModifier, mctx *MatchContext, flat map[string]interface{}) bool {
	switch m.AppliesTo {
	case models.ScopeGlobal:
		return true
	case models.ScopeZone:
		return m.GeoZoneID != nil && intsMatch(m.GeoZoneID, mctx.ZoneID)
	case models.ScopeSegment:
		return m.UserSegmentID != nil && intsMatch(m.UserSegmentID, mctx.SegmentID)
	case models.ScopeProduct:
		return m.ProductID != nil && *m.ProductID == mctx.ProductID
	case models.ScopeAttribute:
		if m.AttributeType == nil || m.AttributeValue == nil {
			log.Warn().Int("modifier_id", m.ID).Msg("attribute modifier missing attribute fields, skipping")
			return false
		}
		for _, attr := range mctx.SelectedAttributes {
			if attr.AttributeType == *m.AttributeType && attr.Value == *m.AttributeValue {
				return true
			}
		}
		return false
	case models.ScopeCombination:
		if m.Conditions.IsZero() {
			log.Warn().Int("modifier_id", m.ID).Msg("combination modifier has no conditions, skipping")
			return false
		}
		return s.evaluator.Evaluate(m.Conditions.Root, flat)
	default:
		log.Warn().Int("modifier_id", m.ID).Str("applies_to", string(m.AppliesTo)).Msg("unknown modifier scope, skipping")
		return false
	}
}

// ValidateModifier checks a modifier at write time so malformed rules never
// reach evaluation. Returns utils.ErrValidation-wrapped problems.
func (s *ModifierService) ValidateModifier(m *models.PriceModifier) error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", utils.ErrValidation)
	}
	if !models.KnownScope(m.AppliesTo) {
		return fmt.Errorf("%w: unknown scope %q", utils.ErrValidation, m.AppliesTo)
	}
	if !models.KnownModifierType(m.ModifierType) {
		return fmt.Errorf("%w: unknown modifier type %q", utils.ErrValidation, m.ModifierType)
	}
	if m.Value.IsNegative() {
		return fmt.Errorf("%w: value must not be negative", utils.ErrValidation)
	}

	switch m.AppliesTo {
	case models.ScopeZone:
		if m.GeoZoneID == nil {
			return fmt.Errorf("%w: ZONE scope requires geoZoneId", utils.ErrValidation)
		}
	case models.ScopeSegment:
		if m.UserSegmentID == nil {
			return fmt.Errorf("%w: SEGMENT scope requires userSegmentId", utils.ErrValidation)
		}
	case models.ScopeProduct:
		if m.ProductID == nil {
			return fmt.Errorf("%w: PRODUCT scope requires productId", utils.ErrValidation)
		}
	case models.ScopeAttribute:
		if m.AttributeType == nil || m.AttributeValue == nil {
			return fmt.Errorf("%w: ATTRIBUTE scope requires attributeType and attributeValue", utils.ErrValidation)
		}
	case models.ScopeCombination:
		if m.Conditions.IsZero() {
			return fmt.Errorf("%w: COMBINATION scope requires conditions", utils.ErrValidation)
		}
		if errs := s.evaluator.Validate(m.Conditions.Root); len(errs) > 0 {
			return fmt.Errorf("%w: invalid conditions: %v", utils.ErrValidation, errs)
		}
	}

	if m.MinQuantity != nil && m.MaxQuantity != nil && *m.MinQuantity > *m.MaxQuantity {
		return fmt.Errorf("%w: minQuantity exceeds maxQuantity", utils.ErrValidation)
	}
	if m.ValidFrom != nil && m.ValidTo != nil && m.ValidFrom.After(*m.ValidTo) {
		return fmt.Errorf("%w: validFrom is after validTo", utils.ErrValidation)
	}
	return nil
}

func quantityInBounds(m *models.PriceModifier, quantity int) bool {
	if m.MinQuantity != nil && quantity < *m.MinQuantity {
		return false
	}
	if m.MaxQuantity != nil && quantity > *m.MaxQuantity {
		return false
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
