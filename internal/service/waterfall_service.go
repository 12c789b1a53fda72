package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/print24/pricing_api/internal/models"
)

var hundred = decimal.NewFromInt(100)

// WaterfallResult is the outcome of the two-stage resolution: the winning
// base price and the final price after the modifier fold.
type WaterfallResult struct {
	IsAvailable       bool
	RestrictionReason string
	BasePrice         decimal.Decimal
	FinalPrice        decimal.Decimal
	SourceBookID      int
	SourceBookName    string
	Currency          string
	AppliedModifiers  []models.AppliedModifier
}

// WaterfallService combines the base-price lookup with the modifier fold.
// Each adjustment is computed on the running price, so percentage modifiers
// compound on the already-adjusted amount rather than the original base —
// application order matters, and priority defines that order.
type WaterfallService struct {
	books    *PriceBookService
	modifier *ModifierService
}

// NewWaterfallService constructs a WaterfallService.
func NewWaterfallService(books *PriceBookService, modifier *ModifierService) *WaterfallService {
	return &WaterfallService{books: books, modifier: modifier}
}

// Resolve computes the final unit price for the context. When no base price
// exists anywhere in the hierarchy, the product is unavailable and the
// result carries the reason instead of an error so batch callers can
// continue with sibling products.
func (s *WaterfallService) Resolve(ctx context.Context, mctx *MatchContext) (*WaterfallResult, error) {
	base, err := s.books.GetBasePrice(ctx, mctx.ProductID, mctx.ZoneID, mctx.SegmentID)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return &WaterfallResult{
			IsAvailable:       false,
			RestrictionReason: "no base price configured for this product in the requested context",
		}, nil
	}

	modifiers, err := s.modifier.SelectApplicable(ctx, mctx)
	if err != nil {
		return nil, err
	}

	// Lower priority value applies first: priority is a sequence, not a
	// strength.
	sort.SliceStable(modifiers, func(i, j int) bool {
		return modifiers[i].Priority < modifiers[j].Priority
	})

	running := base.BasePrice
	applied := make([]models.AppliedModifier, 0, len(modifiers))
	for _, m := range modifiers {
		adjustment := adjustmentFor(&m, running)
		after := running.Add(adjustment)
		applied = append(applied, models.AppliedModifier{
			ModifierID: m.ID,
			Name:       m.Name,
			Scope:      m.AppliesTo,
			Type:       m.ModifierType,
			Value:      m.Value,
			Before:     running,
			After:      after,
			Impact:     adjustment,
			Reason:     m.Reason,
		})
		running = after
	}

	// Round once at the very end; intermediate steps keep full precision.
	final := running.Round(2)

	return &WaterfallResult{
		IsAvailable:      true,
		BasePrice:        base.BasePrice,
		FinalPrice:       final,
		SourceBookID:     base.PriceBookID,
		SourceBookName:   base.BookName,
		Currency:         base.Currency,
		AppliedModifiers: applied,
	}, nil
}

// adjustmentFor computes the signed amount one modifier adds to the running
// price.
func adjustmentFor(m *models.PriceModifier, running decimal.Decimal) decimal.Decimal {
	switch m.ModifierType {
	case models.PercentInc:
		return running.Mul(m.Value).Div(hundred)
	case models.PercentDec:
		return running.Mul(m.Value).Div(hundred).Neg()
	case models.FlatInc:
		return m.Value
	case models.FlatDec:
		return m.Value.Neg()
	default:
		return decimal.Zero
	}
}
