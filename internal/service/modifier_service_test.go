package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/utils"
)

func newModifierService(candidates ...models.PriceModifier) *ModifierService {
	return NewModifierService(&fakeModifierStore{candidates: candidates}, NewConditionEvaluator(32))
}

func defaultContext() *MatchContext {
	return &MatchContext{
		ProductID:   7,
		Category:    "business-cards",
		ZoneID:      intPtr(1),
		ZoneName:    "South",
		SegmentID:   intPtr(2),
		SegmentCode: "VIP",
		Quantity:    100,
		Now:         time.Now(),
	}
}

func TestSelectApplicableScopes(t *testing.T) {
	t.Parallel()

	global := globalModifier(1, models.FlatInc, "1", 1)
	zone := models.PriceModifier{ID: 2, AppliesTo: models.ScopeZone, GeoZoneID: intPtr(1), ModifierType: models.FlatInc, Value: d("1"), IsActive: true}
	otherZone := models.PriceModifier{ID: 3, AppliesTo: models.ScopeZone, GeoZoneID: intPtr(9), ModifierType: models.FlatInc, Value: d("1"), IsActive: true}
	segment := models.PriceModifier{ID: 4, AppliesTo: models.ScopeSegment, UserSegmentID: intPtr(2), ModifierType: models.FlatInc, Value: d("1"), IsActive: true}
	product := models.PriceModifier{ID: 5, AppliesTo: models.ScopeProduct, ProductID: intPtr(7), ModifierType: models.FlatInc, Value: d("1"), IsActive: true}
	otherProduct := models.PriceModifier{ID: 6, AppliesTo: models.ScopeProduct, ProductID: intPtr(8), ModifierType: models.FlatInc, Value: d("1"), IsActive: true}

	svc := newModifierService(global, zone, otherZone, segment, product, otherProduct)
	got, err := svc.SelectApplicable(context.Background(), defaultContext())
	require.NoError(t, err)

	ids := make([]int, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	require.Equal(t, []int{1, 2, 4, 5}, ids)
}

func TestSelectApplicableAttributeScope(t *testing.T) {
	t.Parallel()

	lamination := models.PriceModifier{
		ID:             1,
		AppliesTo:      models.ScopeAttribute,
		AttributeType:  strPtr("finish"),
		AttributeValue: strPtr("matte"),
		ModifierType:   models.FlatInc,
		Value:          d("15"),
		IsActive:       true,
	}
	svc := newModifierService(lamination)

	mctx := defaultContext()
	mctx.SelectedAttributes = []models.SelectedAttribute{{AttributeType: "finish", Value: "matte"}}
	got, err := svc.SelectApplicable(context.Background(), mctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	mctx.SelectedAttributes = []models.SelectedAttribute{{AttributeType: "finish", Value: "gloss"}}
	got, err = svc.SelectApplicable(context.Background(), mctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSelectApplicableCombination(t *testing.T) {
	t.Parallel()

	combo := models.PriceModifier{
		ID:        1,
		AppliesTo: models.ScopeCombination,
		Conditions: models.ConditionTree{Root: &models.ConditionNode{And: []models.ConditionNode{
			leaf("category", models.OpEquals, "business-cards"),
			leaf("quantity", models.OpGTE, 500),
			leaf("geo_zone", models.OpIn, []interface{}{"South", "West"}),
		}}},
		ModifierType: models.PercentDec,
		Value:        d("5"),
		IsActive:     true,
	}
	svc := newModifierService(combo)

	mctx := defaultContext()
	mctx.Quantity = 750
	got, err := svc.SelectApplicable(context.Background(), mctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	mctx.Quantity = 100
	got, err = svc.SelectApplicable(context.Background(), mctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSelectApplicableQuantityBounds(t *testing.T) {
	t.Parallel()

	bulk := globalModifier(1, models.PercentDec, "10", 1)
	bulk.MinQuantity = intPtr(500)
	bulk.MaxQuantity = intPtr(1000)
	svc := newModifierService(bulk)

	for qty, want := range map[int]int{100: 0, 500: 1, 1000: 1, 1001: 0} {
		mctx := defaultContext()
		mctx.Quantity = qty
		got, err := svc.SelectApplicable(context.Background(), mctx)
		require.NoError(t, err)
		require.Len(t, got, want, "quantity %d", qty)
	}
}

func TestSelectApplicablePromoGate(t *testing.T) {
	t.Parallel()

	promo := globalModifier(1, models.PercentDec, "20", 1)
	promo.PromoCode = strPtr("SUMMER20")
	svc := newModifierService(promo)

	got, err := svc.SelectApplicable(context.Background(), defaultContext())
	require.NoError(t, err)
	require.Empty(t, got)

	mctx := defaultContext()
	mctx.PromoCodes = []string{"SUMMER20"}
	got, err = svc.SelectApplicable(context.Background(), mctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSelectApplicableSkipsMalformedRules(t *testing.T) {
	t.Parallel()

	// An attribute rule missing its fields and a combination rule with no
	// conditions are skipped, not fatal.
	broken1 := models.PriceModifier{ID: 1, AppliesTo: models.ScopeAttribute, ModifierType: models.FlatInc, Value: d("1"), IsActive: true}
	broken2 := models.PriceModifier{ID: 2, AppliesTo: models.ScopeCombination, ModifierType: models.FlatInc, Value: d("1"), IsActive: true}
	broken3 := models.PriceModifier{ID: 3, AppliesTo: "LEGACY", ModifierType: models.FlatInc, Value: d("1"), IsActive: true}
	ok := globalModifier(4, models.FlatInc, "1", 1)

	svc := newModifierService(broken1, broken2, broken3, ok)
	got, err := svc.SelectApplicable(context.Background(), defaultContext())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 4, got[0].ID)
}

func TestValidateModifier(t *testing.T) {
	t.Parallel()

	svc := newModifierService()

	valid := globalModifier(0, models.FlatInc, "5", 1)
	valid.Name = "shipping surcharge"
	require.NoError(t, svc.ValidateModifier(&valid))

	cases := []struct {
		name   string
		mutate func(m *models.PriceModifier)
	}{
		{"missing name", func(m *models.PriceModifier) { m.Name = "" }},
		{"unknown scope", func(m *models.PriceModifier) { m.AppliesTo = "REGION" }},
		{"unknown type", func(m *models.PriceModifier) { m.ModifierType = "DOUBLE" }},
		{"negative value", func(m *models.PriceModifier) { m.Value = d("-1") }},
		{"zone without id", func(m *models.PriceModifier) { m.AppliesTo = models.ScopeZone }},
		{"segment without id", func(m *models.PriceModifier) { m.AppliesTo = models.ScopeSegment }},
		{"product without id", func(m *models.PriceModifier) { m.AppliesTo = models.ScopeProduct }},
		{"attribute without fields", func(m *models.PriceModifier) { m.AppliesTo = models.ScopeAttribute }},
		{"combination without conditions", func(m *models.PriceModifier) { m.AppliesTo = models.ScopeCombination }},
		{"inverted quantity bounds", func(m *models.PriceModifier) {
			m.MinQuantity = intPtr(10)
			m.MaxQuantity = intPtr(5)
		}},
		{"inverted validity window", func(m *models.PriceModifier) {
			from := time.Now()
			to := from.Add(-time.Hour)
			m.ValidFrom = &from
			m.ValidTo = &to
		}},
		{"invalid conditions", func(m *models.PriceModifier) {
			m.AppliesTo = models.ScopeCombination
			m.Conditions = models.ConditionTree{Root: &models.ConditionNode{
				Field: "category", Operator: "MATCHES", Value: "x",
			}}
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := valid
			tc.mutate(&m)
			err := svc.ValidateModifier(&m)
			require.ErrorIs(t, err, utils.ErrValidation)
		})
	}
}
