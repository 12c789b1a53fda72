package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
)

func newWaterfall(base *fakeBaseStore, mods *fakeModifierStore) *WaterfallService {
	evaluator := NewConditionEvaluator(32)
	return NewWaterfallService(
		NewPriceBookService(base),
		NewModifierService(mods, evaluator),
	)
}

func baseAt(price string) *fakeBaseStore {
	return &fakeBaseStore{
		find: func(_ int, _, _ *int) *repository.BaseEntry {
			return &repository.BaseEntry{
				EntryID:     1,
				PriceBookID: 10,
				BookName:    "Master",
				Currency:    "INR",
				BasePrice:   d(price),
			}
		},
	}
}

func globalModifier(id int, typ models.ModifierType, value string, priority int) models.PriceModifier {
	return models.PriceModifier{
		ID:           id,
		Name:         "m",
		AppliesTo:    models.ScopeGlobal,
		ModifierType: typ,
		Value:        d(value),
		Priority:     priority,
		IsActive:     true,
	}
}

func TestResolveNoBasePrice(t *testing.T) {
	t.Parallel()

	w := newWaterfall(&fakeBaseStore{}, &fakeModifierStore{})
	res, err := w.Resolve(context.Background(), &MatchContext{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	require.False(t, res.IsAvailable)
	require.NotEmpty(t, res.RestrictionReason)
}

func TestResolveSegmentDiscount(t *testing.T) {
	t.Parallel()

	// Zone base 110, VIP segment gets 10% off: 110 * 0.90 = 99.00.
	vip := 2
	mods := &fakeModifierStore{candidates: []models.PriceModifier{{
		ID:            1,
		Name:          "VIP discount",
		AppliesTo:     models.ScopeSegment,
		UserSegmentID: &vip,
		ModifierType:  models.PercentDec,
		Value:         d("10"),
		IsActive:      true,
	}}}
	w := newWaterfall(baseAt("110"), mods)

	res, err := w.Resolve(context.Background(), &MatchContext{
		ProductID: 1,
		SegmentID: &vip,
		Quantity:  1,
	})
	require.NoError(t, err)
	require.True(t, res.IsAvailable)
	require.True(t, d("110").Equal(res.BasePrice))
	require.True(t, d("99.00").Equal(res.FinalPrice), "got %s", res.FinalPrice)
	require.Len(t, res.AppliedModifiers, 1)
	require.True(t, d("-11").Equal(res.AppliedModifiers[0].Impact))
}

func TestResolvePercentagesCompound(t *testing.T) {
	t.Parallel()

	// +10% then -10% on 100 compounds to 99, not back to 100.
	mods := &fakeModifierStore{candidates: []models.PriceModifier{
		globalModifier(1, models.PercentInc, "10", 1),
		globalModifier(2, models.PercentDec, "10", 2),
	}}
	w := newWaterfall(baseAt("100"), mods)

	res, err := w.Resolve(context.Background(), &MatchContext{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	require.True(t, d("99.00").Equal(res.FinalPrice), "got %s", res.FinalPrice)

	require.True(t, d("100").Equal(res.AppliedModifiers[0].Before))
	require.True(t, d("110").Equal(res.AppliedModifiers[0].After))
	require.True(t, d("110").Equal(res.AppliedModifiers[1].Before))
	require.True(t, d("99").Equal(res.AppliedModifiers[1].After))
}

func TestResolvePriorityDefinesOrder(t *testing.T) {
	t.Parallel()

	// FLAT_INC 10 then PERCENT_DEC 50 gives 55; the reverse gives 60.
	mods := &fakeModifierStore{candidates: []models.PriceModifier{
		globalModifier(1, models.PercentDec, "50", 2),
		globalModifier(2, models.FlatInc, "10", 1),
	}}
	w := newWaterfall(baseAt("100"), mods)

	res, err := w.Resolve(context.Background(), &MatchContext{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	require.True(t, d("55.00").Equal(res.FinalPrice), "got %s", res.FinalPrice)
	require.Equal(t, 2, res.AppliedModifiers[0].ModifierID)
	require.Equal(t, 1, res.AppliedModifiers[1].ModifierID)
}

func TestResolveRoundsOnlyAtEnd(t *testing.T) {
	t.Parallel()

	// 100 - 0.005 = 99.995; a second step computed on the unrounded value
	// yields 109.9945 -> 109.99. Intermediate rounding would give 110.00.
	mods := &fakeModifierStore{candidates: []models.PriceModifier{
		globalModifier(1, models.FlatDec, "0.005", 1),
		globalModifier(2, models.PercentInc, "10", 2),
	}}
	w := newWaterfall(baseAt("100"), mods)

	res, err := w.Resolve(context.Background(), &MatchContext{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	require.True(t, d("109.99").Equal(res.FinalPrice), "got %s", res.FinalPrice)
}

func TestResolveFlatAdjustments(t *testing.T) {
	t.Parallel()

	mods := &fakeModifierStore{candidates: []models.PriceModifier{
		globalModifier(1, models.FlatInc, "25", 1),
		globalModifier(2, models.FlatDec, "5.50", 2),
	}}
	w := newWaterfall(baseAt("100"), mods)

	res, err := w.Resolve(context.Background(), &MatchContext{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	require.True(t, d("119.50").Equal(res.FinalPrice), "got %s", res.FinalPrice)
}

func TestResolveStackableFlagInert(t *testing.T) {
	t.Parallel()

	// is_stackable is stored but both non-stackable modifiers still apply;
	// this pins the current behavior until exclusivity semantics land.
	m1 := globalModifier(1, models.FlatDec, "10", 1)
	m1.IsStackable = false
	m2 := globalModifier(2, models.FlatDec, "10", 2)
	m2.IsStackable = false
	w := newWaterfall(baseAt("100"), &fakeModifierStore{candidates: []models.PriceModifier{m1, m2}})

	res, err := w.Resolve(context.Background(), &MatchContext{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	require.True(t, d("80.00").Equal(res.FinalPrice))
	require.Len(t, res.AppliedModifiers, 2)
}

func TestResolveNoModifiers(t *testing.T) {
	t.Parallel()

	w := newWaterfall(baseAt("42.425"), &fakeModifierStore{})
	res, err := w.Resolve(context.Background(), &MatchContext{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	// Base prices are still normalized through the final rounding.
	require.True(t, d("42.43").Equal(res.FinalPrice), "got %s", res.FinalPrice)
	require.Empty(t, res.AppliedModifiers)
	require.Equal(t, "Master", res.SourceBookName)
	require.Equal(t, "INR", res.Currency)
}
