package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
	"github.com/print24/pricing_api/internal/utils"
)

type pricingFixture struct {
	pricing *PricingService
	base    *fakeBaseStore
	mods    *fakeModifierStore
	cache   *fakeCache
	audit   *fakeAudit
	retry   chan models.PricingCalculationLog
}

func newPricingFixture() *pricingFixture {
	base := baseAt("100")
	mods := &fakeModifierStore{}
	cache := newFakeCache()
	audit := &fakeAudit{}
	retry := make(chan models.PricingCalculationLog, 16)

	zones := &fakeZoneStore{byPincode: map[string]*models.GeoZone{
		"560001": {ID: 1, Name: "South"},
	}}
	retail := &models.UserSegment{ID: 1, Code: "RETAIL", IsDefault: true}
	segments := &fakeSegmentStore{
		byID: map[int]*models.UserSegment{1: retail},
		def:  retail,
	}
	products := &fakeProductStore{products: map[int]models.Product{
		7: {ID: 7, Name: "Business Cards", Category: "business-cards", GSTPercentage: d("18"), IsActive: true},
		8: {ID: 8, Name: "Flyers", Category: "flyers", GSTPercentage: d("12"), IsActive: true},
	}}

	pricing := NewPricingService(
		NewSegmentService(zones, segments),
		newWaterfall(base, mods),
		products,
		cache,
		audit,
		retry,
		"INR",
		"snapshot-secret",
	)
	return &pricingFixture{pricing: pricing, base: base, mods: mods, cache: cache, audit: audit, retry: retry}
}

func TestResolvePricesComputesTotals(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	results, err := f.pricing.ResolvePrices(context.Background(), &ResolveRequest{
		Pincode: "560001",
		Items:   []ResolveItem{{ProductID: 7, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].IsAvailable)

	bd := results[0].Breakdown
	require.NotNil(t, bd)
	require.True(t, d("100.00").Equal(bd.UnitPrice))
	require.True(t, d("200.00").Equal(bd.Subtotal))
	// 18% GST on 200.00
	require.True(t, d("36.00").Equal(bd.GSTAmount), "got %s", bd.GSTAmount)
	require.True(t, d("236.00").Equal(bd.TotalPayable))
	require.Equal(t, "INR", bd.Currency)
	require.NotEmpty(t, bd.PricingKey)
}

func TestResolvePricesBatchIsolation(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	// Product 9 does not exist; 7 and 8 price normally around it.
	results, err := f.pricing.ResolvePrices(context.Background(), &ResolveRequest{
		Items: []ResolveItem{
			{ProductID: 7, Quantity: 1},
			{ProductID: 9, Quantity: 1},
			{ProductID: 8, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.True(t, results[0].IsAvailable)
	require.False(t, results[1].IsAvailable)
	require.NotEmpty(t, results[1].RestrictionReason)
	require.True(t, results[2].IsAvailable)
}

func TestResolvePricesUnavailableProduct(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	f.base.find = nil // no base price anywhere in the hierarchy

	results, err := f.pricing.ResolvePrices(context.Background(), &ResolveRequest{
		Items: []ResolveItem{{ProductID: 7, Quantity: 1}},
	})
	require.NoError(t, err)
	require.False(t, results[0].IsAvailable)
	require.Contains(t, results[0].RestrictionReason, "no base price")
}

func TestResolvePricesCacheHitRescalesQuantity(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	ctx := context.Background()
	req := &ResolveRequest{Items: []ResolveItem{{ProductID: 7, Quantity: 1}}}

	// First resolve populates the cache.
	_, err := f.pricing.ResolvePrices(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, f.cache.sets)

	// Second resolve at a different quantity hits the cache and rescales
	// totals from the cached unit price.
	req.Items[0].Quantity = 5
	results, err := f.pricing.ResolvePrices(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 1, f.cache.sets, "hit must not rewrite the cache")

	bd := results[0].Breakdown
	require.Equal(t, 5, bd.Quantity)
	require.True(t, d("500.00").Equal(bd.Subtotal))
	require.True(t, d("90.00").Equal(bd.GSTAmount))
}

func TestResolvePricesCacheDegradation(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	f.cache.getErr = errors.New("redis down")
	f.cache.setErr = errors.New("redis down")

	// A failing cache never fails resolution.
	results, err := f.pricing.ResolvePrices(context.Background(), &ResolveRequest{
		Items: []ResolveItem{{ProductID: 7, Quantity: 1}},
	})
	require.NoError(t, err)
	require.True(t, results[0].IsAvailable)
}

func TestResolvePricesPromoBypassesCache(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	results, err := f.pricing.ResolvePrices(context.Background(), &ResolveRequest{
		PromoCodes: []string{"SUMMER20"},
		Items:      []ResolveItem{{ProductID: 7, Quantity: 1}},
	})
	require.NoError(t, err)
	require.True(t, results[0].IsAvailable)
	require.Zero(t, f.cache.gets, "promo requests are priced per request")
	require.Zero(t, f.cache.sets)
}

func TestResolvePricesNoSegmentConfigured(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	pricing := NewPricingService(
		NewSegmentService(&fakeZoneStore{}, &fakeSegmentStore{}),
		newWaterfall(f.base, f.mods),
		&fakeProductStore{},
		f.cache, f.audit, f.retry, "INR", "secret",
	)

	_, err := pricing.ResolvePrices(context.Background(), &ResolveRequest{
		Items: []ResolveItem{{ProductID: 7, Quantity: 1}},
	})
	require.ErrorIs(t, err, utils.ErrNoSegment)
}

func TestCreatePriceSnapshot(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	snap, err := f.pricing.CreatePriceSnapshot(context.Background(), &ResolveRequest{
		Items: []ResolveItem{{ProductID: 7, Quantity: 3}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, snap.SnapshotID)
	require.Equal(t, 3, snap.Breakdown.Quantity)

	// The checksum covers the serialized breakdown and detects tampering.
	payload, err := json.Marshal(snap.Breakdown)
	require.NoError(t, err)
	require.True(t, utils.VerifySnapshotChecksum(payload, snap.Checksum, "snapshot-secret"))
	require.False(t, utils.VerifySnapshotChecksum(append(payload, 'x'), snap.Checksum, "snapshot-secret"))

	// Snapshots are never served from cache.
	require.Zero(t, f.cache.gets)
}

func TestCreatePriceSnapshotUnavailable(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()

	_, err := f.pricing.CreatePriceSnapshot(context.Background(), &ResolveRequest{
		Items: []ResolveItem{{ProductID: 9, Quantity: 1}},
	})
	require.ErrorIs(t, err, utils.ErrProductNotFound)

	f.base.find = nil
	_, err = f.pricing.CreatePriceSnapshot(context.Background(), &ResolveRequest{
		Items: []ResolveItem{{ProductID: 7, Quantity: 1}},
	})
	require.ErrorIs(t, err, utils.ErrValidation)
}

func TestLogPricingCalculationRetryQueue(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	snapshot := &models.PriceSnapshot{Breakdown: models.PriceBreakdown{
		PricingKey: "pk_test",
		AppliedModifiers: []models.AppliedModifier{
			{ModifierID: 1, Scope: models.ScopeGlobal, Before: d("100"), After: d("90"), Impact: d("-10")},
			{ModifierID: 2, Scope: models.ScopeSegment, Before: d("90"), After: d("85"), Impact: d("-5")},
		},
	}}

	f.pricing.LogPricingCalculation(context.Background(), 11, snapshot)
	require.Len(t, f.audit.rows, 2)
	require.Empty(t, f.retry)

	// Failed inserts land on the retry queue instead of failing the caller.
	f.audit.err = errors.New("db down")
	f.pricing.LogPricingCalculation(context.Background(), 12, snapshot)
	require.Len(t, f.retry, 2)
}

func TestResolveItemDefaultsQuantity(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	results, err := f.pricing.ResolvePrices(context.Background(), &ResolveRequest{
		Items: []ResolveItem{{ProductID: 7, Quantity: 0}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, results[0].Breakdown.Quantity)
}

var _ BasePriceStore = (*repository.PriceBookRepository)(nil)
var _ ModifierStore = (*repository.ModifierRepository)(nil)
var _ ResolutionApplier = (*repository.ConflictRepository)(nil)
var _ AuditStore = (*repository.PricingLogRepository)(nil)
var _ OrderStore = (*repository.OrderRepository)(nil)
var _ ZoneStore = (*repository.GeoZoneRepository)(nil)
var _ SegmentStore = (*repository.UserSegmentRepository)(nil)
var _ ProductStore = (*repository.ProductRepository)(nil)
