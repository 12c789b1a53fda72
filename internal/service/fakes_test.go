package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
)

// In-memory fakes for the store ports. Tests wire these instead of sqlx
// repositories.

type fakeBaseStore struct {
	find    func(productID int, zoneID, segmentID *int) *repository.BaseEntry
	findErr error
	entries []repository.EntryWithBook
	master  *models.PriceBook
}

func (f *fakeBaseStore) FindBaseEntry(_ context.Context, productID int, zoneID, segmentID *int) (*repository.BaseEntry, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.find == nil {
		return nil, nil
	}
	return f.find(productID, zoneID, segmentID), nil
}

func (f *fakeBaseStore) ListEntriesForProduct(_ context.Context, _ int) ([]repository.EntryWithBook, error) {
	return f.entries, nil
}

func (f *fakeBaseStore) GetMaster(_ context.Context) (*models.PriceBook, error) {
	return f.master, nil
}

func (f *fakeBaseStore) GetByID(_ context.Context, _ int) (*models.PriceBook, error) {
	return nil, nil
}

func (f *fakeBaseStore) GetEntry(_ context.Context, _, _ int) (*models.PriceBookEntry, error) {
	return nil, nil
}

func (f *fakeBaseStore) UpsertEntry(_ context.Context, _ *models.PriceBookEntry) error {
	return nil
}

type fakeModifierStore struct {
	candidates []models.PriceModifier
	forProduct []models.PriceModifier
}

func (f *fakeModifierStore) ListCandidates(_ context.Context, _ time.Time) ([]models.PriceModifier, error) {
	return f.candidates, nil
}

func (f *fakeModifierStore) ListActiveForProduct(_ context.Context, _ int) ([]models.PriceModifier, error) {
	return f.forProduct, nil
}

type fakeZoneStore struct {
	byPincode map[string]*models.GeoZone
	byID      map[int]*models.GeoZone
}

func (f *fakeZoneStore) ResolveByPincode(_ context.Context, pincode string) (*models.GeoZone, error) {
	return f.byPincode[pincode], nil
}

func (f *fakeZoneStore) GetByID(_ context.Context, id int) (*models.GeoZone, error) {
	return f.byID[id], nil
}

type fakeSegmentStore struct {
	byID    map[int]*models.UserSegment
	byCode  map[string]*models.UserSegment
	def     *models.UserSegment
	forUser map[int]*models.UserSegment
}

func (f *fakeSegmentStore) GetByID(_ context.Context, id int) (*models.UserSegment, error) {
	return f.byID[id], nil
}

func (f *fakeSegmentStore) GetByCode(_ context.Context, code string) (*models.UserSegment, error) {
	return f.byCode[code], nil
}

func (f *fakeSegmentStore) GetDefault(_ context.Context) (*models.UserSegment, error) {
	return f.def, nil
}

func (f *fakeSegmentStore) GetForUser(_ context.Context, userID int) (*models.UserSegment, error) {
	return f.forUser[userID], nil
}

type fakeProductStore struct {
	products map[int]models.Product
}

func (f *fakeProductStore) GetByID(_ context.Context, id int) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProductStore) GetByIDs(_ context.Context, ids []int) (map[int]models.Product, error) {
	result := map[int]models.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

type fakeCache struct {
	store       map[string]*models.PriceBreakdown
	getErr      error
	setErr      error
	gets        int
	sets        int
	invalidated int
}

func cacheKey(productID, segmentID, zoneID int) string {
	return fmt.Sprintf("%d:%d:%d", productID, segmentID, zoneID)
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string]*models.PriceBreakdown{}}
}

func (f *fakeCache) Get(_ context.Context, productID, segmentID, zoneID int) (*models.PriceBreakdown, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.store[cacheKey(productID, segmentID, zoneID)], nil
}

func (f *fakeCache) Set(_ context.Context, productID, segmentID, zoneID int, breakdown *models.PriceBreakdown) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.store[cacheKey(productID, segmentID, zoneID)] = breakdown
	return nil
}

func (f *fakeCache) TryLock(_ context.Context, _, _, _ int) (bool, error) { return true, nil }

func (f *fakeCache) Unlock(_ context.Context, _, _, _ int) error { return nil }

func (f *fakeCache) Invalidate(_ context.Context, _, _, _ *int) (int, error) {
	n := len(f.store)
	f.store = map[string]*models.PriceBreakdown{}
	f.invalidated++
	return n, nil
}

type fakeAudit struct {
	rows []models.PricingCalculationLog
	err  error
}

func (f *fakeAudit) Insert(_ context.Context, row *models.PricingCalculationLog) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, *row)
	return nil
}

type fakeOrderStore struct {
	orders []models.Order
}

func (f *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	order.ID = len(f.orders) + 1
	order.CreatedAt = time.Now()
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id int) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			return &f.orders[i], nil
		}
	}
	return nil, nil
}

type fakeApplier struct {
	plans []repository.ResolutionPlan
}

func (f *fakeApplier) Apply(_ context.Context, plan repository.ResolutionPlan) (int, error) {
	f.plans = append(f.plans, plan)
	return len(plan.DeleteModifierIDs) + len(plan.DeleteEntryIDs) + len(plan.ShiftModifiers), nil
}

// d parses a decimal literal, panicking on malformed test data.
func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
