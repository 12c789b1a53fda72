package service

import (
	"context"
	"time"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
)

// Store ports consumed by the services. The sqlx repositories satisfy them
// in production; tests substitute in-memory fakes.

// ZoneStore resolves pincodes and reads zone reference data.
type ZoneStore interface {
	ResolveByPincode(ctx context.Context, pincode string) (*models.GeoZone, error)
	GetByID(ctx context.Context, id int) (*models.GeoZone, error)
}

// SegmentStore reads customer segment reference data.
type SegmentStore interface {
	GetByID(ctx context.Context, id int) (*models.UserSegment, error)
	GetByCode(ctx context.Context, code string) (*models.UserSegment, error)
	GetDefault(ctx context.Context) (*models.UserSegment, error)
	GetForUser(ctx context.Context, userID int) (*models.UserSegment, error)
}

// ProductStore reads the pricing-relevant product projection.
type ProductStore interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]models.Product, error)
}

// BasePriceStore is the price-book hierarchy.
type BasePriceStore interface {
	FindBaseEntry(ctx context.Context, productID int, zoneID, segmentID *int) (*repository.BaseEntry, error)
	ListEntriesForProduct(ctx context.Context, productID int) ([]repository.EntryWithBook, error)
	GetMaster(ctx context.Context) (*models.PriceBook, error)
	GetByID(ctx context.Context, id int) (*models.PriceBook, error)
	GetEntry(ctx context.Context, bookID, productID int) (*models.PriceBookEntry, error)
	UpsertEntry(ctx context.Context, entry *models.PriceBookEntry) error
}

// ModifierStore reads price modifiers.
type ModifierStore interface {
	ListCandidates(ctx context.Context, now time.Time) ([]models.PriceModifier, error)
	ListActiveForProduct(ctx context.Context, productID int) ([]models.PriceModifier, error)
}

// BreakdownCache caches computed breakdowns per resolution context. All
// methods are best-effort from the orchestrator's perspective: a failing
// cache never blocks a price resolution.
type BreakdownCache interface {
	Get(ctx context.Context, productID, segmentID, zoneID int) (*models.PriceBreakdown, error)
	Set(ctx context.Context, productID, segmentID, zoneID int, breakdown *models.PriceBreakdown) error
	TryLock(ctx context.Context, productID, segmentID, zoneID int) (bool, error)
	Unlock(ctx context.Context, productID, segmentID, zoneID int) error
	Invalidate(ctx context.Context, productID, segmentID, zoneID *int) (int, error)
}

// AuditStore appends pricing calculation audit rows.
type AuditStore interface {
	Insert(ctx context.Context, row *models.PricingCalculationLog) error
}

// OrderStore persists orders with embedded snapshots.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id int) (*models.Order, error)
}

// ResolutionApplier executes a conflict-resolution plan transactionally.
type ResolutionApplier interface {
	Apply(ctx context.Context, plan repository.ResolutionPlan) (int, error)
}
