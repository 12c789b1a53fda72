package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/utils"
)

// ResolveItem is one product line in a resolution request.
type ResolveItem struct {
	ProductID          int                        `json:"productId"`
	Quantity           int                        `json:"quantity"`
	SelectedAttributes []models.SelectedAttribute `json:"selectedAttributes,omitempty"`
}

// ResolveRequest is a batch price resolution for one customer context.
type ResolveRequest struct {
	UserID     *int          `json:"userId,omitempty"`
	Pincode    string        `json:"pincode,omitempty"`
	SegmentID  *int          `json:"segmentId,omitempty"`
	PromoCodes []string      `json:"promoCodes,omitempty"`
	Items      []ResolveItem `json:"items"`
}

// PricingService orchestrates the whole resolution: context dimensions once
// per request, then per product a cache lookup or a full waterfall compute.
type PricingService struct {
	segments  *SegmentService
	waterfall *WaterfallService
	products  ProductStore
	cache     BreakdownCache
	audit     AuditStore
	retry     chan<- models.PricingCalculationLog

	defaultCurrency string
	snapshotSecret  string
	now             func() time.Time
}

// NewPricingService constructs the orchestrator. retry receives audit rows
// that failed their first insert; the audit worker drains it.
func NewPricingService(
	segments *SegmentService,
	waterfall *WaterfallService,
	products ProductStore,
	cache BreakdownCache,
	audit AuditStore,
	retry chan<- models.PricingCalculationLog,
	defaultCurrency string,
	snapshotSecret string,
) *PricingService {
	return &PricingService{
		segments:        segments,
		waterfall:       waterfall,
		products:        products,
		cache:           cache,
		audit:           audit,
		retry:           retry,
		defaultCurrency: defaultCurrency,
		snapshotSecret:  snapshotSecret,
		now:             time.Now,
	}
}

// ResolvePrices resolves every item in the request. The zone and segment are
// resolved once and shared across items; a product that cannot be priced
// yields an unavailable result without failing its siblings. Only a missing
// segment (a configuration error) aborts the whole batch.
func (s *PricingService) ResolvePrices(ctx context.Context, req *ResolveRequest) ([]models.ResolutionResult, error) {
	zone, err := s.segments.ResolveZone(ctx, req.Pincode)
	if err != nil {
		return nil, err
	}
	segment, err := s.segments.ResolveSegment(ctx, req.UserID, req.SegmentID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	productMap, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]models.ResolutionResult, 0, len(req.Items))
	for _, item := range req.Items {
		results = append(results, s.resolveItem(ctx, req, &item, productMap, zone, segment))
	}
	return results, nil
}

func (s *PricingService) resolveItem(ctx context.Context, req *ResolveRequest, item *ResolveItem, productMap map[int]models.Product, zone *models.GeoZone, segment *models.UserSegment) models.ResolutionResult {
	product, ok := productMap[item.ProductID]
	if !ok || !product.IsActive {
		return models.ResolutionResult{
			ProductID:         item.ProductID,
			IsAvailable:       false,
			RestrictionReason: "product not found or inactive",
		}
	}

	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}

	zoneID := 0
	if zone != nil {
		zoneID = zone.ID
	}

	// Promo codes and selected attributes change the price per request, so
	// those resolutions bypass the dimension-keyed cache entirely.
	cacheable := len(req.PromoCodes) == 0 && len(item.SelectedAttributes) == 0

	if cacheable {
		cached, err := s.cache.Get(ctx, item.ProductID, segment.ID, zoneID)
		if err != nil {
			log.Warn().Err(err).Int("product_id", item.ProductID).Msg("price cache read failed, computing directly")
		}
		if cached != nil {
			bd := rescaleBreakdown(cached, quantity)
			return models.ResolutionResult{
				ProductID:   item.ProductID,
				IsAvailable: true,
				Currency:    bd.Currency,
				Breakdown:   bd,
			}
		}
	}

	// Best-effort single flight: losing the lock race just means a
	// redundant compute, never a wrong answer.
	if cacheable {
		if ok, err := s.cache.TryLock(ctx, item.ProductID, segment.ID, zoneID); err == nil && ok {
			defer func() {
				if err := s.cache.Unlock(ctx, item.ProductID, segment.ID, zoneID); err != nil {
					log.Warn().Err(err).Int("product_id", item.ProductID).Msg("failed to release compute lock")
				}
			}()
		}
	}

	breakdown, reason, err := s.computeBreakdown(ctx, req, item, &product, zone, segment, quantity)
	if err != nil {
		log.Error().Err(err).Int("product_id", item.ProductID).Msg("price resolution failed")
		return models.ResolutionResult{
			ProductID:         item.ProductID,
			IsAvailable:       false,
			RestrictionReason: "pricing temporarily unavailable",
		}
	}
	if breakdown == nil {
		return models.ResolutionResult{
			ProductID:         item.ProductID,
			IsAvailable:       false,
			RestrictionReason: reason,
		}
	}

	if cacheable {
		if err := s.cache.Set(ctx, item.ProductID, segment.ID, zoneID, breakdown); err != nil {
			log.Warn().Err(err).Int("product_id", item.ProductID).Msg("price cache write failed")
		}
	}

	return models.ResolutionResult{
		ProductID:   item.ProductID,
		IsAvailable: true,
		Currency:    breakdown.Currency,
		Breakdown:   breakdown,
	}
}

// computeBreakdown runs the waterfall and derives the order totals. A nil
// breakdown with a reason means the product is unavailable in this context.
func (s *PricingService) computeBreakdown(ctx context.Context, req *ResolveRequest, item *ResolveItem, product *models.Product, zone *models.GeoZone, segment *models.UserSegment, quantity int) (*models.PriceBreakdown, string, error) {
	mctx := &MatchContext{
		ProductID:          item.ProductID,
		Category:           product.Category,
		SegmentID:          &segment.ID,
		SegmentCode:        segment.Code,
		Quantity:           quantity,
		SelectedAttributes: item.SelectedAttributes,
		PromoCodes:         req.PromoCodes,
		Now:                s.now(),
	}
	if zone != nil {
		mctx.ZoneID = &zone.ID
		mctx.ZoneName = zone.Name
	}

	result, err := s.waterfall.Resolve(ctx, mctx)
	if err != nil {
		return nil, "", err
	}
	if !result.IsAvailable {
		return nil, result.RestrictionReason, nil
	}

	pricingKey, err := utils.GeneratePricingKey()
	if err != nil {
		return nil, "", err
	}

	currency := result.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	breakdown := &models.PriceBreakdown{
		PricingKey:       pricingKey,
		ProductID:        item.ProductID,
		Currency:         currency,
		BasePrice:        result.BasePrice,
		UnitPrice:        result.FinalPrice,
		Quantity:         quantity,
		GSTPercentage:    product.GSTPercentage,
		PriceBookSource:  result.SourceBookID,
		AppliedModifiers: result.AppliedModifiers,
		CalculatedAt:     s.now().UTC(),
	}
	fillTotals(breakdown)
	return breakdown, "", nil
}

// CreatePriceSnapshot computes a fresh, uncached breakdown for a single item
// and wraps it in a checksummed snapshot for embedding into an order. An
// unavailable product is an error here: orders never carry a missing price.
func (s *PricingService) CreatePriceSnapshot(ctx context.Context, req *ResolveRequest) (*models.PriceSnapshot, error) {
	if len(req.Items) != 1 {
		return nil, fmt.Errorf("%w: snapshot requires exactly one item", utils.ErrValidation)
	}
	item := req.Items[0]

	zone, err := s.segments.ResolveZone(ctx, req.Pincode)
	if err != nil {
		return nil, err
	}
	segment, err := s.segments.ResolveSegment(ctx, req.UserID, req.SegmentID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, utils.ErrProductNotFound
	}

	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}
	breakdown, reason, err := s.computeBreakdown(ctx, req, &item, product, zone, segment, quantity)
	if err != nil {
		return nil, err
	}
	if breakdown == nil {
		return nil, fmt.Errorf("%w: %s", utils.ErrValidation, reason)
	}

	snapshotID, err := utils.GenerateSnapshotID()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(breakdown)
	if err != nil {
		return nil, err
	}

	return &models.PriceSnapshot{
		SnapshotID: snapshotID,
		Breakdown:  *breakdown,
		Checksum:   utils.SnapshotChecksum(payload, s.snapshotSecret),
		CreatedAt:  s.now().UTC(),
	}, nil
}

// LogPricingCalculation appends one audit row per applied modifier. Logging
// is best effort: a failed insert is queued for the retry worker and never
// fails the caller.
func (s *PricingService) LogPricingCalculation(ctx context.Context, orderID int, snapshot *models.PriceSnapshot) {
	for _, am := range snapshot.Breakdown.AppliedModifiers {
		modifierID := am.ModifierID
		row := models.PricingCalculationLog{
			OrderID:      orderID,
			PricingKey:   snapshot.Breakdown.PricingKey,
			ModifierID:   &modifierID,
			Scope:        am.Scope,
			BeforeAmount: am.Before,
			AfterAmount:  am.After,
			Reason:       am.Reason,
			AppliedAt:    s.now().UTC(),
		}
		if err := s.audit.Insert(ctx, &row); err != nil {
			log.Warn().Err(err).Int("order_id", orderID).Msg("audit insert failed, queueing for retry")
			select {
			case s.retry <- row:
			default:
				log.Error().Int("order_id", orderID).Msg("audit retry queue full, dropping row")
			}
		}
	}
}

// InvalidateCache purges cached breakdowns matching the given dimensions.
// Nil dimensions are wildcards.
func (s *PricingService) InvalidateCache(ctx context.Context, productID, segmentID, zoneID *int) int {
	purged, err := s.cache.Invalidate(ctx, productID, segmentID, zoneID)
	if err != nil {
		log.Warn().Err(err).Msg("cache invalidation failed")
		return 0
	}
	return purged
}

// rescaleBreakdown derives totals for a different quantity from a cached
// unit price without recomputing the waterfall.
func rescaleBreakdown(cached *models.PriceBreakdown, quantity int) *models.PriceBreakdown {
	bd := *cached
	bd.Quantity = quantity
	fillTotals(&bd)
	return &bd
}

// fillTotals derives subtotal, GST, and total payable from the unit price
// and quantity already present on the breakdown.
func fillTotals(bd *models.PriceBreakdown) {
	bd.Subtotal = bd.UnitPrice.Mul(decimal.NewFromInt(int64(bd.Quantity)))
	bd.GSTAmount = bd.Subtotal.Mul(bd.GSTPercentage).Div(hundred).Round(2)
	bd.TotalPayable = bd.Subtotal.Add(bd.GSTAmount)
}
