package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
)

// PriceBookService answers base-price lookups against the price book
// hierarchy and exposes the hierarchy itself for the admin UI.
type PriceBookService struct {
	books BasePriceStore
}

// NewPriceBookService constructs a PriceBookService.
func NewPriceBookService(books BasePriceStore) *PriceBookService {
	return &PriceBookService{books: books}
}

// GetBasePrice returns the most specific base price for a product, searching
// zone+segment, zone, segment, then master books in that order. The first
// matching active entry wins; levels are never merged. A nil result means
// the product is unavailable in this context — not an error.
func (s *PriceBookService) GetBasePrice(ctx context.Context, productID int, zoneID, segmentID *int) (*repository.BaseEntry, error) {
	return s.books.FindBaseEntry(ctx, productID, zoneID, segmentID)
}

// GetHierarchy returns the ordered hierarchy levels for a product in a
// context, each with its book, entry price (if any), and whether it is the
// level the lookup would actually use.
func (s *PriceBookService) GetHierarchy(ctx context.Context, productID int, zoneID, segmentID *int) ([]models.HierarchyLevel, error) {
	entries, err := s.books.ListEntriesForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	levels := []models.HierarchyLevel{
		{Level: models.LevelMaster},
	}
	if zoneID != nil {
		levels = append(levels, models.HierarchyLevel{Level: models.LevelZone})
	}
	if segmentID != nil {
		levels = append(levels, models.HierarchyLevel{Level: models.LevelSegment})
	}
	if zoneID != nil && segmentID != nil {
		levels = append(levels, models.HierarchyLevel{Level: models.LevelZoneSegment})
	}

	for i := range levels {
		for _, e := range entries {
			if entryLevel(e, zoneID, segmentID) != levels[i].Level {
				continue
			}
			bookID := e.PriceBookID
			levels[i].BookID = &bookID
			levels[i].BookName = e.BookName
			levels[i].Price = decimal.NewNullDecimal(e.BasePrice)
			levels[i].HasEntry = true
			break
		}
	}

	// The effective level is the most specific one holding an entry,
	// mirroring the lookup order in GetBasePrice.
	for _, level := range []models.PriceLevel{models.LevelZoneSegment, models.LevelZone, models.LevelSegment, models.LevelMaster} {
		for i := range levels {
			if levels[i].Level == level && levels[i].HasEntry {
				levels[i].IsEffective = true
				return levels, nil
			}
		}
	}
	return levels, nil
}

// entryLevel classifies an entry's book by the request dimensions. Books
// scoped to other zones or segments return an empty level and match nothing.
func entryLevel(e repository.EntryWithBook, zoneID, segmentID *int) models.PriceLevel {
	switch {
	case e.IsMaster:
		return models.LevelMaster
	case e.GeoZoneID != nil && e.UserSegmentID != nil:
		if intsMatch(e.GeoZoneID, zoneID) && intsMatch(e.UserSegmentID, segmentID) {
			return models.LevelZoneSegment
		}
	case e.GeoZoneID != nil:
		if intsMatch(e.GeoZoneID, zoneID) {
			return models.LevelZone
		}
	case e.UserSegmentID != nil:
		if intsMatch(e.UserSegmentID, segmentID) {
			return models.LevelSegment
		}
	}
	return ""
}

func intsMatch(a, b *int) bool {
	return a != nil && b != nil && *a == *b
}
