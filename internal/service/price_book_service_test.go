package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
)

func hierarchyEntry(id, bookID int, price string, isMaster bool, zoneID, segmentID *int) repository.EntryWithBook {
	e := entry(id, bookID, price, isMaster, zoneID, segmentID)
	e.BookName = "book-" + price
	return e
}

func levelByName(t *testing.T, levels []models.HierarchyLevel, name models.PriceLevel) models.HierarchyLevel {
	t.Helper()
	for _, l := range levels {
		if l.Level == name {
			return l
		}
	}
	t.Fatalf("level %s not present", name)
	return models.HierarchyLevel{}
}

func TestGetHierarchyMasterOnly(t *testing.T) {
	t.Parallel()

	store := &fakeBaseStore{entries: []repository.EntryWithBook{
		hierarchyEntry(1, 10, "100", true, nil, nil),
	}}
	svc := NewPriceBookService(store)

	levels, err := svc.GetHierarchy(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	require.Equal(t, models.LevelMaster, levels[0].Level)
	require.True(t, levels[0].HasEntry)
	require.True(t, levels[0].IsEffective)
	require.True(t, d("100").Equal(levels[0].Price.Decimal))
}

func TestGetHierarchyMostSpecificWins(t *testing.T) {
	t.Parallel()

	// Master, zone, and zone+segment all carry entries; only the most
	// specific is effective. Levels are never merged.
	store := &fakeBaseStore{entries: []repository.EntryWithBook{
		hierarchyEntry(1, 10, "100", true, nil, nil),
		hierarchyEntry(2, 20, "95", false, intPtr(1), nil),
		hierarchyEntry(3, 30, "90", false, intPtr(1), intPtr(2)),
	}}
	svc := NewPriceBookService(store)

	levels, err := svc.GetHierarchy(context.Background(), 1, intPtr(1), intPtr(2))
	require.NoError(t, err)
	require.Len(t, levels, 4)

	master := levelByName(t, levels, models.LevelMaster)
	require.True(t, master.HasEntry)
	require.False(t, master.IsEffective)

	zone := levelByName(t, levels, models.LevelZone)
	require.True(t, zone.HasEntry)
	require.False(t, zone.IsEffective)

	segment := levelByName(t, levels, models.LevelSegment)
	require.False(t, segment.HasEntry)

	zs := levelByName(t, levels, models.LevelZoneSegment)
	require.True(t, zs.HasEntry)
	require.True(t, zs.IsEffective)
	require.True(t, d("90").Equal(zs.Price.Decimal))
}

func TestGetHierarchyIgnoresOtherDimensions(t *testing.T) {
	t.Parallel()

	// Entries scoped to a different zone or segment are invisible in this
	// context: the master entry stays effective.
	store := &fakeBaseStore{entries: []repository.EntryWithBook{
		hierarchyEntry(1, 10, "100", true, nil, nil),
		hierarchyEntry(2, 20, "95", false, intPtr(9), nil),
		hierarchyEntry(3, 30, "90", false, nil, intPtr(9)),
	}}
	svc := NewPriceBookService(store)

	levels, err := svc.GetHierarchy(context.Background(), 1, intPtr(1), intPtr(2))
	require.NoError(t, err)

	require.False(t, levelByName(t, levels, models.LevelZone).HasEntry)
	require.False(t, levelByName(t, levels, models.LevelSegment).HasEntry)
	require.True(t, levelByName(t, levels, models.LevelMaster).IsEffective)
}

func TestGetBasePriceDelegates(t *testing.T) {
	t.Parallel()

	svc := NewPriceBookService(baseAt("42"))
	base, err := svc.GetBasePrice(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, base)
	require.True(t, d("42").Equal(base.BasePrice))

	svc = NewPriceBookService(&fakeBaseStore{})
	base, err = svc.GetBasePrice(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	require.Nil(t, base)
}
