package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/utils"
)

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	f.mods.candidates = []models.PriceModifier{globalModifier(1, models.PercentDec, "10", 1)}
	orders := &fakeOrderStore{}
	svc := NewOrderService(f.pricing, orders)

	order, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		Pincode:   "560001",
		ProductID: 7,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.NotZero(t, order.ID)
	require.NotEmpty(t, order.OrderNumber)
	require.Equal(t, models.OrderStatusCreated, order.Status)
	require.Equal(t, 7, order.ProductID)
	require.Equal(t, 2, order.Quantity)

	// 100 * 0.90 = 90.00 unit, x2 = 180.00, 18% GST = 32.40.
	require.True(t, d("180.00").Equal(order.Subtotal), "got %s", order.Subtotal)
	require.True(t, d("32.40").Equal(order.GSTAmount))
	require.True(t, d("212.40").Equal(order.TotalPayable))

	// The frozen snapshot round-trips with a verifiable checksum.
	var snapshot models.PriceSnapshot
	require.NoError(t, json.Unmarshal(order.Snapshot, &snapshot))
	require.NotEmpty(t, snapshot.SnapshotID)
	payload, err := json.Marshal(snapshot.Breakdown)
	require.NoError(t, err)
	require.True(t, utils.VerifySnapshotChecksum(payload, snapshot.Checksum, "snapshot-secret"))

	// One audit row per applied modifier, tied to the created order.
	require.Len(t, f.audit.rows, 1)
	require.Equal(t, order.ID, f.audit.rows[0].OrderID)
	require.Equal(t, snapshot.Breakdown.PricingKey, f.audit.rows[0].PricingKey)
}

func TestCreateOrderUnavailableProduct(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	orders := &fakeOrderStore{}
	svc := NewOrderService(f.pricing, orders)

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{ProductID: 9, Quantity: 1})
	require.ErrorIs(t, err, utils.ErrProductNotFound)
	require.Empty(t, orders.orders)
}

func TestGetOrder(t *testing.T) {
	t.Parallel()

	f := newPricingFixture()
	orders := &fakeOrderStore{}
	svc := NewOrderService(f.pricing, orders)

	created, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{ProductID: 7, Quantity: 1})
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.OrderNumber, got.OrderNumber)

	_, err = svc.GetOrder(context.Background(), 999)
	require.ErrorIs(t, err, utils.ErrOrderNotFound)
}
