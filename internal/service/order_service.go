package service

import (
	"context"
	"encoding/json"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/utils"
)

// CreateOrderRequest places an order for a single product line. The price is
// resolved fresh at creation time and frozen into the order.
type CreateOrderRequest struct {
	UserID             *int                       `json:"userId,omitempty"`
	Pincode            string                     `json:"pincode,omitempty"`
	SegmentID          *int                       `json:"segmentId,omitempty"`
	PromoCodes         []string                   `json:"promoCodes,omitempty"`
	ProductID          int                        `json:"productId"`
	Quantity           int                        `json:"quantity"`
	SelectedAttributes []models.SelectedAttribute `json:"selectedAttributes,omitempty"`
}

// OrderService creates orders carrying immutable price snapshots.
type OrderService struct {
	pricing *PricingService
	orders  OrderStore
}

// NewOrderService constructs an OrderService.
func NewOrderService(pricing *PricingService, orders OrderStore) *OrderService {
	return &OrderService{pricing: pricing, orders: orders}
}

// CreateOrder resolves a fresh snapshot for the item, persists the order
// with the snapshot embedded, then writes the audit trail. The snapshot is
// the contract with the customer: later book or modifier changes never touch
// it. Audit logging happens after the order commit and never fails it.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	snapshot, err := s.pricing.CreatePriceSnapshot(ctx, &ResolveRequest{
		UserID:     req.UserID,
		Pincode:    req.Pincode,
		SegmentID:  req.SegmentID,
		PromoCodes: req.PromoCodes,
		Items: []ResolveItem{{
			ProductID:          req.ProductID,
			Quantity:           req.Quantity,
			SelectedAttributes: req.SelectedAttributes,
		}},
	})
	if err != nil {
		return nil, err
	}

	blob, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	orderNumber, err := utils.GenerateOrderNumber()
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber:  orderNumber,
		UserID:       req.UserID,
		ProductID:    req.ProductID,
		Quantity:     snapshot.Breakdown.Quantity,
		Currency:     snapshot.Breakdown.Currency,
		Subtotal:     snapshot.Breakdown.Subtotal,
		GSTAmount:    snapshot.Breakdown.GSTAmount,
		TotalPayable: snapshot.Breakdown.TotalPayable,
		Snapshot:     blob,
		Status:       models.OrderStatusCreated,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.pricing.LogPricingCalculation(ctx, order.ID, snapshot)
	return order, nil
}

// GetOrder fetches an order by id.
func (s *OrderService) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, utils.ErrOrderNotFound
	}
	return order, nil
}
