package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/print24/pricing_api/internal/repository"
	"github.com/print24/pricing_api/internal/service"
	"github.com/print24/pricing_api/internal/utils"
)

// OrderHandler handles order creation and audit trail reads.
type OrderHandler struct {
	orders *service.OrderService
	logs   *repository.PricingLogRepository
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *service.OrderService, logs *repository.PricingLogRepository) *OrderHandler {
	return &OrderHandler{orders: orders, logs: logs}
}

// Create places an order, freezing a fresh price snapshot into it.
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.ProductID == 0 {
		utils.Error(c, 400, "VALIDATION_ERROR", "productId is required")
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 201, "Order created", gin.H{"order": order})
}

// Get returns one order including its frozen snapshot.
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid order id")
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Order retrieved", gin.H{"order": order})
}

// GetPricingLogs returns the audit trail of one order in application order.
func (h *OrderHandler) GetPricingLogs(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid order id")
		return
	}
	if _, err := h.orders.GetOrder(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}
	rows, err := h.logs.ListByOrder(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Pricing logs retrieved", gin.H{"logs": rows})
}
