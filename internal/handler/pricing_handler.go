package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/print24/pricing_api/internal/service"
	"github.com/print24/pricing_api/internal/utils"
)

// PricingHandler exposes the public price resolution endpoints.
type PricingHandler struct {
	pricing *service.PricingService
	books   *service.PriceBookService
}

// NewPricingHandler constructs a PricingHandler.
func NewPricingHandler(pricing *service.PricingService, books *service.PriceBookService) *PricingHandler {
	return &PricingHandler{pricing: pricing, books: books}
}

// ResolvePrices resolves prices for a batch of products in one customer
// context. Unavailable products come back flagged in the result list; the
// request only fails on context-level errors.
func (h *PricingHandler) ResolvePrices(c *gin.Context) {
	var req service.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if len(req.Items) == 0 {
		utils.Error(c, 400, "VALIDATION_ERROR", "items must not be empty")
		return
	}

	results, err := h.pricing.ResolvePrices(c.Request.Context(), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.Success(c, 200, "Prices resolved", gin.H{
		"results": results,
	})
}

// GetHierarchy returns the price book hierarchy for a product in an optional
// zone/segment context, showing which level the lookup would use.
func (h *PricingHandler) GetHierarchy(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid product id")
		return
	}

	zoneID := queryInt(c, "zoneId")
	segmentID := queryInt(c, "segmentId")

	levels, err := h.books.GetHierarchy(c.Request.Context(), productID, zoneID, segmentID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.Success(c, 200, "Hierarchy retrieved", gin.H{
		"productId": productID,
		"levels":    levels,
	})
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) *int {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
