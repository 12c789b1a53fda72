package handler

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
	"github.com/print24/pricing_api/internal/service"
	"github.com/print24/pricing_api/internal/utils"
)

// PriceBookHandler handles price book and entry administration, including
// conflict analysis for proposed price changes.
type PriceBookHandler struct {
	repo      *repository.PriceBookRepository
	conflicts *service.ConflictService
	pricing   *service.PricingService
}

// NewPriceBookHandler constructs a PriceBookHandler.
func NewPriceBookHandler(repo *repository.PriceBookRepository, conflicts *service.ConflictService, pricing *service.PricingService) *PriceBookHandler {
	return &PriceBookHandler{repo: repo, conflicts: conflicts, pricing: pricing}
}

// List returns all price books.
func (h *PriceBookHandler) List(c *gin.Context) {
	books, err := h.repo.List(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Price books retrieved", gin.H{"priceBooks": books})
}

// Get returns one price book.
func (h *PriceBookHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid price book id")
		return
	}
	book, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	if book == nil {
		serviceError(c, utils.ErrBookNotFound)
		return
	}
	utils.Success(c, 200, "Price book retrieved", gin.H{"priceBook": book})
}

// Create inserts a price book. New books are never created as master; use
// SetMaster to promote one.
func (h *PriceBookHandler) Create(c *gin.Context) {
	var book models.PriceBook
	if err := c.ShouldBindJSON(&book); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if book.Name == "" {
		utils.Error(c, 400, "VALIDATION_ERROR", "name is required")
		return
	}
	book.IsMaster = false
	if book.CalculationLogic == "" {
		book.CalculationLogic = models.CalculationFixed
	}

	if err := h.repo.Create(c.Request.Context(), &book); err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 201, "Price book created", gin.H{"priceBook": book})
}

// Update updates a price book's mutable fields and purges affected prices.
func (h *PriceBookHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid price book id")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	if existing == nil {
		serviceError(c, utils.ErrBookNotFound)
		return
	}

	var book models.PriceBook
	if err := c.ShouldBindJSON(&book); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	book.ID = id
	if err := h.repo.Update(c.Request.Context(), &book); err != nil {
		serviceError(c, err)
		return
	}

	h.invalidateForBook(c, existing)
	h.invalidateForBook(c, &book)
	utils.Success(c, 200, "Price book updated", gin.H{"priceBook": book})
}

// SetMaster promotes a book to master, demoting the previous one in the same
// transaction.
func (h *PriceBookHandler) SetMaster(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid price book id")
		return
	}
	if err := h.repo.SetMaster(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			serviceError(c, utils.ErrBookNotFound)
			return
		}
		serviceError(c, err)
		return
	}

	// The master is the fallback for every context; purge everything.
	h.pricing.InvalidateCache(c.Request.Context(), nil, nil, nil)
	utils.Success(c, 200, "Master price book updated", nil)
}

// Delete removes a price book and its entries.
func (h *PriceBookHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid price book id")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	if existing == nil {
		serviceError(c, utils.ErrBookNotFound)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}

	h.invalidateForBook(c, existing)
	utils.Success(c, 200, "Price book deleted", nil)
}

type entryRequest struct {
	ProductID      int                 `json:"productId" binding:"required"`
	BasePrice      decimal.Decimal     `json:"basePrice"`
	CompareAtPrice decimal.NullDecimal `json:"compareAtPrice"`
	IsActive       *bool               `json:"isActive"`
}

// UpsertEntry creates or updates the entry for a (book, product) pair.
func (h *PriceBookHandler) UpsertEntry(c *gin.Context) {
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid price book id")
		return
	}
	book, err := h.repo.GetByID(c.Request.Context(), bookID)
	if err != nil {
		serviceError(c, err)
		return
	}
	if book == nil {
		serviceError(c, utils.ErrBookNotFound)
		return
	}

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.BasePrice.IsNegative() {
		utils.Error(c, 400, "VALIDATION_ERROR", "basePrice must not be negative")
		return
	}

	entry := models.PriceBookEntry{
		PriceBookID:    bookID,
		ProductID:      req.ProductID,
		BasePrice:      req.BasePrice,
		CompareAtPrice: req.CompareAtPrice,
		IsActive:       true,
	}
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}
	if err := h.repo.UpsertEntry(c.Request.Context(), &entry); err != nil {
		serviceError(c, err)
		return
	}

	h.pricing.InvalidateCache(c.Request.Context(), &req.ProductID, nil, nil)
	utils.Success(c, 200, "Entry saved", gin.H{"entry": entry})
}

// DeleteEntry removes one entry.
func (h *PriceBookHandler) DeleteEntry(c *gin.Context) {
	bookID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid price book id")
		return
	}
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid product id")
		return
	}

	entry, err := h.repo.GetEntry(c.Request.Context(), bookID, productID)
	if err != nil {
		serviceError(c, err)
		return
	}
	if entry == nil {
		utils.Error(c, 404, "ENTRY_NOT_FOUND", "Entry not found")
		return
	}
	if err := h.repo.DeleteEntry(c.Request.Context(), entry.ID); err != nil {
		serviceError(c, err)
		return
	}

	h.pricing.InvalidateCache(c.Request.Context(), &productID, nil, nil)
	utils.Success(c, 200, "Entry deleted", nil)
}

type conflictRequest struct {
	ProductID   int               `json:"productId" binding:"required"`
	UpdateLevel models.PriceLevel `json:"updateLevel" binding:"required"`
	ZoneID      *int              `json:"zoneId,omitempty"`
	SegmentID   *int              `json:"segmentId,omitempty"`
	NewPrice    decimal.Decimal   `json:"newPrice"`
	Resolution  string            `json:"resolution,omitempty"`
}

// CheckConflicts reports which more-specific overrides would become
// inconsistent with a proposed price. Purely advisory.
func (h *PriceBookHandler) CheckConflicts(c *gin.Context) {
	var req conflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	report, err := h.conflicts.DetectConflicts(c.Request.Context(), req.ProductID, req.UpdateLevel, req.ZoneID, req.SegmentID, req.NewPrice)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Conflicts analyzed", report)
}

// ResolveConflict executes the admin's chosen resolution strategy.
func (h *PriceBookHandler) ResolveConflict(c *gin.Context) {
	var req conflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Resolution == "" {
		utils.Error(c, 400, "VALIDATION_ERROR", "resolution is required")
		return
	}

	modified, err := h.conflicts.ResolveConflict(c.Request.Context(), req.ProductID, req.UpdateLevel, req.ZoneID, req.SegmentID, req.NewPrice, service.Resolution(req.Resolution))
	if err != nil {
		serviceError(c, err)
		return
	}

	h.pricing.InvalidateCache(c.Request.Context(), &req.ProductID, nil, nil)
	utils.Success(c, 200, "Conflict resolved", gin.H{"modified": modified})
}

// invalidateForBook purges the cache dimensions a book's scope covers.
func (h *PriceBookHandler) invalidateForBook(c *gin.Context, book *models.PriceBook) {
	switch {
	case book.IsMaster:
		h.pricing.InvalidateCache(c.Request.Context(), nil, nil, nil)
	case book.GeoZoneID != nil && book.UserSegmentID != nil:
		h.pricing.InvalidateCache(c.Request.Context(), nil, book.UserSegmentID, book.GeoZoneID)
	case book.GeoZoneID != nil:
		h.pricing.InvalidateCache(c.Request.Context(), nil, nil, book.GeoZoneID)
	case book.UserSegmentID != nil:
		h.pricing.InvalidateCache(c.Request.Context(), nil, book.UserSegmentID, nil)
	default:
		h.pricing.InvalidateCache(c.Request.Context(), nil, nil, nil)
	}
}
