package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
	"github.com/print24/pricing_api/internal/service"
	"github.com/print24/pricing_api/internal/utils"
)

// ModifierHandler handles modifier administration plus the public condition
// validation/testing endpoints.
type ModifierHandler struct {
	repo      *repository.ModifierRepository
	modifiers *service.ModifierService
	evaluator *service.ConditionEvaluator
	pricing   *service.PricingService
}

// NewModifierHandler constructs a ModifierHandler.
func NewModifierHandler(repo *repository.ModifierRepository, modifiers *service.ModifierService, evaluator *service.ConditionEvaluator, pricing *service.PricingService) *ModifierHandler {
	return &ModifierHandler{repo: repo, modifiers: modifiers, evaluator: evaluator, pricing: pricing}
}

// List returns all modifiers in application order.
func (h *ModifierHandler) List(c *gin.Context) {
	modifiers, err := h.repo.List(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Modifiers retrieved", gin.H{"modifiers": modifiers})
}

// Get returns one modifier.
func (h *ModifierHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid modifier id")
		return
	}
	m, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	if m == nil {
		serviceError(c, utils.ErrModifierNotFound)
		return
	}
	utils.Success(c, 200, "Modifier retrieved", gin.H{"modifier": m})
}

// Create validates and inserts a modifier, then purges affected cache keys.
func (h *ModifierHandler) Create(c *gin.Context) {
	var m models.PriceModifier
	if err := c.ShouldBindJSON(&m); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := h.modifiers.ValidateModifier(&m); err != nil {
		serviceError(c, err)
		return
	}
	if err := h.repo.Create(c.Request.Context(), &m); err != nil {
		serviceError(c, err)
		return
	}

	h.invalidateFor(c, &m)
	utils.Success(c, 201, "Modifier created", gin.H{"modifier": m})
}

// Update validates and updates a modifier, then purges affected cache keys.
func (h *ModifierHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid modifier id")
		return
	}

	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	if existing == nil {
		serviceError(c, utils.ErrModifierNotFound)
		return
	}

	var m models.PriceModifier
	if err := c.ShouldBindJSON(&m); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	m.ID = id
	if err := h.modifiers.ValidateModifier(&m); err != nil {
		serviceError(c, err)
		return
	}
	if err := h.repo.Update(c.Request.Context(), &m); err != nil {
		serviceError(c, err)
		return
	}

	// Purge for both the old and new scope in case the scope moved.
	h.invalidateFor(c, existing)
	h.invalidateFor(c, &m)
	utils.Success(c, 200, "Modifier updated", gin.H{"modifier": m})
}

// Delete removes a modifier and purges affected cache keys.
func (h *ModifierHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid modifier id")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	if existing == nil {
		serviceError(c, utils.ErrModifierNotFound)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		serviceError(c, err)
		return
	}

	h.invalidateFor(c, existing)
	utils.Success(c, 200, "Modifier deleted", nil)
}

type conditionsRequest struct {
	Conditions models.ConditionTree `json:"conditions" binding:"required"`
}

// ValidateConditions checks a condition tree's structure without evaluating
// it, returning every problem found.
func (h *ModifierHandler) ValidateConditions(c *gin.Context) {
	var req conditionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	errs := h.evaluator.Validate(req.Conditions.Root)
	utils.Success(c, 200, "Conditions validated", gin.H{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

type testConditionsRequest struct {
	Conditions models.ConditionTree   `json:"conditions" binding:"required"`
	Context    map[string]interface{} `json:"context" binding:"required"`
}

// TestConditions evaluates a condition tree against a sample context so
// admins can dry-run rules before activating them.
func (h *ModifierHandler) TestConditions(c *gin.Context) {
	var req testConditionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	errs := h.evaluator.Validate(req.Conditions.Root)
	matched := false
	if len(errs) == 0 {
		matched = h.evaluator.Evaluate(req.Conditions.Root, req.Context)
	}

	utils.Success(c, 200, "Conditions tested", gin.H{
		"matched": matched,
		"valid":   len(errs) == 0,
		"errors":  errs,
	})
}

// invalidateFor purges the cache dimensions a modifier can influence.
// Broad scopes (GLOBAL, ATTRIBUTE, COMBINATION) purge everything.
func (h *ModifierHandler) invalidateFor(c *gin.Context, m *models.PriceModifier) {
	switch m.AppliesTo {
	case models.ScopeProduct:
		h.pricing.InvalidateCache(c.Request.Context(), m.ProductID, nil, nil)
	case models.ScopeZone:
		h.pricing.InvalidateCache(c.Request.Context(), nil, nil, m.GeoZoneID)
	case models.ScopeSegment:
		h.pricing.InvalidateCache(c.Request.Context(), nil, m.UserSegmentID, nil)
	default:
		h.pricing.InvalidateCache(c.Request.Context(), nil, nil, nil)
	}
}
