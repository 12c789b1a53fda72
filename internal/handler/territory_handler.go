package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/print24/pricing_api/internal/repository"
	"github.com/print24/pricing_api/internal/utils"
)

// TerritoryHandler exposes zone and segment reference data for the admin UI.
type TerritoryHandler struct {
	zones    *repository.GeoZoneRepository
	segments *repository.UserSegmentRepository
}

// NewTerritoryHandler constructs a TerritoryHandler.
func NewTerritoryHandler(zones *repository.GeoZoneRepository, segments *repository.UserSegmentRepository) *TerritoryHandler {
	return &TerritoryHandler{zones: zones, segments: segments}
}

// ListZones returns all active zones.
func (h *TerritoryHandler) ListZones(c *gin.Context) {
	zones, err := h.zones.List(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Zones retrieved", gin.H{"zones": zones})
}

// GetZoneAncestry returns a zone and its ancestors, nearest first.
func (h *TerritoryHandler) GetZoneAncestry(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "Invalid zone id")
		return
	}
	zones, err := h.zones.GetAncestry(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Zone ancestry retrieved", gin.H{"zones": zones})
}

// ResolveZone maps a pincode to its zone, mirroring what the resolver does
// internally so admins can verify range configuration.
func (h *TerritoryHandler) ResolveZone(c *gin.Context) {
	pincode := c.Query("pincode")
	if pincode == "" {
		utils.Error(c, 400, "VALIDATION_ERROR", "pincode is required")
		return
	}
	zone, err := h.zones.ResolveByPincode(c.Request.Context(), pincode)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Zone resolved", gin.H{"zone": zone})
}

// ListSegments returns all active segments.
func (h *TerritoryHandler) ListSegments(c *gin.Context) {
	segments, err := h.segments.List(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, 200, "Segments retrieved", gin.H{"segments": segments})
}
