package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/print24/pricing_api/internal/utils"
)

// serviceError maps known service errors to the wire envelope. Unknown
// errors become an opaque 500 so internals never leak.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrValidation):
		utils.Error(c, 400, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, utils.ErrInvalidCredentials):
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, utils.ErrInvalidToken):
		utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
	case errors.Is(err, utils.ErrProductNotFound):
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, utils.ErrBookNotFound):
		utils.Error(c, 404, "PRICE_BOOK_NOT_FOUND", "Price book not found")
	case errors.Is(err, utils.ErrModifierNotFound):
		utils.Error(c, 404, "MODIFIER_NOT_FOUND", "Modifier not found")
	case errors.Is(err, utils.ErrOrderNotFound):
		utils.Error(c, 404, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, utils.ErrDuplicateEntry):
		utils.Error(c, 409, "DUPLICATE_PRICE_BOOK_ENTRY", "Entry already exists for this book and product")
	case errors.Is(err, utils.ErrNoSegment):
		utils.Error(c, 500, "CONFIGURATION_ERROR", "No user segment could be resolved; check segment configuration")
	case errors.Is(err, utils.ErrNoMasterBook):
		utils.Error(c, 500, "CONFIGURATION_ERROR", "No master price book is configured")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "An internal error occurred")
	}
}
