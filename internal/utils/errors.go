package utils

import "errors"

// Common application errors used across services.
var (
	// ErrNoSegment means no user segment could be resolved through the
	// explicit -> stored -> default -> RETAIL chain. Pricing cannot proceed.
	ErrNoSegment = errors.New("CONFIGURATION_ERROR")

	// ErrNoMasterBook means no active master price book exists.
	ErrNoMasterBook = errors.New("NO_MASTER_PRICE_BOOK")

	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrProductNotFound    = errors.New("PRODUCT_NOT_FOUND")
	ErrBookNotFound       = errors.New("PRICE_BOOK_NOT_FOUND")
	ErrModifierNotFound   = errors.New("MODIFIER_NOT_FOUND")
	ErrOrderNotFound      = errors.New("ORDER_NOT_FOUND")
	ErrValidation         = errors.New("VALIDATION_ERROR")
	ErrDuplicateEntry     = errors.New("DUPLICATE_PRICE_BOOK_ENTRY")
)
