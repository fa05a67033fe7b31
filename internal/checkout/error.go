package checkout

import "storefront-be/internal/apperror"

var (
	ErrUnauthenticated    = apperror.Unauthenticated("user not authenticated")
	ErrEmptyCart          = apperror.Validation("cart is empty")
	ErrInvalidQuantity    = apperror.Validation("quantity must be greater than zero")
	ErrProductNotFound    = apperror.NotFound("product not found")
	ErrInsufficientStock  = apperror.Validation("insufficient stock")
	ErrTooManyItems       = apperror.Validation("too many items for a single checkout")
	ErrPaymentUnavailable = apperror.Upstream("payment service unavailable")
)
