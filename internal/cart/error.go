package cart

import "storefront-be/internal/apperror"

var (
	ErrUserNotAuthenticated = apperror.Unauthenticated("user not authenticated")

	ErrInvalidQuantity   = apperror.Validation("invalid cart quantity")
	ErrInvalidProduct    = apperror.Validation("invalid product id")
	ErrInsufficientStock = apperror.Validation("insufficient stock")

	ErrCartItemNotFound = apperror.NotFound("cart item not found")
)
