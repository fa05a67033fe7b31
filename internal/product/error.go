package product

import "storefront-be/internal/apperror"

var (
	ErrProductNotFound = apperror.NotFound("product not found")
	ErrInvalidProduct  = apperror.Validation("invalid product id")
)
