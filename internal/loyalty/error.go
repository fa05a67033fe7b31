package loyalty

import "storefront-be/internal/apperror"

var (
	ErrUnauthenticated    = apperror.Unauthenticated("user not authenticated")
	ErrInvalidPoints      = apperror.Validation("points must be greater than zero")
	ErrInsufficientPoints = apperror.Validation("insufficient points")
)
