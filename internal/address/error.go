package address

import "storefront-be/internal/apperror"

var (
	ErrUnauthenticated    = apperror.Unauthenticated("unauthenticated")
	ErrAddressNotFound    = apperror.NotFound("address not found")
	ErrInvalidAddressData = apperror.Validation("name, phone, address_line1, city, postal_code and country are required")
)
