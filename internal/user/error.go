package user

import "storefront-be/internal/apperror"

var (
	ErrEmailExists        = apperror.Conflict("email already registered")
	ErrInvalidCredentials = apperror.Unauthenticated("invalid email or password")
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrInvalidEmail       = apperror.Validation("invalid email")
	ErrWeakPassword       = apperror.Validation("password must be at least 8 characters")
)
