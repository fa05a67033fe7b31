package order

import (
	"errors"

	"storefront-be/internal/apperror"
)

var (
	ErrUnauthenticated     = apperror.Unauthenticated("user not authenticated")
	ErrOrderNotFound       = apperror.NotFound("order not found")
	ErrForbidden           = apperror.Forbidden("order belongs to another user")
	ErrOrderNotCancellable = apperror.Conflict("order can no longer be cancelled")
	ErrInvalidStatus       = apperror.Validation("invalid order status")
	ErrInvalidTransition   = apperror.Validation("status transition not allowed")
	ErrEmptySettlement     = apperror.Validation("settlement has no items")
	ErrInvalidDateRange    = apperror.Validation("date_to must not be before date_from")

	// ErrDuplicateSession is returned when a concurrent delivery already
	// created the order for a session.
	ErrDuplicateSession = errors.New("order already exists for payment session")

	// ErrOrderNumberTaken is returned when the generated order number
	// collides with an existing one. Callers retry with a fresh number.
	ErrOrderNumberTaken = errors.New("order number already in use")
)
