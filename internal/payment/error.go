package payment

import "errors"

var (
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrMalformedEvent    = errors.New("malformed webhook event")
	ErrMalformedMetadata = errors.New("malformed session metadata")
	ErrMetadataTooLarge  = errors.New("session metadata too large")
)
