package payment

import (
	"context"
)

type Gateway interface {
	// CreateCheckoutSession makes a single attempt; callers must not retry
	// blindly since the processor may have created the session.
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)

	// ParseWebhook verifies the signature header against the shared secret
	// before decoding anything. Verification failures wrap
	// ErrInvalidSignature.
	ParseWebhook(payload []byte, signatureHeader string) (*Event, error)
}
