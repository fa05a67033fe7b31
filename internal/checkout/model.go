package checkout

import (
	"github.com/google/uuid"
)

type LineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Request starts a hosted payment session. When Items is empty the caller's
// server cart is used.
type Request struct {
	Items             []LineRequest `json:"cartItems"`
	ShippingAddressID uuid.UUID     `json:"shippingAddressId"`
}

type Response struct {
	SessionID   string `json:"sessionId"`
	RedirectURL string `json:"redirectUrl"`
}
