package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's server-held cart. UnitPrice is the price
// snapshot taken when the line was last written; Inventory and Active
// reflect the product as of the read.
type CartItem struct {
	ID          int64
	UserID      uint
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Inventory   int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

type Cart struct {
	UserID   uint
	Items    []*CartItem
	Subtotal decimal.Decimal
}

func newCart(userID uint, items []*CartItem) *Cart {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	return &Cart{UserID: userID, Items: items, Subtotal: subtotal}
}

type AddToCartParams struct {
	UserID    uint
	ProductID int64
	Quantity  int
}

type UpdateQuantityParams struct {
	UserID    uint
	ProductID int64
	Quantity  int
}

// SyncItem is one entry of a client-local cart submitted on sign-in.
type SyncItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
