package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID          int64
	OrderNumber string
	UserID      uint
	Status      Status

	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	Currency string

	ShippingAddressID uuid.UUID
	PaymentSessionID  string

	CreatedAt time.Time
	UpdatedAt time.Time

	Items []OrderItem
}

// OrderItem is a purchase-time snapshot; later catalog edits never change it.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type SettlementItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Settlement is a confirmed payment as reported by the processor.
type Settlement struct {
	SessionID string
	UserID    uint
	AddressID uuid.UUID
	Items     []SettlementItem

	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Currency string
}

type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByTotal     SortField = "total"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ListFilter narrows the admin order listing. Zero values mean no filter.
type ListFilter struct {
	Status   *Status
	Search   *string
	DateFrom *time.Time
	DateTo   *time.Time

	SortField SortField
	SortDir   SortDirection

	Page  int32
	Limit int32
}

type ListResult struct {
	Items      []*Order
	TotalCount int
}
