package order

import (
	"strings"
	"time"
)

type ItemResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type Response struct {
	ID                int64          `json:"id"`
	OrderNumber       string         `json:"order_number"`
	UserID            uint           `json:"user_id"`
	Status            Status         `json:"status"`
	Subtotal          string         `json:"subtotal"`
	Shipping          string         `json:"shipping"`
	Tax               string         `json:"tax"`
	Total             string         `json:"total"`
	Currency          string         `json:"currency"`
	ShippingAddressID string         `json:"shipping_address_id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Items             []ItemResponse `json:"items"`
}

type ListResponse struct {
	Items      []*Response `json:"items"`
	TotalCount *int        `json:"total_count,omitempty"`
}

func ToResponse(o *Order) *Response {
	if o == nil {
		return nil
	}

	items := make([]ItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			LineTotal:   it.LineTotal().StringFixed(2),
		})
	}

	return &Response{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		Status:            o.Status,
		Subtotal:          o.Subtotal.StringFixed(2),
		Shipping:          o.Shipping.StringFixed(2),
		Tax:               o.Tax.StringFixed(2),
		Total:             o.Total.StringFixed(2),
		Currency:          strings.ToUpper(o.Currency),
		ShippingAddressID: o.ShippingAddressID.String(),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Items:             items,
	}
}

func ToResponses(orders []*Order) []*Response {
	out := make([]*Response, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToResponse(o))
	}
	return out
}

// ParseSortField falls back to created_at for unknown input.
func ParseSortField(s string) SortField {
	switch SortField(strings.ToLower(s)) {
	case SortByTotal:
		return SortByTotal
	default:
		return SortByCreatedAt
	}
}

func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(s, string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// ParseStatus accepts any casing of a known status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}
