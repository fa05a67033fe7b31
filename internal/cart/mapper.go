package cart

import "time"

type ItemResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
	Available   bool   `json:"available"`
	UpdatedAt   string `json:"updated_at"`
}

type Response struct {
	Items     []*ItemResponse `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  string          `json:"subtotal"`
}

func ToItemResponse(it *CartItem) *ItemResponse {
	return &ItemResponse{
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice.StringFixed(2),
		LineTotal:   it.LineTotal().StringFixed(2),
		Available:   it.Active && it.Inventory >= it.Quantity,
		UpdatedAt:   it.UpdatedAt.Format(time.RFC3339),
	}
}

func ToResponse(c *Cart) *Response {
	items := make([]*ItemResponse, 0, len(c.Items))
	count := 0
	for _, it := range c.Items {
		items = append(items, ToItemResponse(it))
		count += it.Quantity
	}
	return &Response{
		Items:     items,
		ItemCount: count,
		Subtotal:  c.Subtotal.StringFixed(2),
	}
}
