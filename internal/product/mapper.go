package product

import (
	"strings"
	"time"
)

// Response is the JSON shape of a catalog entry.
type Response struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price"`
	Inventory   int     `json:"inventory"`
	InStock     bool    `json:"in_stock"`
	ImageURL    *string `json:"image_url,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at,omitempty"`
}

func ParseSortField(f string) SortField {
	switch strings.ToLower(f) {
	case "price":
		return SortFieldPrice
	case "name":
		return SortFieldName
	default:
		return SortFieldCreatedAt
	}
}

func ParseSortDirection(d string) SortDirection {
	if strings.EqualFold(d, "asc") {
		return SortDirectionAsc
	}
	return SortDirectionDesc
}

func ToResponse(p *Product) *Response {
	if p == nil {
		return nil
	}

	var updatedAt *string
	if p.UpdatedAt != nil {
		s := p.UpdatedAt.Format(time.RFC3339)
		updatedAt = &s
	}

	return &Response{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Inventory:   p.Inventory,
		InStock:     p.Inventory > 0,
		ImageURL:    p.ImageURL,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   updatedAt,
	}
}

func ToResponses(items []*Product) []*Response {
	res := make([]*Response, 0, len(items))
	for _, p := range items {
		res = append(res, ToResponse(p))
	}
	return res
}
