package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

type Product struct {
	ID          int64
	Name        string
	Slug        string
	Description *string
	Price       decimal.Decimal
	Inventory   int
	ImageURL    *string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

type SortField string

const (
	SortFieldCreatedAt SortField = "created_at"
	SortFieldPrice     SortField = "price"
	SortFieldName      SortField = "name"
)

type SortDirection string

const (
	SortDirectionAsc  SortDirection = "ASC"
	SortDirectionDesc SortDirection = "DESC"
)

type ListOptions struct {
	Search    *string
	Page      int32
	Limit     int32
	SortField SortField
	SortDir   SortDirection

	OnlyActive   bool
	IncludeCount bool
}

type ListResult struct {
	Items      []*Product
	TotalCount *int
}
