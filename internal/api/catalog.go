package api

import (
	"net/http"

	"storefront-be/internal/product"
	"storefront-be/internal/transport"
)

type productListResponse struct {
	Items      []*product.Response `json:"items"`
	TotalCount *int                `json:"total_count,omitempty"`
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pagination(r)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := product.ListOptions{
		Search:       queryString(r, "search"),
		Page:         page,
		Limit:        limit,
		SortField:    product.ParseSortField(q.Get("sort")),
		SortDir:      product.ParseSortDirection(q.Get("dir")),
		IncludeCount: q.Get("count") != "false",
	}

	res, err := s.products.List(r.Context(), opts)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, productListResponse{
		Items:      product.ToResponses(res.Items),
		TotalCount: res.TotalCount,
	})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, product.ToResponse(p))
}
