package api

import (
	"net/http"

	"storefront-be/internal/order"
	"storefront-be/internal/transport"
)

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) listMyOrders(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pagination(r)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	orders, err := s.orders.ListMine(r.Context(), page, limit)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, order.ListResponse{Items: order.ToResponses(orders)})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, order.ToResponse(o))
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := s.orders.Cancel(r.Context(), currentUser(r), id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, order.ToResponse(o))
}

func parseOrderFilter(r *http.Request) (order.ListFilter, error) {
	var f order.ListFilter

	page, limit, err := pagination(r)
	if err != nil {
		return f, err
	}
	f.Page, f.Limit = page, limit

	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		st, err := order.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}

	f.Search = queryString(r, "search")
	if f.DateFrom, err = queryTime(r, "date_from", false); err != nil {
		return f, err
	}
	if f.DateTo, err = queryTime(r, "date_to", true); err != nil {
		return f, err
	}

	f.SortField = order.ParseSortField(q.Get("sort"))
	f.SortDir = order.ParseSortDirection(q.Get("dir"))
	return f, nil
}

func (s *Server) listAllOrders(w http.ResponseWriter, r *http.Request) {
	f, err := parseOrderFilter(r)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := s.orders.ListAll(r.Context(), f)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	total := res.TotalCount
	transport.WriteJSON(w, http.StatusOK, order.ListResponse{
		Items:      order.ToResponses(res.Items),
		TotalCount: &total,
	})
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	st, err := order.ParseStatus(req.Status)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := s.orders.UpdateStatus(r.Context(), id, st)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, order.ToResponse(o))
}
