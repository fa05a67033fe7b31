package api

import (
	"net/http"

	"storefront-be/internal/loyalty"
	"storefront-be/internal/transport"
)

func (s *Server) loyaltySummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.loyalty.GetAccount(r.Context(), currentUser(r))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, loyalty.ToSummaryResponse(sum))
}

func (s *Server) loyaltyHistory(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pagination(r)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	txs, err := s.loyalty.History(r.Context(), currentUser(r), limit, page)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, loyalty.ToTransactionResponses(txs))
}

func (s *Server) redeemPoints(w http.ResponseWriter, r *http.Request) {
	var req loyalty.RedeemRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := s.loyalty.RedeemPoints(r.Context(), currentUser(r), req.Points, req.Description)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, loyalty.ToRedemptionResponse(res))
}
