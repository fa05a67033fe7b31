package api

import (
	"net/http"

	"storefront-be/internal/checkout"
	"storefront-be/internal/transport"
)

func (s *Server) initiateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := s.checkout.Initiate(r.Context(), req)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, res)
}
