package api

import (
	"net/http"

	"storefront-be/internal/address"
	"storefront-be/internal/transport"
)

func (s *Server) listAddresses(w http.ResponseWriter, r *http.Request) {
	items, err := s.addresses.List(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, address.ToResponses(items))
}

func (s *Server) createAddress(w http.ResponseWriter, r *http.Request) {
	var input address.CreateAddressInput
	if err := transport.DecodeJSON(w, r, &input); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	a, err := s.addresses.Create(r.Context(), input)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, address.ToResponse(a))
}

func (s *Server) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	if err := s.addresses.Delete(r.Context(), id); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setDefaultAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	if err := s.addresses.SetDefaultAddress(r.Context(), id); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
