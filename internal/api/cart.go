package api

import (
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/transport"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type syncCartRequest struct {
	Items []cart.SyncItem `json:"items"`
}

func writeCart(w http.ResponseWriter, r *http.Request, c *cart.Cart, err error) {
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, cart.ToResponse(c))
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := s.carts.GetCart(r.Context(), currentUser(r))
	writeCart(w, r, c, err)
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	c, err := s.carts.AddToCart(r.Context(), cart.AddToCartParams{
		UserID:    currentUser(r),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	writeCart(w, r, c, err)
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathInt64(r, "productId")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var req updateCartItemRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	c, err := s.carts.UpdateQuantity(r.Context(), cart.UpdateQuantityParams{
		UserID:    currentUser(r),
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	writeCart(w, r, c, err)
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathInt64(r, "productId")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	c, err := s.carts.RemoveFromCart(r.Context(), currentUser(r), productID)
	writeCart(w, r, c, err)
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := s.carts.ClearCart(r.Context(), currentUser(r)); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// syncCart merges the client-local cart submitted after sign-in.
func (s *Server) syncCart(w http.ResponseWriter, r *http.Request) {
	var req syncCartRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	c, err := s.carts.Sync(r.Context(), currentUser(r), req.Items)
	writeCart(w, r, c, err)
}
