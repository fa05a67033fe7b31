package api

import (
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Paths that share the strict rate-limit tier.
var strictPaths = []string{"/auth/", "/webhooks/payment"}

func StrictPaths() []string {
	return append([]string(nil), strictPaths...)
}

// Routes builds the router. The access log runs after auth so log lines
// carry the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.CORS(s.allowedOrigin))
	r.Use(middleware.AuthMiddleware(s.tokens))
	r.Use(logger.AccessLogMiddleware)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.Get("/healthz", s.health)
	r.Method(http.MethodPost, "/webhooks/payment", s.webhook)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)
	})

	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/me", s.me)

		r.Get("/addresses", s.listAddresses)
		r.Post("/addresses", s.createAddress)
		r.Delete("/addresses/{id}", s.deleteAddress)
		r.Post("/addresses/{id}/default", s.setDefaultAddress)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.getCart)
			r.Delete("/", s.clearCart)
			r.Post("/items", s.addCartItem)
			r.Patch("/items/{productId}", s.updateCartItem)
			r.Delete("/items/{productId}", s.removeCartItem)
			r.Post("/sync", s.syncCart)
		})

		r.Post("/checkout", s.initiateCheckout)

		r.Get("/orders", s.listMyOrders)
		r.Get("/orders/{id}", s.getOrder)
		r.Post("/orders/{id}/cancel", s.cancelOrder)

		r.Get("/loyalty", s.loyaltySummary)
		r.Post("/loyalty", s.redeemPoints)
		r.Get("/loyalty/transactions", s.loyaltyHistory)
		r.Post("/loyalty/redeem", s.redeemPoints)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Get("/orders", s.listAllOrders)
		r.Patch("/orders/{id}/status", s.updateOrderStatus)
	})

	return r
}
