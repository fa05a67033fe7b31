package api

import (
	"context"
	"net/http"

	"storefront-be/internal/address"
	"storefront-be/internal/cart"
	"storefront-be/internal/checkout"
	"storefront-be/internal/loyalty"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/user"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps lists everything the HTTP surface talks to. Limiter may be nil.
type Deps struct {
	DB            Pinger
	Tokens        middleware.TokenParser
	Limiter       *middleware.RateLimiter
	AllowedOrigin string
	SecureCookies bool

	Products  product.Service
	Users     user.Service
	Addresses address.Service
	Carts     cart.Service
	Checkout  checkout.Service
	Orders    order.Service
	Loyalty   loyalty.Service

	Webhook http.Handler
}

type Server struct {
	db            Pinger
	tokens        middleware.TokenParser
	limiter       *middleware.RateLimiter
	allowedOrigin string
	secureCookies bool

	products  product.Service
	users     user.Service
	addresses address.Service
	carts     cart.Service
	checkout  checkout.Service
	orders    order.Service
	loyalty   loyalty.Service
	webhook   http.Handler
}

func NewServer(d Deps) *Server {
	return &Server{
		db:            d.DB,
		tokens:        d.Tokens,
		limiter:       d.Limiter,
		allowedOrigin: d.AllowedOrigin,
		secureCookies: d.SecureCookies,
		products:      d.Products,
		users:         d.Users,
		addresses:     d.Addresses,
		carts:         d.Carts,
		checkout:      d.Checkout,
		orders:        d.Orders,
		loyalty:       d.Loyalty,
		webhook:       d.Webhook,
	}
}
