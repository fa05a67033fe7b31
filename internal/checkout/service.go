package checkout

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"storefront-be/internal/address"
	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/logger"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Initiate(ctx context.Context, req Request) (*Response, error)
}

type AddressLookup interface {
	GetOwned(ctx context.Context, userID uint, addressID uuid.UUID) (*address.Address, error)
}

type ProductResolver interface {
	Resolve(ctx context.Context, ids []int64) (map[int64]*product.Product, error)
}

type CartReader interface {
	GetCart(ctx context.Context, userID uint) (*cart.Cart, error)
}

type service struct {
	addresses AddressLookup
	products  ProductResolver
	carts     CartReader
	gateway   payment.Gateway
	pricing   Pricing
	currency  string
}

func NewService(
	addresses AddressLookup,
	products ProductResolver,
	carts CartReader,
	gateway payment.Gateway,
	pricing Pricing,
	currency string,
) Service {
	return &service{
		addresses: addresses,
		products:  products,
		carts:     carts,
		gateway:   gateway,
		pricing:   pricing,
		currency:  strings.ToLower(currency),
	}
}

// Initiate prices the caller's items and opens a hosted payment session.
// Nothing is persisted; the order is created when the processor reports
// settlement.
func (s *service) Initiate(ctx context.Context, req Request) (*Response, error) {
	identity, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Initiate"),
		zap.Uint("user_id", identity.UserID),
		zap.String("address_id", req.ShippingAddressID.String()),
	)

	lines := req.Items
	if len(lines) == 0 {
		c, err := s.carts.GetCart(ctx, identity.UserID)
		if err != nil {
			log.Error("failed to load cart", zap.Error(err))
			return nil, err
		}
		for _, it := range c.Items {
			lines = append(lines, LineRequest{ProductID: it.ProductID, Quantity: it.Quantity})
		}
	}
	if len(lines) == 0 {
		log.Info("checkout rejected: empty cart")
		return nil, ErrEmptyCart
	}

	if _, err := s.addresses.GetOwned(ctx, identity.UserID, req.ShippingAddressID); err != nil {
		return nil, err
	}

	lines, err := collapse(lines)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	products, err := s.products.Resolve(ctx, ids)
	if err != nil {
		log.Error("failed to resolve products", zap.Error(err))
		return nil, err
	}

	subtotal := decimal.Zero
	metaItems := make([]payment.MetadataItem, 0, len(lines))
	sessionLines := make([]payment.LineItem, 0, len(lines)+2)

	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok || !p.IsActive() {
			log.Info("checkout rejected: unknown product", zap.Int64("product_id", l.ProductID))
			return nil, ErrProductNotFound
		}
		if p.Inventory < l.Quantity {
			log.Info("checkout rejected: insufficient stock",
				zap.Int64("product_id", p.ID),
				zap.Int("requested", l.Quantity),
				zap.Int("inventory", p.Inventory),
			)
			return nil, ErrInsufficientStock
		}

		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		metaItems = append(metaItems, payment.MetadataItem{
			ProductID: p.ID,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
		})
		sessionLines = append(sessionLines, payment.LineItem{
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  int64(l.Quantity),
		})
	}

	totals := s.pricing.Calculate(subtotal)
	if totals.Shipping.IsPositive() {
		sessionLines = append(sessionLines, payment.LineItem{Name: "Shipping", UnitPrice: totals.Shipping, Quantity: 1})
	}
	if totals.Tax.IsPositive() {
		sessionLines = append(sessionLines, payment.LineItem{Name: "Tax", UnitPrice: totals.Tax, Quantity: 1})
	}

	metadata, err := payment.EncodeMetadata(payment.Metadata{
		UserID:    identity.UserID,
		AddressID: req.ShippingAddressID,
		Items:     metaItems,
		Subtotal:  totals.Subtotal,
		Shipping:  totals.Shipping,
		Tax:       totals.Tax,
		Total:     totals.Total,
		Currency:  s.currency,
	})
	if err != nil {
		if errors.Is(err, payment.ErrMetadataTooLarge) {
			return nil, ErrTooManyItems
		}
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		ClientReference: strconv.FormatUint(uint64(identity.UserID), 10),
		CustomerEmail:   identity.Email,
		Currency:        s.currency,
		Lines:           sessionLines,
		Metadata:        metadata,
	})
	if err != nil {
		log.Error("payment session creation failed", zap.Error(err))
		return nil, ErrPaymentUnavailable
	}

	log.Info("checkout session initiated",
		zap.String("session_id", session.ID),
		zap.String("total", totals.Total.StringFixed(2)),
		zap.Int("line_count", len(lines)),
	)

	return &Response{SessionID: session.ID, RedirectURL: session.RedirectURL}, nil
}

// collapse merges repeated products and rejects non-positive quantities.
func collapse(lines []LineRequest) ([]LineRequest, error) {
	index := make(map[int64]int, len(lines))
	out := make([]LineRequest, 0, len(lines))

	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}

	return out, nil
}
