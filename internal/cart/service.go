package cart

import (
	"context"
	"errors"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

// ProductLookup is the slice of the catalog the cart needs.
type ProductLookup interface {
	GetByID(ctx context.Context, id int64, onlyActive bool) (*product.Product, error)
}

type Service interface {
	GetCart(ctx context.Context, userID uint) (*Cart, error)
	AddToCart(ctx context.Context, params AddToCartParams) (*Cart, error)
	UpdateQuantity(ctx context.Context, params UpdateQuantityParams) (*Cart, error)
	RemoveFromCart(ctx context.Context, userID uint, productID int64) (*Cart, error)
	ClearCart(ctx context.Context, userID uint) error
	Sync(ctx context.Context, userID uint, items []SyncItem) (*Cart, error)
}

type service struct {
	repo     Repository
	products ProductLookup
}

func NewService(repo Repository, products ProductLookup) Service {
	return &service{repo: repo, products: products}
}

func (s *service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	if userID == 0 {
		return nil, ErrUserNotAuthenticated
	}

	items, err := s.repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newCart(userID, items), nil
}

// AddToCart increases the quantity of a product in the cart. The resulting
// quantity may not exceed the product's inventory.
func (s *service) AddToCart(ctx context.Context, params AddToCartParams) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.Int64("product_id", params.ProductID),
	)

	if params.UserID == 0 {
		return nil, ErrUserNotAuthenticated
	}
	if params.ProductID <= 0 {
		return nil, ErrInvalidProduct
	}
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, params.ProductID, true)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetCartItem(ctx, params.UserID, params.ProductID)
	if err != nil {
		return nil, err
	}

	finalQty := params.Quantity
	if existing != nil {
		finalQty += existing.Quantity
	}

	if finalQty > p.Inventory {
		log.Debug("add to cart rejected",
			zap.Int("requested", finalQty),
			zap.Int("inventory", p.Inventory),
		)
		return nil, ErrInsufficientStock
	}

	if err := s.repo.UpsertCartItem(ctx, params.UserID, p.ID, finalQty, p.Price); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, params.UserID)
}

// UpdateQuantity sets an absolute quantity; zero or less removes the item.
func (s *service) UpdateQuantity(ctx context.Context, params UpdateQuantityParams) (*Cart, error) {
	if params.UserID == 0 {
		return nil, ErrUserNotAuthenticated
	}
	if params.ProductID <= 0 {
		return nil, ErrInvalidProduct
	}

	if params.Quantity <= 0 {
		return s.RemoveFromCart(ctx, params.UserID, params.ProductID)
	}

	p, err := s.products.GetByID(ctx, params.ProductID, true)
	if err != nil {
		return nil, err
	}
	if params.Quantity > p.Inventory {
		return nil, ErrInsufficientStock
	}

	if err := s.repo.UpdateCartQuantity(ctx, params); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, params.UserID)
}

func (s *service) RemoveFromCart(ctx context.Context, userID uint, productID int64) (*Cart, error) {
	if userID == 0 {
		return nil, ErrUserNotAuthenticated
	}
	if productID <= 0 {
		return nil, ErrInvalidProduct
	}

	if err := s.repo.RemoveFromCart(ctx, userID, productID); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

func (s *service) ClearCart(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrUserNotAuthenticated
	}
	return s.repo.ClearCart(ctx, userID)
}

// Sync merges a client-local cart into the server cart. Incoming quantities
// are added to existing ones and capped at current inventory; a sync never
// lowers a quantity already in the cart. Entries with
// non-positive quantities or products that are unknown, disabled or out of
// stock are skipped.
func (s *service) Sync(ctx context.Context, userID uint, items []SyncItem) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Sync"),
		zap.Uint("user_id", userID),
	)

	if userID == 0 {
		return nil, ErrUserNotAuthenticated
	}

	// Collapse duplicate product ids while keeping first-seen order.
	incoming := make(map[int64]int, len(items))
	order := make([]int64, 0, len(items))
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			continue
		}
		if _, ok := incoming[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		incoming[it.ProductID] += it.Quantity
	}

	merged, skipped := 0, 0
	for _, productID := range order {
		p, err := s.products.GetByID(ctx, productID, true)
		if errors.Is(err, product.ErrProductNotFound) {
			skipped++
			continue
		}
		if err != nil {
			return nil, err
		}

		existing, err := s.repo.GetCartItem(ctx, userID, productID)
		if err != nil {
			return nil, err
		}

		// Sync only adds. A row already at or above stock is left as is.
		if existing != nil && existing.Quantity >= p.Inventory {
			skipped++
			continue
		}

		qty := incoming[productID]
		if existing != nil {
			qty += existing.Quantity
		}
		if qty > p.Inventory {
			qty = p.Inventory
		}
		if qty <= 0 {
			skipped++
			continue
		}

		if err := s.repo.UpsertCartItem(ctx, userID, productID, qty, p.Price); err != nil {
			return nil, err
		}
		merged++
	}

	log.Info("cart synced",
		zap.Int("received", len(items)),
		zap.Int("merged", merged),
		zap.Int("skipped", skipped),
	)

	return s.GetCart(ctx, userID)
}
