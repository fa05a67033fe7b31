package cart

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	GetCartItems(ctx context.Context, userID uint) ([]*CartItem, error)
	GetCartItem(ctx context.Context, userID uint, productID int64) (*CartItem, error)
	UpsertCartItem(ctx context.Context, userID uint, productID int64, quantity int, unitPrice decimal.Decimal) error
	UpdateCartQuantity(ctx context.Context, params UpdateQuantityParams) error
	RemoveFromCart(ctx context.Context, userID uint, productID int64) error
	ClearCart(ctx context.Context, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const cartItemSelect = `
	SELECT
		c.id,
		c.user_id,
		c.product_id,
		p.name,
		c.quantity,
		c.unit_price,
		p.inventory,
		p.status = 'active',
		c.created_at,
		c.updated_at
	FROM cart_items c
	JOIN products p ON p.id = c.product_id
`

func scanCartItem(row interface{ Scan(...any) error }) (*CartItem, error) {
	var it CartItem
	if err := row.Scan(
		&it.ID,
		&it.UserID,
		&it.ProductID,
		&it.ProductName,
		&it.Quantity,
		&it.UnitPrice,
		&it.Inventory,
		&it.Active,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repository) GetCartItems(ctx context.Context, userID uint) ([]*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetCartItems"),
		zap.Uint("user_id", userID),
	)

	rows, err := r.db.QueryContext(ctx, cartItemSelect+`
	WHERE c.user_id = $1
	ORDER BY c.created_at ASC, c.id ASC`, userID)
	if err != nil {
		log.Error("failed to query cart", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := []*CartItem{}
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			log.Error("failed to scan cart row", zap.Error(err))
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// GetCartItem returns nil without error when the product is not in the cart.
func (r *repository) GetCartItem(ctx context.Context, userID uint, productID int64) (*CartItem, error) {
	it, err := scanCartItem(r.db.QueryRowContext(ctx, cartItemSelect+`
	WHERE c.user_id = $1 AND c.product_id = $2`, userID, productID))

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get cart item",
			zap.Uint("user_id", userID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}

	return it, nil
}

// UpsertCartItem writes the absolute quantity and refreshes the price
// snapshot.
func (r *repository) UpsertCartItem(
	ctx context.Context,
	userID uint,
	productID int64,
	quantity int,
	unitPrice decimal.Decimal,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpsertCartItem"),
		zap.Uint("user_id", userID),
		zap.Int64("product_id", productID),
	)

	const q = `
	INSERT INTO cart_items (user_id, product_id, quantity, unit_price)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, product_id)
	DO UPDATE SET
		quantity = EXCLUDED.quantity,
		unit_price = EXCLUDED.unit_price,
		updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, q, userID, productID, quantity, unitPrice); err != nil {
		log.Error("failed to upsert cart item", zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) UpdateCartQuantity(ctx context.Context, params UpdateQuantityParams) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE user_id = $2 AND product_id = $3
	`, params.Quantity, params.UserID, params.ProductID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

func (r *repository) RemoveFromCart(ctx context.Context, userID uint, productID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// ClearCart is a no-op on an empty cart.
func (r *repository) ClearCart(ctx context.Context, userID uint) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		logger.FromCtx(ctx).Error("failed to clear cart", zap.Uint("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}
