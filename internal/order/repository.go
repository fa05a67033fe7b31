package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// GetBySessionID returns nil, nil when no order exists for the session.
	GetBySessionID(ctx context.Context, sessionID string) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID uint, page, limit int32) ([]*Order, error)
	ListAll(ctx context.Context, filter ListFilter) ([]*Order, int, error)

	// CreateTx persists o with its items, decrements inventory and clears
	// the owner's cart in one transaction. It returns the ids of products
	// whose inventory went negative.
	CreateTx(ctx context.Context, o *Order) (oversold []int64, err error)

	// CancelTx locks the order, re-checks it, marks it cancelled and
	// restores inventory. ownerID 0 skips the ownership check.
	CancelTx(ctx context.Context, orderID int64, ownerID uint) (previous Status, err error)

	// UpdateStatus moves the order from -> to; a concurrent change makes
	// it fail with ErrInvalidTransition.
	UpdateStatus(ctx context.Context, orderID int64, from, to Status) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	o.id, o.order_number, o.user_id, o.status,
	o.subtotal, o.shipping, o.tax, o.total, o.currency,
	o.shipping_address_id, o.payment_session_id,
	o.created_at, o.updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status,
		&o.Subtotal, &o.Shipping, &o.Tax, &o.Total, &o.Currency,
		&o.ShippingAddressID, &o.PaymentSessionID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetBySessionID(ctx context.Context, sessionID string) (*Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.payment_session_id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, q, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint, page, limit int32) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "ListByUser"),
		zap.Uint("user_id", userID),
	)

	q := `SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, q, userID, limit, (page-1)*limit)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		log.Error("scan failed", zap.Error(err))
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func scanOrders(rows *sql.Rows) ([]*Order, error) {
	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) ListAll(ctx context.Context, f ListFilter) ([]*Order, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "ListAll"),
		zap.Int32("limit", f.Limit),
		zap.Int32("page", f.Page),
	)

	where := " WHERE 1=1"
	args := []any{}
	argIndex := 1

	if f.Status != nil {
		where += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, *f.Status)
		argIndex++
	}

	if f.Search != nil && *f.Search != "" {
		where += fmt.Sprintf(" AND (o.order_number ILIKE $%d OR o.id::text = $%d)", argIndex, argIndex+1)
		args = append(args, "%"+*f.Search+"%", *f.Search)
		argIndex += 2
	}

	if f.DateFrom != nil {
		where += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
		args = append(args, *f.DateFrom)
		argIndex++
	}

	if f.DateTo != nil {
		where += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
		args = append(args, *f.DateTo)
		argIndex++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		log.Error("count failed", zap.Error(err))
		return nil, 0, err
	}

	field := SortByCreatedAt
	if f.SortField == SortByTotal {
		field = SortByTotal
	}
	dir := SortDesc
	if f.SortDir == SortAsc {
		dir = SortAsc
	}

	q := `SELECT ` + orderColumns + ` FROM orders o` + where +
		fmt.Sprintf(" ORDER BY o.%s %s, o.id DESC LIMIT $%d OFFSET $%d", field, dir, argIndex, argIndex+1)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	log.Debug("executing list orders query", zap.String("query", q))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		log.Error("scan failed", zap.Error(err))
		return nil, 0, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Items = []OrderItem{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return err
		}
		if o, ok := byID[it.OrderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

const (
	uniqueViolation       = "23505"
	sessionConstraint     = "orders_payment_session_id_key"
	orderNumberConstraint = "orders_order_number_key"
)

func (r *repository) CreateTx(ctx context.Context, o *Order) ([]int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "CreateTx"),
		zap.String("session_id", o.PaymentSessionID),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_number, user_id, status,
			subtotal, shipping, tax, total, currency,
			shipping_address_id, payment_session_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at
	`,
		o.OrderNumber, o.UserID, o.Status,
		o.Subtotal, o.Shipping, o.Tax, o.Total, o.Currency,
		o.ShippingAddressID, o.PaymentSessionID,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			switch pqErr.Constraint {
			case sessionConstraint:
				log.Info("order for session already exists")
				return nil, ErrDuplicateSession
			case orderNumberConstraint:
				log.Warn("order number collision", zap.String("order_number", o.OrderNumber))
				return nil, ErrOrderNumberTaken
			}
		}
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	var oversold []int64
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID

		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id
		`, o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice).Scan(&it.ID)
		if err != nil {
			log.Error("failed to insert order item", zap.Int64("product_id", it.ProductID), zap.Error(err))
			return nil, err
		}

		var remaining int
		err = tx.QueryRowContext(ctx, `
			UPDATE products
			SET inventory = inventory - $1, updated_at = now()
			WHERE id = $2
			RETURNING inventory
		`, it.Quantity, it.ProductID).Scan(&remaining)
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("product missing during inventory decrement", zap.Int64("product_id", it.ProductID))
			continue
		}
		if err != nil {
			log.Error("failed to decrement inventory", zap.Int64("product_id", it.ProductID), zap.Error(err))
			return nil, err
		}
		if remaining < 0 {
			oversold = append(oversold, it.ProductID)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, o.UserID); err != nil {
		log.Error("failed to clear cart", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return nil, err
	}
	committed = true

	return oversold, nil
}

func (r *repository) CancelTx(ctx context.Context, orderID int64, ownerID uint) (Status, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "CancelTx"),
		zap.Int64("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return "", err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	var (
		userID uint
		status Status
	)
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, status FROM orders WHERE id = $1 FOR UPDATE`, orderID,
	).Scan(&userID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock order", zap.Error(err))
		return "", err
	}

	if ownerID != 0 && userID != ownerID {
		return "", ErrForbidden
	}
	if !status.Cancellable() {
		return "", ErrOrderNotCancellable
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		StatusCancelled, orderID,
	); err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return "", err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return "", err
	}

	type restock struct {
		productID int64
		quantity  int
	}
	var items []restock
	for rows.Next() {
		var it restock
		if err := rows.Scan(&it.productID, &it.quantity); err != nil {
			rows.Close()
			return "", err
		}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return "", err
	}

	for _, it := range items {
		if _, err = tx.ExecContext(ctx, `
			UPDATE products
			SET inventory = inventory + $1, updated_at = now()
			WHERE id = $2
		`, it.quantity, it.productID); err != nil {
			log.Error("failed to restore inventory", zap.Int64("product_id", it.productID), zap.Error(err))
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cancellation", zap.Error(err))
		return "", err
	}
	committed = true

	log.Info("order cancelled", zap.String("previous_status", string(status)), zap.Int("restocked_items", len(items)))
	return status, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID int64, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidTransition
	}
	return nil
}
