package loyalty

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	// GetOrCreateAccount creates a BRONZE account with zero points on first
	// access.
	GetOrCreateAccount(ctx context.Context, userID uint) (*Account, error)

	Award(ctx context.Context, userID uint, subtotal decimal.Decimal, orderID int64) (*AwardResult, error)
	Redeem(ctx context.Context, userID uint, points int64, description string) (*RedeemResult, error)

	ListTransactions(ctx context.Context, userID uint, limit, offset int32) ([]*Transaction, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const ensureAccountQuery = `
	INSERT INTO loyalty_accounts (user_id, points, total_earned, tier)
	VALUES ($1, 0, 0, 'BRONZE')
	ON CONFLICT (user_id) DO NOTHING
`

const accountColumns = `user_id, points, total_earned, total_redeemed, tier, created_at, updated_at`

func scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	if err := row.Scan(&a.UserID, &a.Points, &a.TotalEarned, &a.TotalRedeemed, &a.Tier, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) GetOrCreateAccount(ctx context.Context, userID uint) (*Account, error) {
	return getOrCreate(ctx, r.db, userID, false)
}

func getOrCreate(ctx context.Context, q queryer, userID uint, forUpdate bool) (*Account, error) {
	if _, err := q.ExecContext(ctx, ensureAccountQuery, userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM loyalty_accounts WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return scanAccount(q.QueryRowContext(ctx, query, userID))
}

func (r *repository) Award(
	ctx context.Context,
	userID uint,
	subtotal decimal.Decimal,
	orderID int64,
) (*AwardResult, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Loyalty"),
		zap.String("method", "Award"),
		zap.Uint("user_id", userID),
		zap.Int64("order_id", orderID),
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

	acc, err := getOrCreate(ctx, tx, userID, true)
	if err != nil {
		log.Error("failed to lock account", zap.Error(err))
		return nil, err
	}

	// The account lock serializes awards for this user, so the check
	// below cannot race another credit of the same order.
	var awarded bool
	if err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM loyalty_transactions
			WHERE order_id = $1 AND type = 'EARNED'
		)
	`, orderID).Scan(&awarded); err != nil {
		log.Error("failed to check existing award", zap.Error(err))
		return nil, err
	}
	if awarded {
		log.Info("order already credited")
		return &AwardResult{Account: acc, AlreadyAwarded: true}, nil
	}

	points := PointsForPurchase(subtotal, acc.Tier)
	if points <= 0 {
		return &AwardResult{Account: acc}, nil
	}

	previous := acc.Tier
	totalEarned := acc.TotalEarned + points
	tier := maxTier(previous, CalculateTier(totalEarned))

	err = tx.QueryRowContext(ctx, `
		UPDATE loyalty_accounts
		SET points = points + $1,
		    total_earned = $2,
		    tier = $3,
		    updated_at = now()
		WHERE user_id = $4
		RETURNING points, total_earned, tier, updated_at
	`, points, totalEarned, tier, userID).Scan(&acc.Points, &acc.TotalEarned, &acc.Tier, &acc.UpdatedAt)
	if err != nil {
		log.Error("failed to credit points", zap.Error(err))
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO loyalty_transactions (user_id, type, points, order_id, description)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, TypeEarned, points, orderID, "Points earned on order"); err != nil {
		log.Error("failed to append ledger row", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit award", zap.Error(err))
		return nil, err
	}
	committed = true

	return &AwardResult{
		Points:   points,
		Account:  acc,
		Upgraded: acc.Tier != previous,
	}, nil
}

func (r *repository) Redeem(
	ctx context.Context,
	userID uint,
	points int64,
	description string,
) (*RedeemResult, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Loyalty"),
		zap.String("method", "Redeem"),
		zap.Uint("user_id", userID),
		zap.Int64("points", points),
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

	if _, err = tx.ExecContext(ctx, ensureAccountQuery, userID); err != nil {
		return nil, err
	}

	acc := &Account{UserID: userID}
	err = tx.QueryRowContext(ctx, `
		UPDATE loyalty_accounts
		SET points = points - $1,
		    total_redeemed = total_redeemed + $1,
		    updated_at = now()
		WHERE user_id = $2 AND points >= $1
		RETURNING points, total_earned, total_redeemed, tier, created_at, updated_at
	`, points, userID).Scan(&acc.Points, &acc.TotalEarned, &acc.TotalRedeemed, &acc.Tier, &acc.CreatedAt, &acc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInsufficientPoints
	}
	if err != nil {
		log.Error("failed to debit points", zap.Error(err))
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO loyalty_transactions (user_id, type, points, order_id, description)
		VALUES ($1, $2, $3, NULL, $4)
	`, userID, TypeRedeemed, -points, description); err != nil {
		log.Error("failed to append ledger row", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit redemption", zap.Error(err))
		return nil, err
	}
	committed = true

	return &RedeemResult{PointsRedeemed: points, Account: acc}, nil
}

func (r *repository) ListTransactions(ctx context.Context, userID uint, limit, offset int32) ([]*Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, points, order_id, description, created_at
		FROM loyalty_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list loyalty transactions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	res := []*Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Points, &t.OrderID, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}
