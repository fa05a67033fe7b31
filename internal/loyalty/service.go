package loyalty

import (
	"context"
	"strings"

	"storefront-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service interface {
	GetAccount(ctx context.Context, userID uint) (*Summary, error)
	AwardPoints(ctx context.Context, userID uint, subtotal decimal.Decimal, orderID int64) (*AwardResult, error)
	RedeemPoints(ctx context.Context, userID uint, points int64, description string) (*Redemption, error)
	History(ctx context.Context, userID uint, limit, page int32) ([]*Transaction, error)
}

// Summary is an account with its tier progress and cash value.
type Summary struct {
	Account       *Account
	Progress      Progress
	CurrencyValue decimal.Decimal
}

type Redemption struct {
	PointsRedeemed int64
	CurrencyValue  decimal.Decimal
	Balance        int64
}

type service struct {
	repo      Repository
	converter Converter
}

func NewService(repo Repository, converter Converter) Service {
	return &service{repo: repo, converter: converter}
}

func (s *service) GetAccount(ctx context.Context, userID uint) (*Summary, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	acc, err := s.repo.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Account:       acc,
		Progress:      NextTier(acc.TotalEarned),
		CurrencyValue: s.converter.PointsToCurrency(acc.Points),
	}, nil
}

// AwardPoints credits a settled purchase. Callers log and absorb errors.
func (s *service) AwardPoints(ctx context.Context, userID uint, subtotal decimal.Decimal, orderID int64) (*AwardResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AwardPoints"),
		zap.Uint("user_id", userID),
		zap.Int64("order_id", orderID),
	)

	if !subtotal.Floor().IsPositive() {
		log.Debug("nothing to award", zap.String("subtotal", subtotal.String()))
		return &AwardResult{}, nil
	}

	res, err := s.repo.Award(ctx, userID, subtotal, orderID)
	if err != nil {
		return nil, err
	}
	if res.AlreadyAwarded {
		return res, nil
	}

	log.Info("loyalty points awarded",
		zap.Int64("points", res.Points),
		zap.String("tier", string(res.Account.Tier)),
		zap.Bool("upgraded", res.Upgraded),
	)
	return res, nil
}

func (s *service) RedeemPoints(ctx context.Context, userID uint, points int64, description string) (*Redemption, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if points <= 0 {
		return nil, ErrInvalidPoints
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = "Points redeemed"
	}

	res, err := s.repo.Redeem(ctx, userID, points, description)
	if err != nil {
		logger.FromCtx(ctx).Info("redemption rejected",
			zap.Uint("user_id", userID),
			zap.Int64("points", points),
			zap.Error(err),
		)
		return nil, err
	}

	return &Redemption{
		PointsRedeemed: res.PointsRedeemed,
		CurrencyValue:  s.converter.PointsToCurrency(res.PointsRedeemed),
		Balance:        res.Account.Points,
	}, nil
}

func (s *service) History(ctx context.Context, userID uint, limit, page int32) ([]*Transaction, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return s.repo.ListTransactions(ctx, userID, limit, (page-1)*limit)
}
