package product

import (
	"context"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service interface {
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	Resolve(ctx context.Context, ids []int64) (map[int64]*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func isAdmin(ctx context.Context) bool {
	id, ok := auth.IdentityFrom(ctx)
	return ok && id.IsAdmin()
}

// Get hides disabled products from everyone except admins.
func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	if id <= 0 {
		return nil, ErrInvalidProduct
	}
	return s.repo.GetByID(ctx, id, !isAdmin(ctx))
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	start := time.Now()

	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultPageSize
	} else if opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}
	opts.OnlyActive = !isAdmin(ctx)

	products, total, err := s.repo.List(ctx, opts)
	if err != nil {
		log.Error("failed to fetch product list",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	log.Debug("product list fetched",
		zap.Int("count", len(products)),
		zap.Int32("page", opts.Page),
		zap.Int32("limit", opts.Limit),
		zap.Duration("duration", time.Since(start)),
	)

	return &ListResult{Items: products, TotalCount: total}, nil
}

// Resolve performs a fresh lookup of the given ids, deduplicated.
func (s *service) Resolve(ctx context.Context, ids []int64) (map[int64]*Product, error) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return s.repo.GetByIDs(ctx, unique)
}
