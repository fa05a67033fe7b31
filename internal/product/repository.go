package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id int64, onlyActive bool) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*Product, error)
	List(ctx context.Context, opts ListOptions) ([]*Product, *int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `
	p.id, p.name, p.slug, p.description, p.price, p.inventory,
	p.image_url, p.status, p.created_at, p.updated_at
`

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*Product, error) {
	var p Product
	if err := s.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Inventory,
		&p.ImageURL, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int64, onlyActive bool) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByID"),
		zap.Int64("product_id", id),
	)

	q := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	if onlyActive {
		q += ` AND p.status = 'active'`
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		log.Error("failed to get product", zap.Error(err))
		return nil, err
	}

	return p, nil
}

// GetByIDs returns the products that exist, keyed by id. Missing ids are
// absent from the map; disabled products are included.
func (r *repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByIDs"),
		zap.Int("count", len(ids)),
	)

	res := make(map[int64]*Product, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	q := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, err
		}
		res[p.ID] = p
	}

	return res, rows.Err()
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]*Product, *int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	var (
		conds []string
		args  []any
	)
	if opts.OnlyActive {
		conds = append(conds, "p.status = 'active'")
	}
	if opts.Search != nil && strings.TrimSpace(*opts.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*opts.Search)+"%")
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.slug ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total *int
	if opts.IncludeCount {
		var count int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&count); err != nil {
			log.Error("failed to count products", zap.Error(err))
			return nil, nil, err
		}
		total = &count
	}

	sortField := opts.SortField
	if sortField == "" {
		sortField = SortFieldCreatedAt
	}
	sortDir := opts.SortDir
	if sortDir != SortDirectionAsc {
		sortDir = SortDirectionDesc
	}

	offset := (opts.Page - 1) * opts.Limit
	args = append(args, opts.Limit, offset)

	q := fmt.Sprintf(
		`SELECT %s FROM products p%s ORDER BY p.%s %s, p.id ASC LIMIT $%d OFFSET $%d`,
		productColumns, where, sortField, sortDir, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, nil, err
	}
	defer rows.Close()

	items := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return items, total, nil
}
