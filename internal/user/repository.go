package user

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	var created User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, name, password, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, email, name, password, role, created_at`,
		u.Email, u.Name, u.Password, string(u.Role),
	).Scan(&created.ID, &created.Email, &created.Name, &created.Password, &created.Role, &created.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return nil, ErrEmailExists
	}
	if err != nil {
		log.Error("db: failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return nil, err
	}

	return &created, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "FindByEmail",
		`SELECT id, email, name, password, role, created_at FROM users WHERE email = $1`, email)
}

func (r *repository) GetByID(ctx context.Context, id uint) (*User, error) {
	return r.findOne(ctx, "GetByID",
		`SELECT id, email, name, password, role, created_at FROM users WHERE id = $1`, id)
}

func (r *repository) findOne(ctx context.Context, method, q string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to query user",
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, err
	}
	return &u, nil
}
