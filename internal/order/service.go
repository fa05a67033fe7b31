package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	orderNumberAttempts = 3
)

type Service interface {
	// CreateFromSettlement is idempotent on the payment session id; created
	// is false when the order already existed.
	CreateFromSettlement(ctx context.Context, s Settlement) (o *Order, created bool, err error)

	Get(ctx context.Context, orderID int64) (*Order, error)
	ListMine(ctx context.Context, page, limit int32) ([]*Order, error)
	ListAll(ctx context.Context, filter ListFilter) (*ListResult, error)

	Cancel(ctx context.Context, userID uint, orderID int64) (*Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status Status) (*Order, error)
}

type ProductResolver interface {
	Resolve(ctx context.Context, ids []int64) (map[int64]*product.Product, error)
}

// Notifier queues customer emails. Errors are logged by the caller and
// never fail the operation that triggered them.
type Notifier interface {
	OrderCancelled(ctx context.Context, o *Order) error
	OrderStatusChanged(ctx context.Context, o *Order, previous Status) error
}

type service struct {
	repo     Repository
	products ProductResolver
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, products ProductResolver, notifier Notifier) Service {
	return &service{
		repo:     repo,
		products: products,
		notifier: notifier,
		now:      time.Now,
	}
}

func clampPage(page, limit int32) (int32, int32) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func placeholderName(productID int64) string {
	return fmt.Sprintf("Product #%d", productID)
}

func (s *service) CreateFromSettlement(ctx context.Context, st Settlement) (*Order, bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateFromSettlement"),
		zap.String("session_id", st.SessionID),
		zap.Uint("user_id", st.UserID),
	)

	existing, err := s.repo.GetBySessionID(ctx, st.SessionID)
	if err != nil {
		log.Error("failed to look up order by session", zap.Error(err))
		return nil, false, err
	}
	if existing != nil {
		log.Info("order already exists for session", zap.Int64("order_id", existing.ID))
		return existing, false, nil
	}

	if len(st.Items) == 0 {
		return nil, false, ErrEmptySettlement
	}

	ids := make([]int64, 0, len(st.Items))
	for _, it := range st.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.Resolve(ctx, ids)
	if err != nil {
		log.Error("failed to resolve product names", zap.Error(err))
		return nil, false, err
	}

	o := &Order{
		OrderNumber:       newOrderNumber(s.now()),
		UserID:            st.UserID,
		Status:            StatusPending,
		Subtotal:          st.Subtotal,
		Shipping:          st.Shipping,
		Tax:               st.Tax,
		Total:             st.Subtotal.Add(st.Shipping).Add(st.Tax),
		Currency:          st.Currency,
		ShippingAddressID: st.AddressID,
		PaymentSessionID:  st.SessionID,
		Items:             make([]OrderItem, 0, len(st.Items)),
	}

	for _, it := range st.Items {
		name := placeholderName(it.ProductID)
		if p, ok := products[it.ProductID]; ok {
			name = p.Name
		}
		o.Items = append(o.Items, OrderItem{
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	oversold, err := s.repo.CreateTx(ctx, o)
	for attempt := 1; errors.Is(err, ErrOrderNumberTaken) && attempt < orderNumberAttempts; attempt++ {
		o.OrderNumber = newOrderNumber(s.now())
		oversold, err = s.repo.CreateTx(ctx, o)
	}
	if errors.Is(err, ErrDuplicateSession) {
		existing, lookupErr := s.repo.GetBySessionID(ctx, st.SessionID)
		if lookupErr != nil || existing == nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, false, err
	}

	for _, id := range oversold {
		log.Warn("inventory oversold", zap.Int64("order_id", o.ID), zap.Int64("product_id", id))
	}

	log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.Total.StringFixed(2)),
	)

	return o, true, nil
}

// Get returns the order to its owner or an admin.
func (s *service) Get(ctx context.Context, orderID int64) (*Order, error) {
	identity, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.UserID != identity.UserID && !identity.IsAdmin() {
		logger.FromCtx(ctx).Warn("order access denied",
			zap.Int64("order_id", orderID),
			zap.Uint("user_id", identity.UserID),
		)
		return nil, ErrOrderNotFound
	}

	return o, nil
}

func (s *service) ListMine(ctx context.Context, page, limit int32) ([]*Order, error) {
	userID, ok := auth.UserIDFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	page, limit = clampPage(page, limit)
	return s.repo.ListByUser(ctx, userID, page, limit)
}

func (s *service) ListAll(ctx context.Context, f ListFilter) (*ListResult, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit)

	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return nil, ErrInvalidDateRange
	}

	orders, total, err := s.repo.ListAll(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: orders, TotalCount: total}, nil
}

func (s *service) Cancel(ctx context.Context, userID uint, orderID int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Cancel"),
		zap.Int64("order_id", orderID),
		zap.Uint("user_id", userID),
	)

	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	if _, err := s.repo.CancelTx(ctx, orderID, userID); err != nil {
		log.Info("cancel rejected", zap.Error(err))
		return nil, err
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.OrderCancelled(ctx, o); err != nil {
		log.Error("failed to queue cancellation email", zap.Error(err))
	}

	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID int64, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.Int64("order_id", orderID),
		zap.String("status", string(status)),
	)

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	previous := current.Status

	if !CanTransition(previous, status) {
		log.Info("transition rejected", zap.String("from", string(previous)))
		return nil, ErrInvalidTransition
	}

	if status == StatusCancelled {
		_, err = s.repo.CancelTx(ctx, orderID, 0)
		if errors.Is(err, ErrOrderNotCancellable) {
			err = ErrInvalidTransition
		}
	} else {
		err = s.repo.UpdateStatus(ctx, orderID, previous, status)
	}
	if err != nil {
		log.Error("status update failed", zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if status == StatusCancelled {
		err = s.notifier.OrderCancelled(ctx, updated)
	} else {
		err = s.notifier.OrderStatusChanged(ctx, updated, previous)
	}
	if err != nil {
		log.Error("failed to queue status email", zap.Error(err))
	}

	log.Info("order status updated", zap.String("from", string(previous)))
	return updated, nil
}
