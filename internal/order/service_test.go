package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetBySessionID(ctx context.Context, sessionID string) (*Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uint, page, limit int32) ([]*Order, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context, f ListFilter) ([]*Order, int, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Order), args.Int(1), args.Error(2)
}

func (m *MockRepository) CreateTx(ctx context.Context, o *Order) ([]int64, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRepository) CancelTx(ctx context.Context, orderID int64, ownerID uint) (Status, error) {
	args := m.Called(ctx, orderID, ownerID)
	return args.Get(0).(Status), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, orderID int64, from, to Status) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

type MockProductResolver struct {
	mock.Mock
}

func (m *MockProductResolver) Resolve(ctx context.Context, ids []int64) (map[int64]*product.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*product.Product), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderCancelled(ctx context.Context, o *Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockNotifier) OrderStatusChanged(ctx context.Context, o *Order, previous Status) error {
	return m.Called(ctx, o, previous).Error(0)
}

func newTestService() (*service, *MockRepository, *MockProductResolver, *MockNotifier) {
	repo := new(MockRepository)
	products := new(MockProductResolver)
	notifier := new(MockNotifier)
	svc := NewService(repo, products, notifier).(*service)
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return svc, repo, products, notifier
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testSettlement() Settlement {
	return Settlement{
		SessionID: "cs_1",
		UserID:    42,
		AddressID: testAddr,
		Items: []SettlementItem{
			{ProductID: 10, Quantity: 2, UnitPrice: d("20")},
			{ProductID: 11, Quantity: 1, UnitPrice: d("0")},
		},
		Subtotal: d("40"),
		Shipping: d("5.99"),
		Tax:      d("4"),
		Total:    d("49.99"),
		Currency: "usd",
	}
}

func TestService_CreateFromSettlement(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo, products, _ := newTestService()

		repo.On("GetBySessionID", ctx, "cs_1").Return(nil, nil).Once()
		products.On("Resolve", ctx, []int64{10, 11}).
			Return(map[int64]*product.Product{10: {ID: 10, Name: "Mug"}}, nil)
		repo.On("CreateTx", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.Status == StatusPending &&
				o.PaymentSessionID == "cs_1" &&
				o.Total.Equal(d("49.99")) &&
				o.Items[0].ProductName == "Mug" &&
				o.Items[1].ProductName == "Product #11" &&
				len(o.OrderNumber) == len("ORD-20240309-140507-000-0000")
		})).Return([]int64{10}, nil)

		o, created, err := svc.CreateFromSettlement(ctx, testSettlement())
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, uint(42), o.UserID)
		assert.Contains(t, o.OrderNumber, "ORD-20240309-140507-000-")
		repo.AssertExpectations(t)
	})

	t.Run("AlreadyExists_NoSideEffects", func(t *testing.T) {
		svc, repo, products, _ := newTestService()
		existing := &Order{ID: 7, PaymentSessionID: "cs_1"}

		repo.On("GetBySessionID", ctx, "cs_1").Return(existing, nil)

		o, created, err := svc.CreateFromSettlement(ctx, testSettlement())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Same(t, existing, o)
		repo.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
		products.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentDuplicate", func(t *testing.T) {
		svc, repo, products, _ := newTestService()
		existing := &Order{ID: 7, PaymentSessionID: "cs_1"}

		repo.On("GetBySessionID", ctx, "cs_1").Return(nil, nil).Once()
		products.On("Resolve", ctx, mock.Anything).Return(map[int64]*product.Product{}, nil)
		repo.On("CreateTx", ctx, mock.Anything).Return(nil, ErrDuplicateSession)
		repo.On("GetBySessionID", ctx, "cs_1").Return(existing, nil).Once()

		o, created, err := svc.CreateFromSettlement(ctx, testSettlement())
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(7), o.ID)
	})

	t.Run("OrderNumberCollision_Retried", func(t *testing.T) {
		svc, repo, products, _ := newTestService()
		var numbers []string

		repo.On("GetBySessionID", ctx, "cs_1").Return(nil, nil)
		products.On("Resolve", ctx, mock.Anything).Return(map[int64]*product.Product{}, nil)
		repo.On("CreateTx", ctx, mock.Anything).
			Run(func(args mock.Arguments) { numbers = append(numbers, args.Get(1).(*Order).OrderNumber) }).
			Return(nil, ErrOrderNumberTaken).Once()
		repo.On("CreateTx", ctx, mock.Anything).
			Run(func(args mock.Arguments) { numbers = append(numbers, args.Get(1).(*Order).OrderNumber) }).
			Return([]int64{}, nil).Once()

		o, created, err := svc.CreateFromSettlement(ctx, testSettlement())
		require.NoError(t, err)
		assert.True(t, created)
		require.Len(t, numbers, 2)
		assert.Equal(t, numbers[1], o.OrderNumber)
		repo.AssertNumberOfCalls(t, "CreateTx", 2)
	})

	t.Run("OrderNumberCollision_GivesUp", func(t *testing.T) {
		svc, repo, products, _ := newTestService()

		repo.On("GetBySessionID", ctx, "cs_1").Return(nil, nil)
		products.On("Resolve", ctx, mock.Anything).Return(map[int64]*product.Product{}, nil)
		repo.On("CreateTx", ctx, mock.Anything).Return(nil, ErrOrderNumberTaken)

		_, created, err := svc.CreateFromSettlement(ctx, testSettlement())
		assert.ErrorIs(t, err, ErrOrderNumberTaken)
		assert.False(t, created)
		repo.AssertNumberOfCalls(t, "CreateTx", 3)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		svc, repo, products, _ := newTestService()

		repo.On("GetBySessionID", ctx, "cs_1").Return(nil, nil)
		products.On("Resolve", ctx, mock.Anything).Return(map[int64]*product.Product{}, nil)
		repo.On("CreateTx", ctx, mock.Anything).Return(nil, errors.New("db down"))

		_, _, err := svc.CreateFromSettlement(ctx, testSettlement())
		assert.Error(t, err)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		st := testSettlement()
		st.Items = nil

		repo.On("GetBySessionID", ctx, "cs_1").Return(nil, nil)

		_, _, err := svc.CreateFromSettlement(ctx, st)
		assert.ErrorIs(t, err, ErrEmptySettlement)
	})
}

func userCtx(id uint, role auth.Role) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: id, Role: role})
}

func TestService_Get(t *testing.T) {
	t.Run("Owner", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		ctx := userCtx(42, auth.RoleUser)
		repo.On("GetByID", ctx, int64(7)).Return(&Order{ID: 7, UserID: 42}, nil)

		o, err := svc.Get(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), o.ID)
	})

	t.Run("Admin", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		ctx := userCtx(1, auth.RoleAdmin)
		repo.On("GetByID", ctx, int64(7)).Return(&Order{ID: 7, UserID: 42}, nil)

		_, err := svc.Get(ctx, 7)
		assert.NoError(t, err)
	})

	t.Run("OtherUser", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		ctx := userCtx(5, auth.RoleUser)
		repo.On("GetByID", ctx, int64(7)).Return(&Order{ID: 7, UserID: 42}, nil)

		_, err := svc.Get(ctx, 7)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Anonymous", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		_, err := svc.Get(context.Background(), 7)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestService_Lists(t *testing.T) {
	t.Run("ListMine_ClampsPaging", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		ctx := userCtx(42, auth.RoleUser)
		repo.On("ListByUser", ctx, uint(42), int32(1), int32(100)).Return([]*Order{}, nil)

		_, err := svc.ListMine(ctx, 0, 500)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("ListAll_Defaults", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		ctx := userCtx(1, auth.RoleAdmin)
		repo.On("ListAll", ctx, ListFilter{Page: 1, Limit: 20}).Return([]*Order{{ID: 1}}, 31, nil)

		res, err := svc.ListAll(ctx, ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, 31, res.TotalCount)
		assert.Len(t, res.Items, 1)
	})

	t.Run("ListAll_BadRange", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		from := time.Now()
		to := from.Add(-time.Hour)

		_, err := svc.ListAll(context.Background(), ListFilter{DateFrom: &from, DateTo: &to})
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_NotifiesBestEffort", func(t *testing.T) {
		svc, repo, _, notifier := newTestService()
		cancelled := &Order{ID: 7, UserID: 42, Status: StatusCancelled}

		repo.On("CancelTx", ctx, int64(7), uint(42)).Return(StatusPending, nil)
		repo.On("GetByID", ctx, int64(7)).Return(cancelled, nil)
		notifier.On("OrderCancelled", ctx, cancelled).Return(errors.New("outbox down"))

		o, err := svc.Cancel(ctx, 42, 7)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, o.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("Rejected", func(t *testing.T) {
		svc, repo, _, notifier := newTestService()

		repo.On("CancelTx", ctx, int64(7), uint(42)).Return(Status(""), ErrOrderNotCancellable)

		_, err := svc.Cancel(ctx, 42, 7)
		assert.ErrorIs(t, err, ErrOrderNotCancellable)
		notifier.AssertNotCalled(t, "OrderCancelled", mock.Anything, mock.Anything)
	})

	t.Run("Anonymous", func(t *testing.T) {
		svc, _, _, _ := newTestService()

		_, err := svc.Cancel(ctx, 0, 7)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Advance", func(t *testing.T) {
		svc, repo, _, notifier := newTestService()
		shipped := &Order{ID: 7, Status: StatusShipped}

		repo.On("GetByID", ctx, int64(7)).Return(&Order{ID: 7, Status: StatusProcessing}, nil).Once()
		repo.On("UpdateStatus", ctx, int64(7), StatusProcessing, StatusShipped).Return(nil)
		repo.On("GetByID", ctx, int64(7)).Return(shipped, nil).Once()
		notifier.On("OrderStatusChanged", ctx, shipped, StatusProcessing).Return(nil)

		o, err := svc.UpdateStatus(ctx, 7, StatusShipped)
		require.NoError(t, err)
		assert.Equal(t, StatusShipped, o.Status)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("AdminCancelRestoresInventory", func(t *testing.T) {
		svc, repo, _, notifier := newTestService()
		cancelled := &Order{ID: 7, Status: StatusCancelled}

		repo.On("GetByID", ctx, int64(7)).Return(&Order{ID: 7, Status: StatusPending}, nil).Once()
		repo.On("CancelTx", ctx, int64(7), uint(0)).Return(StatusPending, nil)
		repo.On("GetByID", ctx, int64(7)).Return(cancelled, nil).Once()
		notifier.On("OrderCancelled", ctx, cancelled).Return(nil)

		_, err := svc.UpdateStatus(ctx, 7, StatusCancelled)
		require.NoError(t, err)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		notifier.AssertExpectations(t)
	})

	t.Run("InvalidValue", func(t *testing.T) {
		svc, repo, _, _ := newTestService()

		_, err := svc.UpdateStatus(ctx, 7, Status("LOST"))
		assert.ErrorIs(t, err, ErrInvalidStatus)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("DisallowedTransition", func(t *testing.T) {
		svc, repo, _, _ := newTestService()

		repo.On("GetByID", ctx, int64(7)).Return(&Order{ID: 7, Status: StatusDelivered}, nil)

		_, err := svc.UpdateStatus(ctx, 7, StatusPending)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("ConcurrentChange", func(t *testing.T) {
		svc, repo, _, _ := newTestService()

		repo.On("GetByID", ctx, int64(7)).Return(&Order{ID: 7, Status: StatusProcessing}, nil)
		repo.On("CancelTx", ctx, int64(7), uint(0)).Return(Status(""), ErrOrderNotCancellable)

		_, err := svc.UpdateStatus(ctx, 7, StatusCancelled)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}
