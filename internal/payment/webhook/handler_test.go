package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-be/internal/loyalty"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct{ mock.Mock }

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signatureHeader string) (*payment.Event, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) SavePaymentWebhook(ctx context.Context, provider, eventID, eventType, externalID string, payload json.RawMessage, signatureValid bool) (int64, bool, error) {
	args := m.Called(ctx, provider, eventID, eventType, externalID, payload, signatureValid)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockPaymentRepository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	return m.Called(ctx, webhookID).Error(0)
}

func (m *MockPaymentRepository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	return m.Called(ctx, webhookID, reason).Error(0)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) CreateFromSettlement(ctx context.Context, s order.Settlement) (*order.Order, bool, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*order.Order), args.Bool(1), args.Error(2)
}

type MockLoyalty struct{ mock.Mock }

func (m *MockLoyalty) AwardPoints(ctx context.Context, userID uint, subtotal decimal.Decimal, orderID int64) (*loyalty.AwardResult, error) {
	args := m.Called(ctx, userID, subtotal, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loyalty.AwardResult), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) OrderConfirmed(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

type fixture struct {
	gateway  *MockGateway
	events   *MockPaymentRepository
	orders   *MockOrderService
	loyalty  *MockLoyalty
	notifier *MockNotifier
	handler  *Handler
}

func newFixture() *fixture {
	f := &fixture{
		gateway:  new(MockGateway),
		events:   new(MockPaymentRepository),
		orders:   new(MockOrderService),
		loyalty:  new(MockLoyalty),
		notifier: new(MockNotifier),
	}
	f.handler = NewWebhookHandler(f.gateway, f.events, f.orders, f.loyalty, f.notifier)
	return f
}

func (f *fixture) assertAll(t *testing.T) {
	f.gateway.AssertExpectations(t)
	f.events.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.loyalty.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

var testAddress = uuid.MustParse("7f0c3a52-7d1e-4a8c-9a3e-2b6c1f0d9e11")

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func paidEvent(t *testing.T) *payment.Event {
	t.Helper()

	md, err := payment.EncodeMetadata(payment.Metadata{
		UserID:    42,
		AddressID: testAddress,
		Items: []payment.MetadataItem{
			{ProductID: 1, Quantity: 2, UnitPrice: d("20")},
		},
		Subtotal: d("40"),
		Shipping: d("5.99"),
		Tax:      d("4"),
		Total:    d("49.99"),
		Currency: "usd",
	})
	require.NoError(t, err)

	return &payment.Event{
		ID:            "evt_1",
		Type:          payment.EventCheckoutSessionCompleted,
		SessionID:     "cs_1",
		PaymentStatus: payment.PaymentStatusPaid,
		Currency:      "usd",
		AmountTotal:   4999,
		Metadata:      md,
	}
}

func post(body string) (*httptest.ResponseRecorder, *http.Request) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewBufferString(body))
	req.Header.Set(signatureHeader, "t=1,v1=abc")
	return httptest.NewRecorder(), req
}

func TestHandler_PaymentWebhookHandler(t *testing.T) {
	const body = `{"id":"evt_1"}`

	t.Run("Settlement_CreatesOrder", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		f.gateway.On("ParseWebhook", []byte(body), "t=1,v1=abc").Return(paidEvent(t), nil)
		f.events.On("SavePaymentWebhook", mock.Anything, payment.ProviderStripe, "evt_1", payment.EventCheckoutSessionCompleted, "cs_1", mock.Anything, true).
			Return(int64(7), false, nil)

		created := &order.Order{ID: 100, UserID: 42, Subtotal: d("40")}
		f.orders.On("CreateFromSettlement", mock.Anything, mock.MatchedBy(func(s order.Settlement) bool {
			return s.SessionID == "cs_1" &&
				s.UserID == 42 &&
				s.AddressID == testAddress &&
				len(s.Items) == 1 &&
				s.Items[0].ProductID == 1 &&
				s.Items[0].Quantity == 2 &&
				s.Total.Equal(d("49.99"))
		})).Return(created, true, nil)
		f.loyalty.On("AwardPoints", mock.Anything, uint(42), created.Subtotal, int64(100)).
			Return(&loyalty.AwardResult{Points: 40}, nil)
		f.notifier.On("OrderConfirmed", mock.Anything, created).Return(nil)
		f.events.On("MarkWebhookProcessed", mock.Anything, int64(7)).Return(nil)

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
		f.assertAll(t)
	})

	t.Run("Settlement_OrderAlreadyExists_ReplaysSideEffects", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		existing := &order.Order{ID: 100, UserID: 42, Subtotal: d("40")}
		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(paidEvent(t), nil)
		f.events.On("SavePaymentWebhook", mock.Anything, payment.ProviderStripe, "evt_1", mock.Anything, "cs_1", mock.Anything, true).
			Return(int64(8), false, nil)
		f.orders.On("CreateFromSettlement", mock.Anything, mock.Anything).
			Return(existing, false, nil)
		f.loyalty.On("AwardPoints", mock.Anything, uint(42), existing.Subtotal, int64(100)).
			Return(&loyalty.AwardResult{AlreadyAwarded: true}, nil)
		f.notifier.On("OrderConfirmed", mock.Anything, existing).Return(nil)
		f.events.On("MarkWebhookProcessed", mock.Anything, int64(8)).Return(nil)

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		f.assertAll(t)
	})

	t.Run("Side_Effect_Failures_Still_Acknowledge", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		created := &order.Order{ID: 100, UserID: 42, Subtotal: d("40")}
		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(paidEvent(t), nil)
		f.events.On("SavePaymentWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).
			Return(int64(9), false, nil)
		f.orders.On("CreateFromSettlement", mock.Anything, mock.Anything).Return(created, true, nil)
		f.loyalty.On("AwardPoints", mock.Anything, uint(42), mock.Anything, int64(100)).Return(nil, errors.New("db down"))
		f.notifier.On("OrderConfirmed", mock.Anything, created).Return(errors.New("db down"))
		f.events.On("MarkWebhookProcessed", mock.Anything, int64(9)).Return(nil)

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		f.assertAll(t)
	})

	t.Run("Invalid_Signature", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).
			Return(nil, errors.Join(payment.ErrInvalidSignature, errors.New("bad mac")))

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid signature")
		f.events.AssertNotCalled(t, "SavePaymentWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Malformed_Event", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(nil, payment.ErrMalformedEvent)

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid payload")
	})

	t.Run("Duplicate_Webhook", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(paidEvent(t), nil)
		f.events.On("SavePaymentWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).
			Return(int64(0), true, nil)

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		f.orders.AssertNotCalled(t, "CreateFromSettlement", mock.Anything, mock.Anything)
		f.assertAll(t)
	})

	t.Run("Record_Failure_Returns_500", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(paidEvent(t), nil)
		f.events.On("SavePaymentWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).
			Return(int64(0), false, errors.New("db down"))

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		f.orders.AssertNotCalled(t, "CreateFromSettlement", mock.Anything, mock.Anything)
	})

	t.Run("Unpaid_Completion_Acknowledged", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		ev := paidEvent(t)
		ev.PaymentStatus = "unpaid"
		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(ev, nil)
		f.events.On("SavePaymentWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).
			Return(int64(10), false, nil)
		f.events.On("MarkWebhookProcessed", mock.Anything, int64(10)).Return(nil)

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		f.orders.AssertNotCalled(t, "CreateFromSettlement", mock.Anything, mock.Anything)
		f.assertAll(t)
	})

	t.Run("Other_Event_Type_Acknowledged", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).
			Return(&payment.Event{ID: "evt_2", Type: "customer.created"}, nil)
		f.events.On("SavePaymentWebhook", mock.Anything, payment.ProviderStripe, "evt_2", "customer.created", "", mock.Anything, true).
			Return(int64(11), false, nil)
		f.events.On("MarkWebhookProcessed", mock.Anything, int64(11)).Return(nil)

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		f.assertAll(t)
	})

	t.Run("Malformed_Metadata_Marked_Failed", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		ev := paidEvent(t)
		delete(ev.Metadata, "user_id")
		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(ev, nil)
		f.events.On("SavePaymentWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).
			Return(int64(12), false, nil)
		f.events.On("MarkWebhookFailed", mock.Anything, int64(12), mock.AnythingOfType("string")).Return(nil)

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		f.orders.AssertNotCalled(t, "CreateFromSettlement", mock.Anything, mock.Anything)
		f.assertAll(t)
	})

	t.Run("Order_Creation_Failure_Left_Retryable", func(t *testing.T) {
		f := newFixture()
		w, req := post(body)

		f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(paidEvent(t), nil)
		f.events.On("SavePaymentWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).
			Return(int64(13), false, nil)
		f.orders.On("CreateFromSettlement", mock.Anything, mock.Anything).Return(nil, false, errors.New("tx failed"))

		f.handler.PaymentWebhookHandler(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		f.events.AssertNotCalled(t, "MarkWebhookProcessed", mock.Anything, mock.Anything)
		f.events.AssertNotCalled(t, "MarkWebhookFailed", mock.Anything, mock.Anything, mock.Anything)
	})
}
