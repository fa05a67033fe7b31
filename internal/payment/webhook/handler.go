package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/loyalty"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/transport"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxPayloadBytes = 64 << 10
	signatureHeader = "Stripe-Signature"
)

type OrderCreator interface {
	CreateFromSettlement(ctx context.Context, s order.Settlement) (*order.Order, bool, error)
}

type PointsAwarder interface {
	AwardPoints(ctx context.Context, userID uint, subtotal decimal.Decimal, orderID int64) (*loyalty.AwardResult, error)
}

type ConfirmationNotifier interface {
	OrderConfirmed(ctx context.Context, o *order.Order) error
}

type Handler struct {
	Gateway  payment.Gateway
	Events   payment.Repository
	Orders   OrderCreator
	Loyalty  PointsAwarder
	Notifier ConfirmationNotifier
}

func NewWebhookHandler(
	gateway payment.Gateway,
	events payment.Repository,
	orders OrderCreator,
	loyalty PointsAwarder,
	notifier ConfirmationNotifier,
) *Handler {
	return &Handler{
		Gateway:  gateway,
		Events:   events,
		Orders:   orders,
		Loyalty:  loyalty,
		Notifier: notifier,
	}
}

func acknowledge(w http.ResponseWriter) {
	transport.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// PaymentWebhookHandler turns a verified settlement event into an order.
// Anything other than a storage failure is acknowledged with 200 so the
// processor stops redelivering.
func (h *Handler) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("provider", payment.ProviderStripe),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		log.Warn("failed to read webhook body", zap.Error(err))
		transport.WriteJSONError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	ev, err := h.Gateway.ParseWebhook(body, r.Header.Get(signatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			log.Warn("webhook signature rejected", zap.Error(err))
			transport.WriteJSONError(w, "invalid signature", http.StatusBadRequest)
			return
		}
		log.Warn("malformed webhook event", zap.Error(err))
		transport.WriteJSONError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
		zap.String("session_id", ev.SessionID),
	)

	webhookID, duplicate, err := h.Events.SavePaymentWebhook(ctx, payment.ProviderStripe, ev.ID, ev.Type, ev.SessionID, body, true)
	if err != nil {
		log.Error("failed to record webhook event", zap.Error(err))
		transport.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if duplicate {
		log.Info("duplicate webhook event ignored")
		acknowledge(w)
		return
	}

	if !ev.IsSettlement() {
		log.Info("webhook event acknowledged without action", zap.String("payment_status", ev.PaymentStatus))
		h.markProcessed(ctx, log, webhookID)
		acknowledge(w)
		return
	}

	md, err := payment.DecodeMetadata(ev.Metadata)
	if err != nil {
		log.Error("settlement metadata unusable; no order created", zap.Error(err))
		if markErr := h.Events.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(markErr))
		}
		acknowledge(w)
		return
	}

	if ev.AmountTotal != 0 && ev.AmountTotal != payment.ToMinorUnits(md.Total) {
		log.Warn("settled amount differs from checkout total",
			zap.Int64("amount_total", ev.AmountTotal),
			zap.String("metadata_total", md.Total.StringFixed(2)),
		)
	}

	o, created, err := h.Orders.CreateFromSettlement(ctx, toSettlement(ev.SessionID, md))
	if err != nil {
		log.Error("order creation failed; awaiting redelivery", zap.Error(err))
		transport.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !created {
		log.Info("order already exists; replaying side effects", zap.Int64("order_id", o.ID))
	}
	// The event is still unprocessed, so a previous delivery may have
	// stopped between the order insert and these calls. Both are keyed by
	// order and safe to repeat.
	h.applySideEffects(ctx, log, o)

	h.markProcessed(ctx, log, webhookID)
	acknowledge(w)
}

func (h *Handler) applySideEffects(ctx context.Context, log *zap.Logger, o *order.Order) {
	log = log.With(zap.Int64("order_id", o.ID))

	if _, err := h.Loyalty.AwardPoints(ctx, o.UserID, o.Subtotal, o.ID); err != nil {
		log.Error("loyalty award failed", zap.Error(err))
	}

	if err := h.Notifier.OrderConfirmed(ctx, o); err != nil {
		log.Error("failed to queue confirmation email", zap.Error(err))
	}
}

func (h *Handler) markProcessed(ctx context.Context, log *zap.Logger, webhookID int64) {
	if err := h.Events.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("failed to mark webhook processed", zap.Error(err))
	}
}

func toSettlement(sessionID string, md payment.Metadata) order.Settlement {
	items := make([]order.SettlementItem, 0, len(md.Items))
	for _, it := range md.Items {
		items = append(items, order.SettlementItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return order.Settlement{
		SessionID: sessionID,
		UserID:    md.UserID,
		AddressID: md.AddressID,
		Items:     items,
		Subtotal:  md.Subtotal,
		Shipping:  md.Shipping,
		Tax:       md.Tax,
		Total:     md.Total,
		Currency:  md.Currency,
	}
}
