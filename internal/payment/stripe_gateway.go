package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-be/internal/logger"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string

	// APIURL overrides the API base URL; empty means api.stripe.com.
	APIURL string

	SuccessURL string
	CancelURL  string

	HTTPClient *http.Client
}

type stripeGateway struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeGateway builds a client scoped to this gateway. Network retries
// are disabled so every session request is a single attempt.
func NewStripeGateway(cfg StripeConfig) Gateway {
	if cfg.SecretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}
	if cfg.WebhookSecret == "" {
		logger.L().Warn("Stripe webhook secret is empty; all webhooks will be rejected")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger.L().Named("stripe").Sugar(),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	backends := &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
	}

	return &stripeGateway{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "CreateCheckoutSession"),
		zap.String("client_reference", req.ClientReference),
	)

	currency := strings.ToLower(req.Currency)

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		ClientReferenceID: stripe.String(req.ClientReference),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	for _, line := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(line.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(ToMinorUnits(line.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
		})
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	start := time.Now()
	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		fields := []zap.Field{zap.Error(err), zap.Duration("duration", time.Since(start))}
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			fields = append(fields,
				zap.Int("status", stripeErr.HTTPStatusCode),
				zap.String("request_id", stripeErr.RequestID),
			)
		}
		log.Error("stripe checkout session request failed", fields...)
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	log.Info("stripe checkout session created",
		zap.String("session_id", s.ID),
		zap.Duration("duration", time.Since(start)),
	)

	return &Session{ID: s.ID, RedirectURL: s.URL}, nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, signatureHeader string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{
		ID:      ev.ID,
		Type:    string(ev.Type),
		Payload: payload,
	}

	if !strings.HasPrefix(out.Type, "checkout.session.") {
		return out, nil
	}

	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, ErrMalformedEvent
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	out.SessionID = s.ID
	out.PaymentStatus = string(s.PaymentStatus)
	out.Currency = string(s.Currency)
	out.AmountTotal = s.AmountTotal
	out.Metadata = s.Metadata

	return out, nil
}
