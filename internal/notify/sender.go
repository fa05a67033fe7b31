package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-be/internal/logger"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, e Email) error
}

var ErrSenderNotConfigured = errors.New("email sender not configured")

type ResendConfig struct {
	APIKey string
	From   string

	// BaseURL overrides the API endpoint; empty means the library default.
	BaseURL string

	HTTPClient *http.Client
}

type resendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(cfg ResendConfig) (Sender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrSenderNotConfigured
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	client := resend.NewCustomClient(httpClient, cfg.APIKey)
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid resend base url: %w", err)
		}
		client.BaseURL = u
	}

	return &resendSender{client: client, from: cfg.From}, nil
}

func (s *resendSender) Send(ctx context.Context, e Email) error {
	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{e.To},
		Subject: e.Subject,
		Html:    e.HTML,
		Text:    e.Text,
	}

	var (
		res *resend.SendEmailResponse
		err error
	)
	if e.IdempotencyKey != "" {
		res, err = s.client.Emails.SendWithOptions(ctx, req, &resend.SendEmailOptions{IdempotencyKey: e.IdempotencyKey})
	} else {
		res, err = s.client.Emails.SendWithContext(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	logger.FromCtx(ctx).Debug("email accepted by provider", zap.String("provider_id", res.Id))
	return nil
}
