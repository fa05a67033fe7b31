package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/user"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*user.User, error)
}

// Notifier renders order emails and queues them in the outbox.
type Notifier struct {
	outbox Repository
	users  UserLookup

	confirmed *template.Template
	cancelled *template.Template
	status    *template.Template
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"upper": strings.ToUpper,
}

func parse(body string) (*template.Template, error) {
	return template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+body)
}

func NewNotifier(outbox Repository, users UserLookup) (*Notifier, error) {
	n := &Notifier{outbox: outbox, users: users}

	var err error
	if n.confirmed, err = parse("order_confirmed.html"); err != nil {
		return nil, err
	}
	if n.cancelled, err = parse("order_cancelled.html"); err != nil {
		return nil, err
	}
	if n.status, err = parse("order_status.html"); err != nil {
		return nil, err
	}
	return n, nil
}

type emailData struct {
	Heading  string
	Name     string
	Order    *order.Order
	Previous order.Status
}

func (n *Notifier) enqueue(
	ctx context.Context,
	kind Kind,
	tmpl *template.Template,
	o *order.Order,
	subject string,
	heading string,
	previous order.Status,
) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "notify"),
		zap.String("kind", string(kind)),
		zap.Int64("order_id", o.ID),
	)

	u, err := n.users.GetByID(ctx, o.UserID)
	if err != nil {
		log.Error("recipient lookup failed", zap.Error(err))
		return err
	}

	name := u.Name
	if name == "" {
		name = "there"
	}

	var html bytes.Buffer
	if err := tmpl.ExecuteTemplate(&html, "layout", emailData{
		Heading:  heading,
		Name:     name,
		Order:    o,
		Previous: previous,
	}); err != nil {
		log.Error("template render failed", zap.Error(err))
		return err
	}

	text := fmt.Sprintf("%s\n\nOrder %s\nStatus: %s\nTotal: %s %s\n",
		heading, o.OrderNumber, o.Status, o.Total.StringFixed(2), strings.ToUpper(o.Currency))

	return n.outbox.Enqueue(ctx, &Message{
		Kind:      kind,
		Recipient: u.Email,
		Subject:   subject,
		HTML:      html.String(),
		Text:      text,
		DedupeKey: dedupeKey(kind, o),
	})
}

// Confirmation and cancellation happen once per order. Statuses only move
// forward, so a status email is unique per order and status.
func dedupeKey(kind Kind, o *order.Order) string {
	if kind == KindOrderStatusChanged {
		return fmt.Sprintf("%s:%d:%s", kind, o.ID, o.Status)
	}
	return fmt.Sprintf("%s:%d", kind, o.ID)
}

func (n *Notifier) OrderConfirmed(ctx context.Context, o *order.Order) error {
	return n.enqueue(ctx, KindOrderConfirmed, n.confirmed, o,
		fmt.Sprintf("Order %s confirmed", o.OrderNumber),
		"Thank you for your order", "")
}

func (n *Notifier) OrderCancelled(ctx context.Context, o *order.Order) error {
	return n.enqueue(ctx, KindOrderCancelled, n.cancelled, o,
		fmt.Sprintf("Order %s cancelled", o.OrderNumber),
		"Your order was cancelled", "")
}

func (n *Notifier) OrderStatusChanged(ctx context.Context, o *order.Order, previous order.Status) error {
	return n.enqueue(ctx, KindOrderStatusChanged, n.status, o,
		fmt.Sprintf("Order %s is now %s", o.OrderNumber, strings.ToLower(string(o.Status))),
		"Your order was updated", previous)
}
