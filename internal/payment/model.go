package payment

import (
	"github.com/shopspring/decimal"
)

// ProviderStripe identifies Stripe rows in the webhook event log.
const ProviderStripe = "STRIPE"

const (
	EventCheckoutSessionCompleted             = "checkout.session.completed"
	EventCheckoutSessionAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"

	PaymentStatusPaid = "paid"
)

type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// SessionRequest describes a hosted checkout session. Amounts are in major
// currency units.
type SessionRequest struct {
	ClientReference string
	CustomerEmail   string
	Currency        string
	Lines           []LineItem
	Metadata        map[string]string
}

type Session struct {
	ID          string
	RedirectURL string
}

// Event is a verified processor notification. Session fields are only set
// for checkout session events.
type Event struct {
	ID   string
	Type string

	SessionID     string
	PaymentStatus string
	Currency      string
	AmountTotal   int64
	Metadata      map[string]string

	Payload []byte
}

func (e *Event) IsSettlement() bool {
	switch e.Type {
	case EventCheckoutSessionCompleted:
		return e.PaymentStatus == PaymentStatusPaid
	case EventCheckoutSessionAsyncPaymentSucceeded:
		return true
	default:
		return false
	}
}

// ToMinorUnits converts a major-unit amount to the processor's integer
// representation (cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
