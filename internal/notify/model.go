package notify

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

type Kind string

const (
	KindOrderConfirmed     Kind = "order_confirmed"
	KindOrderCancelled     Kind = "order_cancelled"
	KindOrderStatusChanged Kind = "order_status_changed"
)

// Message is one queued email in the notification outbox.
type Message struct {
	ID        uuid.UUID
	Kind      Kind
	Recipient string
	Subject   string
	HTML      string
	Text      string

	// DedupeKey, when set, makes a second Enqueue with the same key a no-op.
	DedupeKey string

	Status        Status
	Attempts      int
	LastError     *string
	NextAttemptAt time.Time
	CreatedAt     time.Time
}

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string

	// IdempotencyKey lets the provider drop duplicate sends of a message.
	IdempotencyKey string
}
