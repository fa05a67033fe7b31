package loyalty

import (
	"time"
)

type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

type TransactionType string

const (
	TypeEarned   TransactionType = "EARNED"
	TypeRedeemed TransactionType = "REDEEMED"
)

type Account struct {
	UserID        uint
	Points        int64
	TotalEarned   int64
	TotalRedeemed int64
	Tier          Tier
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transaction is an append-only ledger row. Redemptions carry negative
// points.
type Transaction struct {
	ID          int64
	UserID      uint
	Type        TransactionType
	Points      int64
	OrderID     *int64
	Description string
	CreatedAt   time.Time
}

type AwardResult struct {
	Points   int64
	Account  *Account
	Upgraded bool

	// AlreadyAwarded is set when the order had been credited before.
	AlreadyAwarded bool
}

type RedeemResult struct {
	PointsRedeemed int64
	Account        *Account
}
