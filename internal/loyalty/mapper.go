package loyalty

import "time"

type SummaryResponse struct {
	Points        int64    `json:"points"`
	TotalEarned   int64    `json:"total_earned"`
	TotalRedeemed int64    `json:"total_redeemed"`
	Tier          Tier     `json:"tier"`
	Progress      Progress `json:"progress"`
	CurrencyValue string   `json:"currency_value"`
}

type TransactionResponse struct {
	ID          int64           `json:"id"`
	Type        TransactionType `json:"type"`
	Points      int64           `json:"points"`
	OrderID     *int64          `json:"order_id,omitempty"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type RedemptionResponse struct {
	PointsRedeemed int64  `json:"points_redeemed"`
	CurrencyValue  string `json:"currency_value"`
	Balance        int64  `json:"balance"`
}

type RedeemRequest struct {
	Points      int64  `json:"points"`
	Description string `json:"description"`
}

func ToSummaryResponse(s *Summary) *SummaryResponse {
	return &SummaryResponse{
		Points:        s.Account.Points,
		TotalEarned:   s.Account.TotalEarned,
		TotalRedeemed: s.Account.TotalRedeemed,
		Tier:          s.Account.Tier,
		Progress:      s.Progress,
		CurrencyValue: s.CurrencyValue.StringFixed(2),
	}
}

func ToTransactionResponses(txs []*Transaction) []*TransactionResponse {
	out := make([]*TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, &TransactionResponse{
			ID:          t.ID,
			Type:        t.Type,
			Points:      t.Points,
			OrderID:     t.OrderID,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}

func ToRedemptionResponse(r *Redemption) *RedemptionResponse {
	return &RedemptionResponse{
		PointsRedeemed: r.PointsRedeemed,
		CurrencyValue:  r.CurrencyValue.StringFixed(2),
		Balance:        r.Balance,
	}
}
