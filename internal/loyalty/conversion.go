package loyalty

import "github.com/shopspring/decimal"

const DefaultPointsPerUnit = 100

// Converter maps points to currency at a fixed rate.
type Converter struct {
	PointsPerUnit int64
}

func (c Converter) rate() decimal.Decimal {
	if c.PointsPerUnit <= 0 {
		return decimal.NewFromInt(DefaultPointsPerUnit)
	}
	return decimal.NewFromInt(c.PointsPerUnit)
}

func (c Converter) PointsToCurrency(points int64) decimal.Decimal {
	return decimal.NewFromInt(points).Div(c.rate()).Round(2)
}

// CurrencyToPoints rounds up so the points always cover amount.
func (c Converter) CurrencyToPoints(amount decimal.Decimal) int64 {
	return amount.Mul(c.rate()).Ceil().IntPart()
}
