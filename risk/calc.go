// Package risk holds the reward-to-risk arithmetic used when a trade is saved.
package risk

import "github.com/shopspring/decimal"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// RR returns the distance to take-profit over the distance to stop-loss,
// both measured from entry. A trade with no risk distance has an RR of 0.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// RoundedRR is RR rounded to 2 decimals, the value stored on a trade.
func RoundedRR(entry, stop, takeProfit float64) float64 {
	e := decimal.NewFromFloat(entry)
	risk := e.Sub(decimal.NewFromFloat(stop)).Abs()
	if risk.IsZero() {
		return 0
	}
	reward := decimal.NewFromFloat(takeProfit).Sub(e).Abs()
	return reward.DivRound(risk, 8).Round(2).InexactFloat64()
}

// PlannedRisk is the amount lost if the stop is hit: lots times the price
// distance to the stop. No contract-size or quote conversion is applied.
func PlannedRisk(lots, entry, stop float64) float64 {
	return decimal.NewFromFloat(lots).
		Mul(decimal.NewFromFloat(entry).Sub(decimal.NewFromFloat(stop)).Abs()).
		InexactFloat64()
}
